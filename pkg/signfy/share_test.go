package signfy

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"
)

const signedURL = "https://files.example.com/uploads/signed/contract final.pdf?v=1&x=2"

func TestShareLink(t *testing.T) {
	tests := []struct {
		target ShareTarget
		host   string
		param  string
	}{
		{ShareGmail, "mail.google.com", "body"},
		{ShareWhatsApp, "wa.me", "text"},
		{ShareFacebook, "www.facebook.com", "u"},
		{ShareTwitter, "twitter.com", "url"},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			link, err := ShareLink(tt.target, signedURL)
			if err != nil {
				t.Fatalf("ShareLink() unexpected error: %v", err)
			}

			u, err := url.Parse(link)
			if err != nil {
				t.Fatalf("ShareLink() produced an invalid url %q: %v", link, err)
			}
			if u.Host != tt.host {
				t.Errorf("host = %q, want %q", u.Host, tt.host)
			}
			if got := u.Query().Get(tt.param); !strings.Contains(got, signedURL) {
				t.Errorf("query %q = %q, want it to carry the file url", tt.param, got)
			}
		})
	}
}

func TestShareLinkCopyAndErrors(t *testing.T) {
	link, err := ShareLink(ShareCopy, signedURL)
	if err != nil || link != signedURL {
		t.Errorf("ShareLink(copy) = %q, %v, want the raw url", link, err)
	}

	if _, err := ShareLink("myspace", signedURL); !errors.Is(err, ErrUnknownShareTarget) {
		t.Errorf("ShareLink(myspace) error = %v, want ErrUnknownShareTarget", err)
	}
	if _, err := ShareLink(ShareGmail, ""); err == nil {
		t.Error("ShareLink() with an empty url must fail")
	}
}

func TestShareLinks(t *testing.T) {
	links, err := ShareLinks(signedURL)
	if err != nil {
		t.Fatalf("ShareLinks() unexpected error: %v", err)
	}
	if len(links) != len(ShareTargets) {
		t.Errorf("ShareLinks() returned %d links, want %d", len(links), len(ShareTargets))
	}
}

func TestQRCode(t *testing.T) {
	png, err := QRCodePNG(signedURL, 0)
	if err != nil {
		t.Fatalf("QRCodePNG() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("QRCodePNG() did not return a PNG")
	}

	svg, err := QRCodeSVG(signedURL)
	if err != nil {
		t.Fatalf("QRCodeSVG() unexpected error: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Error("QRCodeSVG() did not return an SVG document")
	}
}
