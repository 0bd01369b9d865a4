package signfy

import (
	"errors"
	"fmt"
	"net/url"
)

type ShareTarget string

const (
	ShareGmail    ShareTarget = "gmail"
	ShareWhatsApp ShareTarget = "whatsapp"
	ShareFacebook ShareTarget = "facebook"
	ShareTwitter  ShareTarget = "twitter"
	ShareCopy     ShareTarget = "copy"
)

var ShareTargets = []ShareTarget{ShareGmail, ShareWhatsApp, ShareFacebook, ShareTwitter, ShareCopy}

var ErrUnknownShareTarget = errors.New("unknown share target")

// ShareLink builds the link that opens target with fileURL prefilled. For ShareCopy
// it is the file URL itself, ready for the clipboard.
func ShareLink(target ShareTarget, fileURL string) (string, error) {
	if fileURL == "" {
		return "", errors.New("file url is empty")
	}

	encoded := url.QueryEscape(fileURL)

	switch target {
	case ShareGmail:
		return fmt.Sprintf("https://mail.google.com/mail/?view=cm&fs=1&to=&su=%s&body=%s", url.QueryEscape("Signed Document"), encoded), nil
	case ShareWhatsApp:
		return fmt.Sprintf("https://wa.me/?text=%s", url.QueryEscape("Here is the signed PDF: "+fileURL)), nil
	case ShareFacebook:
		return fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s", encoded), nil
	case ShareTwitter:
		return fmt.Sprintf("https://twitter.com/intent/tweet?url=%s&text=%s", encoded, url.QueryEscape("Signed PDF")), nil
	case ShareCopy:
		return fileURL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownShareTarget, target)
	}
}

// ShareLinks builds the link of every share target.
func ShareLinks(fileURL string) (map[ShareTarget]string, error) {
	links := make(map[ShareTarget]string, len(ShareTargets))
	for _, t := range ShareTargets {
		link, err := ShareLink(t, fileURL)
		if err != nil {
			return nil, err
		}
		links[t] = link
	}
	return links, nil
}
