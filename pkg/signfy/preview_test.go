package signfy

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestPreviewRenderer(t *testing.T) {
	fontMetaPath := "../../" + DefaultFontMetadataPath
	if _, err := os.Stat(fontMetaPath); os.IsNotExist(err) {
		t.Skip("font_metadata.json not generated, run cmd/scan_font first")
	}

	pr, err := NewPreviewRenderer(Config{FontMetadataPath: fontMetaPath})
	if err != nil {
		t.Fatalf("NewPreviewRenderer() unexpected error: %v", err)
	}
	if len(pr.fonts.AvailableFonts) == 0 {
		t.Skip("No fonts available in font_metadata.json")
	}

	font, err := ParseFont(pr.fonts.AvailableFonts[0].Name)
	if err != nil {
		t.Skipf("first available font is not a signature font: %v", err)
	}

	svg, err := pr.RenderBytes("Jane Doe", font, 24, PreviewSVG)
	if err != nil {
		t.Fatalf("RenderBytes(svg) unexpected error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderBytes(svg) did not return an SVG document")
	}

	if _, err := pr.RenderBytes("Jane Doe", font, 500, PreviewSVG); !errors.Is(err, ErrFontSizeOutOfRange) {
		t.Errorf("RenderBytes() with font size 500 error = %v, want ErrFontSizeOutOfRange", err)
	}
}

func TestPreviewFormatContentType(t *testing.T) {
	tests := map[PreviewFormat]string{
		PreviewSVG: "image/svg+xml",
		PreviewPNG: "image/png",
		PreviewPDF: "application/pdf",
		"":         "image/svg+xml",
	}
	for format, want := range tests {
		if got := format.ContentType(); got != want {
			t.Errorf("%q.ContentType() = %q, want %q", format, got, want)
		}
	}
}
