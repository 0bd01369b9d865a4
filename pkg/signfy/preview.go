package signfy

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

/*
 * Attention: tdewolff/canvas uses mm as the unit of measurement. Preview sizes are taken in
 * PDF points (1/72 inch), the same unit as a signature's font size, and converted here.
 */

const DPI = 72

type PreviewFormat string

const (
	PreviewSVG PreviewFormat = "svg"
	PreviewPNG PreviewFormat = "png"
	PreviewPDF PreviewFormat = "pdf"
)

func (f PreviewFormat) ContentType() string {
	switch f {
	case PreviewPNG:
		return "image/png"
	case PreviewPDF:
		return "application/pdf"
	default:
		return "image/svg+xml"
	}
}

func ptToMM(pt float64) float64 {
	return (pt * 25.4) / DPI
}

// PreviewRenderer draws a draft's name the way it will look once burnt into the PDF.
type PreviewRenderer struct {
	fonts *FontLoader
	color string
}

func NewPreviewRenderer(cfg Config) (*PreviewRenderer, error) {
	fl, err := NewFontLoader(cfg)
	if err != nil {
		return nil, err
	}
	return &PreviewRenderer{fonts: fl, color: "#000000"}, nil
}

// HasFont reports whether the font file of f is known to the renderer.
func (pr *PreviewRenderer) HasFont(f SignatureFont) bool {
	_, err := pr.fonts.GetAvailableFontMetadataByName(string(f))
	return err == nil
}

// Render writes the preview of text in font at fontSize points to w. The canvas is
// sized to the text bounds plus a small margin.
func (pr *PreviewRenderer) Render(w io.Writer, text string, font SignatureFont, fontSize int, format PreviewFormat) error {
	if !font.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedFont, font)
	}
	if !ValidFontSize(fontSize) {
		return ErrFontSizeOutOfRange
	}

	family, err := pr.fonts.LoadFont(string(font), canvas.FontRegular)
	if err != nil {
		return err
	}

	face := family.Face(float64(fontSize), canvas.Hex(pr.color), canvas.FontRegular, canvas.FontNormal)
	textBox := canvas.NewTextBox(face, text, 0, 0, canvas.Left, canvas.Top, 0.0, 0.0)
	bounds := textBox.Bounds()

	margin := ptToMM(float64(fontSize) / 4)
	c := canvas.New(bounds.W()+2*margin, bounds.H()+2*margin)
	ctx := canvas.NewContext(c)
	// Change coordination from bottom-left to top-left
	ctx.SetCoordSystem(canvas.CartesianIV)
	ctx.DrawText(margin, margin, textBox)

	var writer canvas.Writer
	switch format {
	case PreviewPNG:
		writer = renderers.PNG(canvas.DPMM(4.0))
	case PreviewPDF:
		writer = renderers.PDF()
	default:
		writer = renderers.SVG()
	}

	if err := c.Write(w, writer); err != nil {
		return fmt.Errorf("failed to write %s preview: %w", format, err)
	}
	return nil
}

func (pr *PreviewRenderer) RenderBytes(text string, font SignatureFont, fontSize int, format PreviewFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := pr.Render(&buf, text, font, fontSize, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
