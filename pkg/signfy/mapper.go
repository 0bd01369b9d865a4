package signfy

import (
	"errors"
	"math"
)

var (
	ErrPointerUnavailable = errors.New("could not get pointer position")
	ErrNoPageSurface      = errors.New("no rendered page surface found")
	ErrInvalidGeometry    = errors.New("page geometry must have a positive finite width and height within the PDF user space")
)

// PageSurface gives access to the canvas of the page currently on screen.
// The bounds are read on every call because a window resize changes them.
type PageSurface interface {
	RenderedBounds() (Rect, bool)
}

// StaticSurface is a PageSurface with fixed bounds, e.g. sent by a browser along with the event.
type StaticSurface Rect

func (s StaticSurface) RenderedBounds() (Rect, bool) {
	return Rect(s), true
}

// Mapper converts viewport pointer positions into PDF placements for one loaded document.
type Mapper struct {
	Surface PageSurface
	// Native size of the document's first page, in PDF units
	Page Size
}

func NewMapper(surface PageSurface, page Size) *Mapper {
	return &Mapper{Surface: surface, Page: page}
}

func (m *Mapper) Map(pointer Point, fontSize float64) (Placement, error) {
	if m.Surface == nil {
		return Placement{}, ErrNoPageSurface
	}

	rendered, ok := m.Surface.RenderedBounds()
	if !ok {
		return Placement{}, ErrNoPageSurface
	}

	return MapPointer(rendered, m.Page, pointer, fontSize)
}

func (m *Mapper) MapEvent(ev PointerEvent, fontSize float64) (Placement, error) {
	p, err := ev.Point()
	if err != nil {
		return Placement{}, err
	}
	return m.Map(p, fontSize)
}

// MapPointer translates a viewport position over the rendered canvas into PDF page
// coordinates. The vertical axis is flipped and the font size is subtracted so the text
// baseline, not its top-left corner, lands under the pointer. The page of the returned
// Placement is left for the caller to set.
func MapPointer(rendered Rect, page Size, pointer Point, fontSize float64) (Placement, error) {
	if !rendered.Size().valid() || !page.validPage() || !finite(rendered.Left) || !finite(rendered.Top) {
		return Placement{}, ErrInvalidGeometry
	}
	if !finite(pointer.X) || !finite(pointer.Y) {
		return Placement{}, ErrPointerUnavailable
	}
	if !finite(fontSize) {
		fontSize = 0
	}

	scaleX := page.Width / rendered.Width
	scaleY := page.Height / rendered.Height

	// pointer outside the canvas maps like the nearest point on its edge
	relX := clamp(pointer.X-rendered.Left, 0, rendered.Width)
	relY := clamp(pointer.Y-rendered.Top, 0, rendered.Height)

	pdfX := relX * scaleX
	pdfY := relY * scaleY

	finalX := clamp(pdfX, 0, page.Width)
	finalY := clamp(page.Height-pdfY-fontSize, 0, page.Height)

	return Placement{
		X: roundWithin(finalX, page.Width),
		Y: roundWithin(finalY, page.Height),
	}, nil
}

// roundWithin rounds v, which is already in [0,limit], without letting a fractional
// page size push the result past the page edge.
func roundWithin(v, limit float64) int {
	return int(math.Min(math.Round(v), math.Floor(limit)))
}
