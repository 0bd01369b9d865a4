package signfy

import "math"

// Point is a position in either viewport pixels or PDF units, depending on where it came from.
type Point struct {
	X float64 `json:"x" form:"x"`
	Y float64 `json:"y" form:"y"`
}

type Size struct {
	Width  float64 `json:"width" form:"width" binding:"required"`
	Height float64 `json:"height" form:"height" binding:"required"`
}

// MaxPageUnits is the largest page side a PDF viewer is required to support (200 inches).
const MaxPageUnits = 14400

func (s Size) valid() bool {
	return finitePositive(s.Width) && finitePositive(s.Height)
}

// validPage also bounds the size so mapped coordinates always fit an int.
func (s Size) validPage() bool {
	return s.valid() && s.Width <= MaxPageUnits && s.Height <= MaxPageUnits
}

// Rect is an on-screen bounding box, as returned by getBoundingClientRect on the browser side.
type Rect struct {
	Left   float64 `json:"left" form:"left"`
	Top    float64 `json:"top" form:"top"`
	Width  float64 `json:"width" form:"width" binding:"required"`
	Height float64 `json:"height" form:"height" binding:"required"`
}

func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Placement is a committed signature position in PDF space (origin bottom-left).
type Placement struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Page uint `json:"page"`
}

// A4 landscape in points. Used only when a host has no geometry for the page yet.
var DefaultPageSize = Size{Width: 842, Height: 595}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
