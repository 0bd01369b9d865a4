package signfy

import (
	"errors"
	"math"
	"testing"
)

func TestMapPointer(t *testing.T) {
	canvasRect := Rect{Left: 50, Top: 50, Width: 600, Height: 424}
	page := Size{Width: 842, Height: 595}

	tests := []struct {
		name     string
		pointer  Point
		fontSize float64
		wantX    int
		wantY    int
	}{
		{"Landscape A4 end to end", Point{300, 200}, 24, 351, 361},
		{"Top-left corner without font size", Point{50, 50}, 0, 0, 595},
		{"Bottom-right corner", Point{650, 474}, 0, 842, 0},
		{"Bottom-right corner with font size", Point{650, 474}, 24, 842, 0},
		{"Top edge subtracts font size", Point{50, 50}, 24, 0, 571},
		{"Centre", Point{350, 262}, 0, 421, 298},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapPointer(canvasRect, page, tt.pointer, tt.fontSize)
			if err != nil {
				t.Fatalf("MapPointer() unexpected error: %v", err)
			}
			if abs(got.X-tt.wantX) > 1 || abs(got.Y-tt.wantY) > 1 {
				t.Errorf("MapPointer() = (%d, %d), want (%d, %d) ±1", got.X, got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestMapPointerStaysOnPage(t *testing.T) {
	geometries := []struct {
		page     Size
		rendered Rect
	}{
		{Size{842, 595}, Rect{Left: 50, Top: 50, Width: 600, Height: 424}},
		{Size{595, 842}, Rect{Left: 0, Top: 120, Width: 320, Height: 453}},
		{Size{612, 792}, Rect{Left: 13.5, Top: 7.25, Width: 1224, Height: 1584}},
		{Size{595.3, 841.9}, Rect{Left: 20, Top: 20, Width: 595.3, Height: 841.9}},
	}

	for _, g := range geometries {
		for fontSize := 0.0; fontSize <= 100; fontSize += 25 {
			for fx := 0.0; fx <= 1; fx += 0.125 {
				for fy := 0.0; fy <= 1; fy += 0.125 {
					p := Point{X: g.rendered.Left + fx*g.rendered.Width, Y: g.rendered.Top + fy*g.rendered.Height}

					got, err := MapPointer(g.rendered, g.page, p, fontSize)
					if err != nil {
						t.Fatalf("MapPointer(%v) unexpected error: %v", p, err)
					}
					if float64(got.X) < 0 || float64(got.X) > g.page.Width || float64(got.Y) < 0 || float64(got.Y) > g.page.Height {
						t.Errorf("MapPointer(%v, font %v) = %+v, outside page %+v", p, fontSize, got, g.page)
					}
				}
			}
		}
	}
}

func TestMapPointerClampsLikeNearestEdge(t *testing.T) {
	rendered := Rect{Left: 50, Top: 50, Width: 600, Height: 424}
	page := Size{Width: 842, Height: 595}

	tests := []struct {
		name    string
		outside Point
		nearest Point
	}{
		{"Left of canvas", Point{-200, 200}, Point{50, 200}},
		{"Right of canvas", Point{2000, 200}, Point{650, 200}},
		{"Above canvas", Point{300, -40}, Point{300, 50}},
		{"Below canvas", Point{300, 9000}, Point{300, 474}},
		{"Beyond a corner", Point{-1, -1}, Point{50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, fontSize := range []float64{0, 24, 100} {
				got, err := MapPointer(rendered, page, tt.outside, fontSize)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want, err := MapPointer(rendered, page, tt.nearest, fontSize)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != want {
					t.Errorf("font %v: outside maps to %+v, nearest in-bounds maps to %+v", fontSize, got, want)
				}
			}
		})
	}
}

func TestMapPointerRejectsDegenerateInput(t *testing.T) {
	page := Size{Width: 842, Height: 595}
	good := Rect{Width: 600, Height: 424}

	tests := []struct {
		name     string
		rendered Rect
		page     Size
		pointer  Point
		wantErr  error
	}{
		{"Zero rendered width", Rect{Width: 0, Height: 424}, page, Point{1, 1}, ErrInvalidGeometry},
		{"Negative rendered height", Rect{Width: 600, Height: -1}, page, Point{1, 1}, ErrInvalidGeometry},
		{"Zero page size", good, Size{}, Point{1, 1}, ErrInvalidGeometry},
		{"Page too large for integer coordinates", good, Size{Width: 1e300, Height: 595}, Point{1, 1}, ErrInvalidGeometry},
		{"Page just over the user space limit", good, Size{Width: 842, Height: MaxPageUnits + 1}, Point{1, 1}, ErrInvalidGeometry},
		{"NaN pointer", good, page, Point{math.NaN(), 1}, ErrPointerUnavailable},
		{"Infinite pointer", good, page, Point{1, math.Inf(1)}, ErrPointerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapPointer(tt.rendered, tt.page, tt.pointer, 24)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("MapPointer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

type noSurface struct{}

func (noSurface) RenderedBounds() (Rect, bool) { return Rect{}, false }

func TestMapperEvent(t *testing.T) {
	m := NewMapper(StaticSurface{Left: 50, Top: 50, Width: 600, Height: 424}, Size{Width: 842, Height: 595})

	got, err := m.MapEvent(MouseEvent(300, 200), 24)
	if err != nil {
		t.Fatalf("MapEvent() unexpected error: %v", err)
	}
	if got.X != 351 || got.Y != 361 {
		t.Errorf("MapEvent() = %+v, want (351, 361)", got)
	}

	got, err = m.MapEvent(PointerEvent{ChangedTouches: []Touch{{ClientX: 300, ClientY: 200}}}, 24)
	if err != nil {
		t.Fatalf("MapEvent() touchend unexpected error: %v", err)
	}
	if got.X != 351 || got.Y != 361 {
		t.Errorf("MapEvent() touchend = %+v, want (351, 361)", got)
	}

	if _, err := m.MapEvent(PointerEvent{}, 24); !errors.Is(err, ErrPointerUnavailable) {
		t.Errorf("MapEvent() without coordinates error = %v, want ErrPointerUnavailable", err)
	}

	if _, err := NewMapper(noSurface{}, Size{Width: 842, Height: 595}).Map(Point{1, 1}, 0); !errors.Is(err, ErrNoPageSurface) {
		t.Errorf("Map() without surface error = %v, want ErrNoPageSurface", err)
	}
	if _, err := NewMapper(nil, Size{Width: 842, Height: 595}).Map(Point{1, 1}, 0); !errors.Is(err, ErrNoPageSurface) {
		t.Errorf("Map() with nil surface error = %v, want ErrNoPageSurface", err)
	}
}

func TestPointerEventPoint(t *testing.T) {
	x, y := 10.0, 20.0

	tests := []struct {
		name    string
		ev      PointerEvent
		want    Point
		wantErr bool
	}{
		{"Mouse", PointerEvent{ClientX: &x, ClientY: &y}, Point{10, 20}, false},
		{"Touch move", PointerEvent{Touches: []Touch{{1, 2}, {3, 4}}}, Point{1, 2}, false},
		{"Touch end prefers changed touches", PointerEvent{ChangedTouches: []Touch{{5, 6}}, Touches: []Touch{{1, 2}}}, Point{5, 6}, false},
		{"Only one client axis", PointerEvent{ClientX: &x, ChangedTouches: []Touch{{7, 8}}}, Point{7, 8}, false},
		{"Empty event", PointerEvent{}, Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ev.Point()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Point() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Point() = %v, want %v", got, tt.want)
			}
		})
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
