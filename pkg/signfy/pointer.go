package signfy

// Touch is a single touch point of a touch event.
type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerEvent carries what the host knows about a mouse or touch event.
// Mouse events set ClientX/ClientY, touch events fill the touch lists.
type PointerEvent struct {
	ClientX        *float64 `json:"clientX"`
	ClientY        *float64 `json:"clientY"`
	Touches        []Touch  `json:"touches"`
	ChangedTouches []Touch  `json:"changedTouches"`
}

func MouseEvent(x, y float64) PointerEvent {
	return PointerEvent{ClientX: &x, ClientY: &y}
}

func TouchEvent(touches ...Touch) PointerEvent {
	return PointerEvent{Touches: touches, ChangedTouches: touches}
}

// Point resolves the viewport position of the event. A touchend event has an
// empty Touches list, so ChangedTouches is tried before Touches.
func (e PointerEvent) Point() (Point, error) {
	if e.ClientX != nil && e.ClientY != nil && finite(*e.ClientX) && finite(*e.ClientY) {
		return Point{X: *e.ClientX, Y: *e.ClientY}, nil
	}

	for _, list := range [][]Touch{e.ChangedTouches, e.Touches} {
		if len(list) == 0 {
			continue
		}
		t := list[0]
		if finite(t.ClientX) && finite(t.ClientY) {
			return Point{X: t.ClientX, Y: t.ClientY}, nil
		}
	}

	return Point{}, ErrPointerUnavailable
}
