package signfy

import (
	"errors"
	"sync"
)

type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragReleased
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragReleased:
		return "released"
	default:
		return "unknown"
	}
}

// EndMode selects which position is mapped into PDF space when a drag is released.
type EndMode int

const (
	// The element's final top-left corner on screen
	EndAtElement EndMode = iota
	// The raw pointer-up coordinate
	EndAtPointer
)

var ErrNotDragging = errors.New("no drag in progress")

// Listeners are the window-level move/up handlers of a drag. They are attached to the
// window rather than the element so a fast drag that leaves the element is still tracked.
type Listeners interface {
	Attach()
	Detach()
}

type nopListeners struct{}

func (nopListeners) Attach() {}
func (nopListeners) Detach() {}

// DragSession is the state of one drag, from pointer-down to pointer-up.
type DragSession struct {
	// Pointer position relative to the element's own top-left corner at grab time
	GrabOffset Point
	Container  Rect
	Element    Size
	// Element top-left, relative to the container
	Position Point
}

// DragController moves an absolutely positioned signature label inside its container
// and commits a Placement when the drag ends. It is not safe for concurrent use.
type DragController struct {
	listeners Listeners
	state     DragState
	session   *DragSession
	placement *Placement
}

func NewDragController(listeners Listeners) *DragController {
	if listeners == nil {
		listeners = nopListeners{}
	}
	return &DragController{listeners: listeners}
}

func (d *DragController) State() DragState {
	return d.state
}

// Placement returns the result of the last released drag, if any.
func (d *DragController) Placement() (Placement, bool) {
	if d.placement == nil {
		return Placement{}, false
	}
	return *d.placement, true
}

// Position returns the element's current top-left relative to the container.
func (d *DragController) Position() (Point, bool) {
	if d.session == nil {
		return Point{}, false
	}
	return d.session.Position, true
}

func (d *DragController) Begin(ev PointerEvent, element Rect, container Rect) error {
	p, err := ev.Point()
	if err != nil {
		return err
	}

	if d.state == DragDragging {
		// a pointer-down without a matching pointer-up; drop the stale listeners
		d.listeners.Detach()
	}

	d.session = &DragSession{
		GrabOffset: Point{X: p.X - element.Left, Y: p.Y - element.Top},
		Container:  container,
		Element:    element.Size(),
		Position:   Point{X: element.Left - container.Left, Y: element.Top - container.Top},
	}
	d.state = DragDragging
	d.listeners.Attach()

	return nil
}

func (d *DragController) Move(ev PointerEvent) (Point, error) {
	if d.state != DragDragging || d.session == nil {
		return Point{}, ErrNotDragging
	}

	p, err := ev.Point()
	if err != nil {
		return d.session.Position, err
	}

	s := d.session
	s.Position = Point{
		X: clamp(p.X-s.Container.Left-s.GrabOffset.X, 0, s.Container.Width-s.Element.Width),
		Y: clamp(p.Y-s.Container.Top-s.GrabOffset.Y, 0, s.Container.Height-s.Element.Height),
	}

	return s.Position, nil
}

// End releases the drag and maps its final position into PDF space. Listeners are
// detached whatever the outcome. On error the previous Placement is kept.
func (d *DragController) End(ev PointerEvent, mapper *Mapper, fontSize float64, mode EndMode) (Placement, error) {
	if d.state != DragDragging || d.session == nil {
		return Placement{}, ErrNotDragging
	}
	defer d.listeners.Detach()
	d.state = DragReleased

	var target Point
	switch mode {
	case EndAtPointer:
		p, err := ev.Point()
		if err != nil {
			return Placement{}, err
		}
		target = p
	default:
		// a final move may come with the pointer-up event
		if _, err := ev.Point(); err == nil {
			d.Move(ev)
		}
		s := d.session
		target = Point{X: s.Container.Left + s.Position.X, Y: s.Container.Top + s.Position.Y}
	}

	if mapper == nil {
		return Placement{}, ErrNoPageSurface
	}

	placement, err := mapper.Map(target, fontSize)
	if err != nil {
		return Placement{}, err
	}

	d.placement = &placement
	return placement, nil
}

// Cancel aborts a drag without committing anything.
func (d *DragController) Cancel() {
	if d.state == DragDragging {
		d.listeners.Detach()
	}
	d.state = DragIdle
	d.session = nil
}

// DragRegistry owns one DragController per key (a signing session id) so that several
// signature widgets never share drag state. It also serves as the listener set: a key
// is active exactly while its drag has listeners attached.
type DragRegistry struct {
	mu          sync.Mutex
	controllers map[string]*DragController
	active      map[string]bool
}

func NewDragRegistry() *DragRegistry {
	return &DragRegistry{
		controllers: make(map[string]*DragController),
		active:      make(map[string]bool),
	}
}

type registryListeners struct {
	r   *DragRegistry
	key string
}

// Called with r.mu held through the controller methods.
func (l registryListeners) Attach() { l.r.active[l.key] = true }
func (l registryListeners) Detach() { delete(l.r.active, l.key) }

func (r *DragRegistry) controller(key string) *DragController {
	c, ok := r.controllers[key]
	if !ok {
		c = NewDragController(registryListeners{r: r, key: key})
		r.controllers[key] = c
	}
	return c
}

func (r *DragRegistry) Begin(key string, ev PointerEvent, element Rect, container Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controller(key).Begin(ev, element, container)
}

func (r *DragRegistry) Move(key string, ev PointerEvent) (Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[key]
	if !ok {
		return Point{}, ErrNotDragging
	}
	return c.Move(ev)
}

func (r *DragRegistry) End(key string, ev PointerEvent, mapper *Mapper, fontSize float64, mode EndMode) (Placement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[key]
	if !ok {
		return Placement{}, ErrNotDragging
	}
	return c.End(ev, mapper, fontSize, mode)
}

// IsDragging reports whether key currently has listeners attached.
func (r *DragRegistry) IsDragging(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[key]
}

// Forget drops the controller of key, e.g. once its session is confirmed.
func (r *DragRegistry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[key]; ok {
		c.Cancel()
		delete(r.controllers, key)
	}
}

// Position returns the label position of key's current or last drag.
func (r *DragRegistry) Position(key string) (Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[key]
	if !ok {
		return Point{}, false
	}
	return c.Position()
}
