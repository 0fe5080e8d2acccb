package input

// Tracker owns the shared Pointer and converts pixel offsets on a surface into it.
type Tracker struct {
	Width  float64
	Height float64

	pointer Pointer
}

func NewTracker(width, height float64) *Tracker {
	return &Tracker{Width: width, Height: height}
}

func (t *Tracker) Resize(width, height float64) {
	t.Width, t.Height = width, height
}

// Pointer returns the current pointer state.
func (t *Tracker) Pointer() Pointer { return t.pointer }

// Handle updates the pointer from an event at pixel offset (offX, offY).
// Non-primary events are dropped and report false.
func (t *Tracker) Handle(kind Kind, offX, offY float64, primary bool, raw any) (PointerEvent, bool) {
	if !primary || t.Width <= 0 || t.Height <= 0 {
		return PointerEvent{}, false
	}
	t.pointer.X = offX/t.Width*2 - 1
	t.pointer.Y = -offY/t.Height*2 + 1
	switch kind {
	case Down:
		t.pointer.IsDragging = true
	case Up:
		t.pointer.IsDragging = false
	}
	return PointerEvent{Kind: kind, Pointer: t.pointer, Raw: raw}, true
}
