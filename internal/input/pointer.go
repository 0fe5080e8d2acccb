// Package input turns raw pointer events into normalized pointer state.
package input

import "fmt"

type Kind int

const (
	Down Kind = iota
	Move
	Up
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Pointer is the shared pointer state in normalized device coordinates,
// x and y in [-1, 1] with +y up.
type Pointer struct {
	X          float64
	Y          float64
	IsDragging bool
}

// PointerEvent is a snapshot of the pointer taken when an event fired.
type PointerEvent struct {
	Kind    Kind
	Pointer Pointer
	// Raw is the frontend's native event, if any.
	Raw any
}

// Handler consumes pointer events.
type Handler interface {
	HandlePointer(ev PointerEvent)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev PointerEvent)

func (f HandlerFunc) HandlePointer(ev PointerEvent) { f(ev) }
