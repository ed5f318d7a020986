package dispatch

import (
	"fmt"

	"github.com/san-kum/vizdash/internal/controls"
)

// Event is an external interaction that may change what a session shows.
type Event interface {
	fmt.Stringer
	isEvent()
}

// ControlChanged sets one control to a new value.
type ControlChanged struct {
	Control string
	Value   controls.Value
}

// Clicked reports a click on Location (a rendered element) of Output.
type Clicked struct {
	Output   string
	Location string
}

// SelectionCleared forgets the clicked selection.
type SelectionCleared struct{}

// Reset restores the default control values and clears the selection.
type Reset struct{}

// Applied replaces several controls at once, for presets. Controls not in
// State keep their current value.
type Applied struct {
	Name  string
	State controls.State
}

func (ControlChanged) isEvent()   {}
func (Clicked) isEvent()          {}
func (SelectionCleared) isEvent() {}
func (Reset) isEvent()            {}
func (Applied) isEvent()          {}

func (e ControlChanged) String() string {
	return fmt.Sprintf("%s=%s", e.Control, e.Value.Format())
}

func (e Clicked) String() string {
	return fmt.Sprintf("click %s:%s", e.Output, e.Location)
}

func (SelectionCleared) String() string { return "clear selection" }
func (Reset) String() string            { return "reset" }

func (e Applied) String() string {
	if e.Name != "" {
		return "preset " + e.Name
	}
	return "apply " + e.State.String()
}
