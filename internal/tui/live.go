package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/vizdash/internal/dispatch"
	"github.com/san-kum/vizdash/internal/render"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Live redraws the whole screen on every update, pausing Delay after each
// frame so a replay can be followed. It implements dispatch.Renderer.
type Live struct {
	W     io.Writer
	Term  render.Terminal
	Delay time.Duration

	started bool
}

func NewLive(w io.Writer, term render.Terminal, delay time.Duration) *Live {
	return &Live{W: w, Term: term, Delay: delay}
}

func (r *Live) Render(u dispatch.Update) error {
	if !r.started {
		r.started = true
		if _, err := io.WriteString(r.W, hideCursor); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(r.W, clearScreen, r.Term.Update(u), "\n"); err != nil {
		return err
	}
	if r.Delay > 0 {
		time.Sleep(r.Delay)
	}
	return nil
}

// Close restores the cursor.
func (r *Live) Close() error {
	if !r.started {
		return nil
	}
	_, err := io.WriteString(r.W, showCursor)
	return err
}
