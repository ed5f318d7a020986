package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/vizdash/internal/dispatch"
)

// Writer prints each update as terminal text. It implements
// dispatch.Renderer.
type Writer struct {
	W    io.Writer
	Term Terminal
}

func (w Writer) Render(u dispatch.Update) error {
	_, err := fmt.Fprintln(w.W, w.Term.Update(u))
	return err
}

// JSONWriter prints each update as one JSON line.
type JSONWriter struct {
	W io.Writer
}

func (w JSONWriter) Render(u dispatch.Update) error {
	return json.NewEncoder(w.W).Encode(u)
}
