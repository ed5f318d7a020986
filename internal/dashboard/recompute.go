package dashboard

import (
	"fmt"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

// Output is the result of one declared output: a spec, or the error that
// kept it from being built.
type Output struct {
	ID      string      `json:"id"`
	Spec    *chart.Spec `json:"spec,omitempty"`
	Code    Code        `json:"code,omitempty"`
	Message string      `json:"error,omitempty"`
	Err     error       `json:"-"`
}

func (o Output) OK() bool { return o.Err == nil }

// Recompute derives every output from state and selection, in declared
// order. An empty selection means nothing is selected.
//
// The state must hold exactly the declared controls; anything else is a
// configuration error and nothing is computed. Data errors are reported per
// output and never stop the other outputs from being built.
func (c *Context) Recompute(state controls.State, selection string) ([]Output, error) {
	if err := controls.Validate(state, c.decls); err != nil {
		return nil, fmt.Errorf("%s: %w", c.def.Name, err)
	}
	r := c.request(state, selection)
	outs := make([]Output, len(c.def.Outputs))
	for i, o := range c.def.Outputs {
		outs[i] = r.build(o)
	}
	return outs, nil
}

// RecomputeOne derives a single output.
func (c *Context) RecomputeOne(state controls.State, selection, output string) (Output, error) {
	o, ok := c.Output(output)
	if !ok {
		return Output{}, fmt.Errorf("%w: %s", ErrUnknownOutput, output)
	}
	if err := controls.Validate(state, c.decls); err != nil {
		return Output{}, fmt.Errorf("%s: %w", c.def.Name, err)
	}
	return c.request(state, selection).build(o), nil
}

func (c *Context) request(state controls.State, selection string) *Request {
	return &Request{ctx: c, State: state, Selection: selection}
}

// Request is what an output builder sees: the state being rendered and
// lazily computed shared views.
type Request struct {
	ctx       *Context
	State     controls.State
	Selection string

	filtered  frame.View
	filterErr error
	filterRan bool
}

func (r *Request) build(o OutputDecl) (out Output) {
	out.ID = o.ID
	defer func() {
		if p := recover(); p != nil {
			out = Output{ID: o.ID, Err: fmt.Errorf("%s: panic: %v", o.ID, p)}
			out.Code, out.Message = CodeInternal, out.Err.Error()
		}
	}()

	spec, err := o.Build(r)
	if err != nil {
		out.Err = err
		out.Code = CodeOf(err)
		out.Message = err.Error()
		return out
	}
	out.Spec = &spec
	return out
}

func (r *Request) Data() *frame.Dataset { return r.ctx.data }

// Filtered returns the view left after the dashboard's filters. It is
// computed on first use and shared by all outputs of one recomputation.
func (r *Request) Filtered() (frame.View, error) {
	if !r.filterRan {
		filters := make([]derive.Filter, len(r.ctx.def.Filters))
		for i, f := range r.ctx.def.Filters {
			filters[i] = f.build(r.State)
		}
		r.filtered, r.filterErr = derive.Apply(r.ctx.data.All(), filters...)
		r.filterRan = true
	}
	return r.filtered, r.filterErr
}

// Scalar returns a control's scalar value.
func (r *Request) Scalar(id string) string {
	v, _ := r.State.Get(id)
	return v.String()
}

// Label returns the option label for a control's current value. A value
// that is not an option fails with controls.ErrInvalidValue.
func (r *Request) Label(id string) (string, error) {
	value := r.Scalar(id)
	d, ok := r.ctx.Control(id)
	if !ok {
		return "", &controls.StateError{Control: id, Err: controls.ErrUnknownControl}
	}
	for _, o := range d.Options {
		if o.Value == value {
			return o.Label, nil
		}
	}
	return "", &controls.StateError{Control: id, Err: fmt.Errorf("%w: %q is not an option", controls.ErrInvalidValue, value)}
}

func (r *Request) Palette(col string) chart.Palette { return r.ctx.Palette(col) }
