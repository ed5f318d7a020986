package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
)

// ErrBusy is returned by Handle while another event is being processed.
var ErrBusy = errors.New("dispatch: recomputation in progress")

// Phase is the session state machine: Idle -> Recomputing -> Idle.
type Phase int32

const (
	Idle Phase = iota
	Recomputing
)

func (p Phase) String() string {
	if p == Recomputing {
		return "recomputing"
	}
	return "idle"
}

// Update is everything one recomputation produced. Renderers receive it
// whole, so every output of a change appears together.
type Update struct {
	Seq       uint64             `json:"seq"`
	Dashboard string             `json:"dashboard"`
	Trigger   string             `json:"trigger"`
	State     controls.State     `json:"state"`
	Selection string             `json:"selection,omitempty"`
	Outputs   []dashboard.Output `json:"outputs"`
	Duration  time.Duration      `json:"duration_ns"`
}

// Failed returns the outputs that could not be built.
func (u Update) Failed() []dashboard.Output {
	var out []dashboard.Output
	for _, o := range u.Outputs {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

type Renderer interface {
	Render(u Update) error
}

type RendererFunc func(u Update) error

func (f RendererFunc) Render(u Update) error { return f(u) }

// Metrics receives recomputation outcomes. *metrics.Recorder implements it.
type Metrics interface {
	Recomputed(dashboard string, d time.Duration, outs []dashboard.Output)
	Rejected(dashboard string, err error)
}

type Option func(*Session)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithRenderer(r ...Renderer) Option {
	return func(s *Session) { s.renderers = append(s.renderers, r...) }
}

func WithMetrics(m Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithState starts the session from st instead of the defaults.
func WithState(st controls.State) Option {
	return func(s *Session) { s.state = st }
}

func WithSelection(sel string) Option {
	return func(s *Session) { s.selection = sel }
}

// Session owns the control state and selection of one user of one
// dashboard. Events are handled one at a time: an event arriving while
// another is in flight, including from inside a renderer, gets ErrBusy.
type Session struct {
	ctx       *dashboard.Context
	log       zerolog.Logger
	metrics   Metrics
	renderers []Renderer

	phase atomic.Int32

	mu        sync.RWMutex
	state     controls.State
	selection string
	seq       uint64
	last      Update
}

// NewSession builds a session. The initial state is the dashboard defaults
// unless WithState is given; it must validate.
func NewSession(ctx *dashboard.Context, opts ...Option) (*Session, error) {
	s := &Session{
		ctx:   ctx,
		log:   zerolog.Nop(),
		state: ctx.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := controls.Validate(s.state, ctx.Controls()); err != nil {
		return nil, fmt.Errorf("dispatch: initial state: %w", err)
	}
	return s, nil
}

// Start computes and renders the initial outputs.
func (s *Session) Start() (Update, error) {
	return s.run("initial", func(st controls.State, sel string) (controls.State, string, error) {
		return st, sel, nil
	})
}

// Handle applies ev, recomputes every output and hands the update to the
// renderers. An event that cannot be applied (unknown control, value outside
// the options, click on an unknown location) returns an error and leaves the
// state and last update untouched. Renderer errors are returned after the
// state has been committed.
func (s *Session) Handle(ev Event) (Update, error) {
	return s.run(ev.String(), func(st controls.State, sel string) (controls.State, string, error) {
		return s.apply(ev, st, sel)
	})
}

func (s *Session) run(trigger string, apply func(controls.State, string) (controls.State, string, error)) (Update, error) {
	if !s.phase.CompareAndSwap(int32(Idle), int32(Recomputing)) {
		return Update{}, ErrBusy
	}
	defer s.phase.Store(int32(Idle))

	name := s.ctx.Name()
	s.mu.RLock()
	state, sel := s.state, s.selection
	s.mu.RUnlock()

	state, sel, err := apply(state, sel)
	if err != nil {
		s.reject(trigger, err)
		return Update{}, err
	}

	start := time.Now()
	outs, err := s.ctx.Recompute(state, sel)
	if err != nil {
		s.reject(trigger, err)
		return Update{}, err
	}
	elapsed := time.Since(start)

	s.mu.Lock()
	s.seq++
	u := Update{
		Seq:       s.seq,
		Dashboard: name,
		Trigger:   trigger,
		State:     state,
		Selection: sel,
		Outputs:   outs,
		Duration:  elapsed,
	}
	s.state, s.selection, s.last = state, sel, u
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Recomputed(name, elapsed, outs)
	}
	ev := s.log.Debug().
		Str("dashboard", name).
		Uint64("seq", u.Seq).
		Str("trigger", trigger).
		Dur("took", elapsed)
	if failed := u.Failed(); len(failed) > 0 {
		ids := make([]string, len(failed))
		for i, o := range failed {
			ids[i] = o.ID + ":" + string(o.Code)
		}
		ev = ev.Strs("failed", ids)
	}
	ev.Msg("recomputed")

	var errs []error
	for _, r := range s.renderers {
		if err := r.Render(u); err != nil {
			errs = append(errs, err)
		}
	}
	return u, errors.Join(errs...)
}

func (s *Session) reject(trigger string, err error) {
	if s.metrics != nil {
		s.metrics.Rejected(s.ctx.Name(), err)
	}
	s.log.Warn().Err(err).Str("dashboard", s.ctx.Name()).Str("trigger", trigger).Msg("event rejected")
}

func (s *Session) apply(ev Event, st controls.State, sel string) (controls.State, string, error) {
	switch e := ev.(type) {
	case ControlChanged:
		v, err := s.normalize(e.Control, e.Value)
		if err != nil {
			return st, sel, err
		}
		return st.With(e.Control, v), sel, nil
	case Clicked:
		loc, err := s.ctx.ResolveClick(e.Output, e.Location)
		if err != nil {
			return st, sel, err
		}
		return st, loc, nil
	case SelectionCleared:
		return st, "", nil
	case Reset:
		return s.ctx.Defaults(), "", nil
	case Applied:
		for _, id := range e.State.IDs() {
			raw, _ := e.State.Get(id)
			v, err := s.normalize(id, raw)
			if err != nil {
				return st, sel, err
			}
			st = st.With(id, v)
		}
		return st, sel, nil
	default:
		return st, sel, fmt.Errorf("dispatch: unsupported event %T", ev)
	}
}

func (s *Session) normalize(id string, v controls.Value) (controls.Value, error) {
	d, ok := s.ctx.Control(id)
	if !ok {
		return controls.Value{}, &controls.StateError{Control: id, Err: controls.ErrUnknownControl}
	}
	return d.Normalize(v)
}

func (s *Session) Context() *dashboard.Context { return s.ctx }

func (s *Session) Phase() Phase { return Phase(s.phase.Load()) }

func (s *Session) State() controls.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Selection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Last returns the most recent update, or the zero Update before Start.
func (s *Session) Last() Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
