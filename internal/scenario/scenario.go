package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/dispatch"
)

var ErrBadStep = errors.New("scenario: bad step")

// Scenario is a scripted sequence of interactions with one dashboard.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Dashboard   string `yaml:"dashboard"`
	Preset      string `yaml:"preset"`
	Steps       []Step `yaml:"steps"`
}

// Step holds exactly one action: set, click, clear, reset or preset.
type Step struct {
	Set    controls.State `yaml:"set"`
	Click  string         `yaml:"click"`
	Clear  bool           `yaml:"clear"`
	Reset  bool           `yaml:"reset"`
	Preset string         `yaml:"preset"`
	Expect *Expect        `yaml:"expect"`
}

// Expect checks the outcome of a step.
type Expect struct {
	// Rejected means the event must be refused; the scenario carries on.
	Rejected  bool              `yaml:"rejected"`
	Failed    map[string]string `yaml:"failed"`
	Selection *string           `yaml:"selection"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Dashboard == "" {
		return nil, fmt.Errorf("%w: no dashboard named", ErrBadStep)
	}
	return &sc, nil
}

// PresetFunc resolves a preset name for a dashboard.
type PresetFunc func(dashboard, name string) (controls.State, bool)

// Event turns a step into a dispatch event. Clicks name a location of the
// dashboard's clickable output, or "output:location".
func (st Step) Event(def dashboard.Definition, presets PresetFunc) (dispatch.Event, error) {
	actions := 0
	for _, set := range []bool{st.Set.Len() > 0, st.Click != "", st.Clear, st.Reset, st.Preset != ""} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return nil, fmt.Errorf("%w: want exactly one action, got %d", ErrBadStep, actions)
	}

	switch {
	case st.Set.Len() == 1:
		id := st.Set.IDs()[0]
		v, _ := st.Set.Get(id)
		return dispatch.ControlChanged{Control: id, Value: v}, nil
	case st.Set.Len() > 1:
		return dispatch.Applied{State: st.Set}, nil
	case st.Click != "":
		output, loc, ok := strings.Cut(st.Click, ":")
		if !ok {
			if def.Selection == nil {
				return nil, fmt.Errorf("%w: %s has no clickable output", ErrBadStep, def.Name)
			}
			output, loc = def.Selection.Output, st.Click
		}
		return dispatch.Clicked{Output: output, Location: loc}, nil
	case st.Clear:
		return dispatch.SelectionCleared{}, nil
	case st.Reset:
		return dispatch.Reset{}, nil
	default:
		state, ok := presets(def.Name, st.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrBadStep, st.Preset)
		}
		return dispatch.Applied{Name: st.Preset, State: state}, nil
	}
}

// Result is the outcome of one step.
type Result struct {
	Step   int
	Event  string
	Update dispatch.Update
	Err    error
}

// Summary is a one line description of the result.
func (r Result) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("%3d %-32s rejected: %v", r.Step, r.Event, r.Err)
	}
	failed := r.Update.Failed()
	codes := make([]string, len(failed))
	for i, o := range failed {
		codes[i] = o.ID + "=" + string(o.Code)
	}
	line := fmt.Sprintf("%3d %-32s seq=%d outputs=%d", r.Step, r.Event, r.Update.Seq, len(r.Update.Outputs))
	if r.Update.Selection != "" {
		line += " selection=" + r.Update.Selection
	}
	if len(codes) > 0 {
		line += " failed=" + strings.Join(codes, ",")
	}
	return line
}

// Run starts the session (applying the scenario preset first when set) and
// replays every step. Step 0 is the initial recomputation. It stops at the
// first unexpected outcome.
func Run(ctx context.Context, sc *Scenario, sess *dispatch.Session, presets PresetFunc) ([]Result, error) {
	def := sess.Context().Definition()
	results := make([]Result, 0, len(sc.Steps)+1)

	var u dispatch.Update
	var err error
	if sc.Preset != "" {
		state, ok := presets(def.Name, sc.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrBadStep, sc.Preset)
		}
		u, err = sess.Handle(dispatch.Applied{Name: sc.Preset, State: state})
	} else {
		u, err = sess.Start()
	}
	if err != nil {
		return nil, fmt.Errorf("initial: %w", err)
	}
	results = append(results, Result{Step: 0, Event: u.Trigger, Update: u})

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		n := i + 1
		ev, err := st.Event(def, presets)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", n, err)
		}

		u, err := sess.Handle(ev)
		res := Result{Step: n, Event: ev.String(), Update: u, Err: err}
		results = append(results, res)
		if err := check(st.Expect, res); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", n, ev, err)
		}
	}
	return results, nil
}

func check(exp *Expect, r Result) error {
	if exp == nil {
		return r.Err
	}
	if exp.Rejected {
		if r.Err == nil {
			return errors.New("expected the event to be rejected")
		}
		return nil
	}
	if r.Err != nil {
		return r.Err
	}

	got := make(map[string]string)
	for _, o := range r.Update.Failed() {
		got[o.ID] = string(o.Code)
	}
	if exp.Failed != nil && !sameCodes(exp.Failed, got) {
		return fmt.Errorf("expected failures %v, got %v", exp.Failed, got)
	}
	if exp.Selection != nil && *exp.Selection != r.Update.Selection {
		return fmt.Errorf("expected selection %q, got %q", *exp.Selection, r.Update.Selection)
	}
	return nil
}

func sameCodes(want, got map[string]string) bool {
	if len(want) != len(got) {
		return false
	}
	for k, code := range want {
		if got[k] != code {
			return false
		}
	}
	return true
}
