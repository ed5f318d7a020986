package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/render"
)

type errorBody struct {
	Error string         `json:"error"`
	Code  dashboard.Code `json:"code,omitempty"`
}

type summary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Dataset     string   `json:"dataset"`
	Outputs     []string `json:"outputs"`
}

type filterInfo struct {
	Control string             `json:"control"`
	Column  string             `json:"column"`
	Match   string             `json:"match"`
	Policy  derive.EmptyPolicy `json:"empty_policy"`
}

type outputInfo struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Kind  chart.Kind `json:"kind"`
}

type selectionInfo struct {
	Output   string `json:"output"`
	Column   string `json:"column"`
	Fallback string `json:"fallback,omitempty"`
}

type detail struct {
	summary
	Controls  []controls.Declaration `json:"controls"`
	Filters   []filterInfo           `json:"filters"`
	Defaults  controls.State         `json:"defaults"`
	Presets   []string               `json:"presets"`
	Selection *selectionInfo         `json:"selection,omitempty"`
	Outputs   []outputInfo           `json:"outputs"`
}

type recomputeRequest struct {
	State        controls.State `json:"state"`
	Selection    string         `json:"selection"`
	FillDefaults bool           `json:"fill_defaults"`
}

type recomputeResponse struct {
	Dashboard string             `json:"dashboard"`
	State     controls.State     `json:"state"`
	Selection string             `json:"selection,omitempty"`
	Outputs   []dashboard.Output `json:"outputs"`
}

// writeJSON encodes v before writing the header, so a value that cannot be
// encoded becomes a 500 instead of a truncated 200.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("encode response")
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: "encode response: " + err.Error(), Code: dashboard.CodeInternal})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.log.Debug().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: err.Error()}
	if status < 500 && status != http.StatusNotFound {
		body.Code = dashboard.CodeOf(err)
	}
	s.writeJSON(w, r, status, body)
}

func (s *Server) dashboardParam(w http.ResponseWriter, r *http.Request) (*dashboard.Context, bool) {
	name := chi.URLParam(r, "name")
	c, ok := s.lookup(name)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", dashboard.ErrUnknownDashboard, name))
	}
	return c, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

func summarize(c *dashboard.Context) summary {
	def := c.Definition()
	return summary{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Dataset:     c.Data().Name(),
		Outputs:     c.OutputIDs(),
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]summary, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, summarize(s.dashboards[name]))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := s.dashboardParam(w, r)
	if !ok {
		return
	}
	def := c.Definition()
	d := detail{
		summary:  summarize(c),
		Controls: c.Controls(),
		Filters:  []filterInfo{},
		Defaults: c.Defaults(),
		Presets:  []string{},
	}
	for _, f := range def.Filters {
		fi := filterInfo{Control: f.Control, Column: f.Column, Match: f.Match.String(), Policy: f.Policy}
		d.Filters = append(d.Filters, fi)
	}
	for _, o := range def.Outputs {
		d.Outputs = append(d.Outputs, outputInfo{ID: o.ID, Title: o.Title, Kind: o.Kind})
	}
	if sel := def.Selection; sel != nil {
		d.Selection = &selectionInfo{Output: sel.Output, Column: sel.Column, Fallback: sel.Fallback}
	}
	if s.presets != nil {
		d.Presets = append(d.Presets, s.presets.PresetNames(def.Name)...)
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

// handleRecompute recomputes every output for the posted state. Controls
// missing from the state are an error unless fill_defaults is set.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	c, ok := s.dashboardParam(w, r)
	if !ok {
		return
	}
	var req recomputeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Code: dashboard.CodeMalformedInput})
		return
	}
	state := req.State
	if req.FillDefaults {
		state = state.Fill(c.Controls())
	}
	outs, err := c.Recompute(state, req.Selection)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, recomputeResponse{
		Dashboard: c.Name(),
		State:     state,
		Selection: req.Selection,
		Outputs:   outs,
	})
}

// stateFromQuery starts from the defaults, applies ?preset= and then any
// ?<control>= values. Multi selects accept repeated or comma separated
// values; blank items are dropped.
func (s *Server) stateFromQuery(c *dashboard.Context, q url.Values) (controls.State, error) {
	state := c.Defaults()
	if name := q.Get("preset"); name != "" && s.presets != nil {
		p, ok := s.presets.Preset(c.Name(), name)
		if !ok {
			return controls.State{}, fmt.Errorf("%w: unknown preset %q", controls.ErrInvalidValue, name)
		}
		state = state.Merge(p)
	}
	for _, d := range c.Controls() {
		raw, ok := q[d.ID]
		if !ok {
			continue
		}
		if d.Kind == controls.MultiDropdown {
			var items []string
			for _, v := range raw {
				for _, it := range strings.Split(v, ",") {
					if it = strings.TrimSpace(it); it != "" {
						items = append(items, it)
					}
				}
			}
			state = state.With(d.ID, controls.List(items...))
			continue
		}
		state = state.With(d.ID, d.Parse(raw[len(raw)-1]))
	}
	return state, nil
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.dashboardParam(w, r)
	if !ok {
		return
	}
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	id := strings.TrimSuffix(file, ext)
	format, err := render.ParseFormat(ext)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	state, err := s.stateFromQuery(c, r.URL.Query())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	o, err := c.RecomputeOne(state, r.URL.Query().Get("selection"), id)
	switch {
	case errors.Is(err, dashboard.ErrUnknownOutput):
		s.writeError(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	case !o.OK():
		s.writeJSON(w, r, http.StatusUnprocessableEntity, errorBody{Error: o.Message, Code: o.Code})
		return
	}

	var buf bytes.Buffer
	err = render.NewImage(format).Render(&buf, *o.Spec)
	if errors.Is(err, render.ErrEmptyChart) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Str("output", id).Msg("render failed")
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}
