package server

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/san-kum/vizdash/internal/controls"
)

//go:embed templates/page.html
var templates embed.FS

var pageTmpl = template.Must(template.ParseFS(templates, "templates/page.html"))

type pageOption struct {
	Value, Label string
	Selected     bool
}

type pageControl struct {
	ID, Label string
	Multiple  bool
	Options   []pageOption
}

type pageOutput struct {
	ID, Title string
	Src       string
	Error     string
	Code      string
}

type page struct {
	Title       string
	Description string
	Dashboards  []string
	Controls    []pageControl
	Locations   []pageOption
	Outputs     []pageOutput
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if len(s.names) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboards/"+s.names[0], http.StatusFound)
}

// handlePage renders the dashboard for the state in the query string.
// Failed outputs are shown as error panels, the rest as SVG images whose
// URLs carry the same query.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.dashboardParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	state, err := s.stateFromQuery(c, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel := q.Get("selection")
	outs, err := c.Recompute(state, sel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	def := c.Definition()
	p := page{Title: def.Title, Description: def.Description, Dashboards: s.names}
	for _, d := range c.Controls() {
		v, _ := state.Get(d.ID)
		chosen := make(map[string]bool)
		for _, it := range v.Items() {
			chosen[it] = true
		}
		pc := pageControl{ID: d.ID, Label: d.Label, Multiple: d.Kind == controls.MultiDropdown}
		for _, o := range d.Options {
			pc.Options = append(pc.Options, pageOption{Value: o.Value, Label: o.Label, Selected: chosen[o.Value]})
		}
		p.Controls = append(p.Controls, pc)
	}
	for _, loc := range c.Locations() {
		p.Locations = append(p.Locations, pageOption{Value: loc, Label: loc, Selected: loc == sel})
	}

	query := url.Values{}
	for _, id := range state.IDs() {
		v, _ := state.Get(id)
		if v.IsList() {
			query[id] = append([]string{""}, v.Items()...)
			continue
		}
		query.Set(id, v.String())
	}
	if sel != "" {
		query.Set("selection", sel)
	}
	for _, o := range outs {
		decl, _ := c.Output(o.ID)
		po := pageOutput{ID: o.ID, Title: decl.Title}
		if !o.OK() {
			po.Error, po.Code = o.Message, string(o.Code)
		} else {
			po.Src = "/api/dashboards/" + c.Name() + "/outputs/" + o.ID + ".svg?" + query.Encode()
		}
		p.Outputs = append(p.Outputs, po)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, p); err != nil {
		s.log.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("page render failed")
	}
}
