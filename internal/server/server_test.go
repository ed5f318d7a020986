package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/vizdash/internal/config"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/frame"
	"github.com/san-kum/vizdash/internal/metrics"
)

func newServer(t *testing.T) (*Server, *metrics.Recorder) {
	t.Helper()
	reg := dashboard.NewRegistry()
	var contexts []*dashboard.Context
	for _, name := range reg.List() {
		def, err := reg.Get(name)
		require.NoError(t, err)
		ds, err := datasets.Builtin(def.Dataset)
		require.NoError(t, err)
		c, err := dashboard.New(def, ds)
		require.NoError(t, err)
		contexts = append(contexts, c)
	}
	rec := metrics.NewRecorder()
	return New(contexts, WithMetrics(rec), WithPresets(config.DefaultConfig())), rec
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type outputBody struct {
	ID    string          `json:"id"`
	Spec  json.RawMessage `json:"spec"`
	Code  string          `json:"code"`
	Error string          `json:"error"`
}

type recomputeBody struct {
	Dashboard string       `json:"dashboard"`
	Outputs   []outputBody `json:"outputs"`
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rr := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())

	_, err := uuid.Parse(rr.Header().Get(requestIDHeader))
	assert.NoError(t, err, "every response carries a request id")
}

func TestRequestIDIsReused(t *testing.T) {
	s, _ := newServer(t)
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, id, rr.Header().Get(requestIDHeader))
}

func TestListDashboards(t *testing.T) {
	s, _ := newServer(t)
	rr := do(t, s, http.MethodGet, "/api/dashboards", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"gapminder", "hello", "iris"}, names)
}

func TestDashboardDetail(t *testing.T) {
	s, _ := newServer(t)
	rr := do(t, s, http.MethodGet, "/api/dashboards/gapminder", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Controls []struct {
			ID string `json:"id"`
		} `json:"controls"`
		Filters []struct {
			Control string `json:"control"`
			Policy  string `json:"empty_policy"`
		} `json:"filters"`
		Presets   []string `json:"presets"`
		Selection *struct {
			Output string `json:"output"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Controls, 3)
	assert.NotEmpty(t, got.Presets)
	require.NotNil(t, got.Selection)
	assert.Equal(t, "choropleth", got.Selection.Output)

	policies := map[string]string{}
	for _, f := range got.Filters {
		policies[f.Control] = f.Policy
	}
	assert.Contains(t, policies, "continents")
	assert.NotEmpty(t, policies["continents"])

	rr = do(t, s, http.MethodGet, "/api/dashboards/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecompute(t *testing.T) {
	s, _ := newServer(t)
	body := map[string]any{
		"state": map[string]any{
			"x-col":   "petal_length",
			"y-col":   "petal_width",
			"species": []string{"setosa", "virginica"},
		},
	}
	rr := do(t, s, http.MethodPost, "/api/dashboards/iris/recompute", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got recomputeBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Outputs, 4)
	ids := []string{}
	for _, o := range got.Outputs {
		ids = append(ids, o.ID)
		assert.Empty(t, o.Code, "output %s failed: %s", o.ID, o.Error)
	}
	assert.Equal(t, []string{"scatter", "hist", "box", "pair"}, ids)
	assert.Contains(t, string(got.Outputs[0].Spec), "Scatter: petal_length vs petal_width")
}

func TestRecompute_MissingControls(t *testing.T) {
	s, _ := newServer(t)
	body := map[string]any{"state": map[string]any{"x-col": "petal_length"}}

	rr := do(t, s, http.MethodPost, "/api/dashboards/iris/recompute", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var e errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, dashboard.CodeInvalidControl, e.Code)

	body["fill_defaults"] = true
	rr = do(t, s, http.MethodPost, "/api/dashboards/iris/recompute", body)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecompute_OutputIsolation(t *testing.T) {
	s, _ := newServer(t)
	body := map[string]any{
		"state":         map[string]any{"x-col": "no_such_column"},
		"fill_defaults": true,
	}
	rr := do(t, s, http.MethodPost, "/api/dashboards/iris/recompute", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var got recomputeBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	codes := map[string]string{}
	for _, o := range got.Outputs {
		codes[o.ID] = o.Code
	}
	assert.Equal(t, "missing_column", codes["scatter"])
	assert.Equal(t, "missing_column", codes["hist"])
	assert.Empty(t, codes["box"], "box does not read x-col")
}

func TestRecompute_BadBody(t *testing.T) {
	s, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/dashboards/iris/recompute", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "malformed_input")
}

func TestImage(t *testing.T) {
	s, _ := newServer(t)

	rr := do(t, s, http.MethodGet, "/api/dashboards/gapminder/outputs/top10.svg?metric=pop&year=1952", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")

	rr = do(t, s, http.MethodGet, "/api/dashboards/iris/outputs/scatter.png?preset=petals", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	rr = do(t, s, http.MethodGet, "/api/dashboards/iris/outputs/nope.svg", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/dashboards/iris/outputs/scatter.gif", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/dashboards/iris/outputs/scatter.svg?x-col=species", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "wrong_kind")
}

func TestPage(t *testing.T) {
	s, _ := newServer(t)
	rr := do(t, s, http.MethodGet, "/dashboards/iris?species=&x-col=nope", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := rr.Body.String()

	assert.Contains(t, page, "Iris Dashboard")
	assert.Contains(t, page, `class="output error"`, "the failing scatter shows an error panel")
	assert.Contains(t, page, "/api/dashboards/iris/outputs/box.svg?")

	rr = do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/dashboards/gapminder", rr.Header().Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t)
	do(t, s, http.MethodGet, "/api/dashboards", nil)
	rr := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `vizdash_http_requests_total{route="/api/dashboards`)
}

func TestImage_SingleSpeciesBox(t *testing.T) {
	s, _ := newServer(t)
	rr := do(t, s, http.MethodGet, "/api/dashboards/iris/outputs/box.svg?species=setosa", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "<svg")
}

func TestRecompute_BlankMetricCells(t *testing.T) {
	const csv = "country,continent,year,lifeExp,pop,gdpPercap,iso_alpha,iso_num\n" +
		"A,Asia,2007,70.1,1000,1000,AAA,1\n" +
		"B,Asia,2007,71.2,2000,,BBB,2\n" +
		"C,Asia,2007,72.3,3000,3000,CCC,3\n"
	ds, err := frame.ReadCSV("gapminder", strings.NewReader(csv), datasets.GapminderColumns...)
	require.NoError(t, err)
	c, err := dashboard.New(dashboard.Gapminder(), ds)
	require.NoError(t, err)
	s := New([]*dashboard.Context{c})

	body := map[string]any{"state": map[string]any{"metric": "gdpPercap"}, "fill_defaults": true}
	rr := do(t, s, http.MethodPost, "/api/dashboards/gapminder/recompute", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got recomputeBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Outputs, 3)
	assert.Equal(t, "top10", got.Outputs[1].ID)
	assert.NotContains(t, string(got.Outputs[1].Spec), `"B"`)
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s := New(nil, WithLogger(zerolog.New(&logs)))
	req := httptest.NewRequest(http.MethodGet, "/api/dashboards/x", nil)
	rr := httptest.NewRecorder()

	s.writeJSON(rr, req, http.StatusOK, map[string]float64{"v": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var e errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, dashboard.CodeInternal, e.Code)
	assert.Contains(t, logs.String(), "encode response")
}
