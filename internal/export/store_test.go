package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/dispatch"
	"github.com/san-kum/vizdash/internal/render"
)

func irisUpdate(t *testing.T) dispatch.Update {
	t.Helper()
	def, err := dashboard.NewRegistry().Get("iris")
	if err != nil {
		t.Fatal(err)
	}
	ds, err := datasets.Iris()
	if err != nil {
		t.Fatal(err)
	}
	c, err := dashboard.New(def, ds)
	if err != nil {
		t.Fatal(err)
	}
	s, err := dispatch.NewSession(c)
	if err != nil {
		t.Fatal(err)
	}
	u, err := s.Start()
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestStore_Save(t *testing.T) {
	base := t.TempDir()
	store := New(base, render.SVG)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	u := irisUpdate(t)
	m, err := store.Save(u)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(m.ID, "iris_") {
		t.Errorf("unexpected export id %s", m.ID)
	}
	if len(m.Failed) != 0 {
		t.Errorf("expected no failed outputs, got %v", m.Failed)
	}

	kinds := map[string]int{}
	for _, f := range m.Files {
		kinds[f.Kind]++
		if _, err := os.Stat(filepath.Join(store.Dir(m.ID), f.Path)); err != nil {
			t.Errorf("listed file %s missing: %v", f.Path, err)
		}
	}
	if kinds["csv"] != len(u.Outputs) || kinds["svg"] != len(u.Outputs) || kinds["update"] != 1 {
		t.Errorf("unexpected file kinds %v", kinds)
	}

	f, err := os.Open(filepath.Join(store.Dir(m.ID), "scatter.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 151 {
		t.Errorf("expected header plus 150 points, got %d rows", len(rows))
	}
}

func TestStore_ListAndLoad(t *testing.T) {
	store := New(t.TempDir())
	u := irisUpdate(t)

	m, err := store.Save(u)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != m.ID {
		t.Fatalf("unexpected runs %+v", runs)
	}

	back, err := store.LoadUpdate(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if back.Dashboard != "iris" || len(back.Outputs) != len(u.Outputs) {
		t.Errorf("update did not round trip: %+v", back)
	}
	if !back.State.Equal(u.State) {
		t.Errorf("state did not round trip: %s vs %s", back.State, u.State)
	}
}

func TestStore_ListMissingDir(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStore_FailedOutputs(t *testing.T) {
	u := irisUpdate(t)
	u.Outputs[1] = dashboard.Output{ID: "hist", Code: dashboard.CodeMissingColumn, Message: "boom", Err: dashboard.ErrUnknownOutput}

	m, err := New(t.TempDir()).Save(u)
	if err != nil {
		t.Fatal(err)
	}
	if m.Failed["hist"] != string(dashboard.CodeMissingColumn) {
		t.Errorf("expected hist to be listed as failed, got %v", m.Failed)
	}
	for _, f := range m.Files {
		if f.Output == "hist" {
			t.Errorf("failed output should not produce files, got %s", f.Path)
		}
	}
}
