package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/dispatch"
	"github.com/san-kum/vizdash/internal/render"
)

const (
	manifestFile = "manifest.json"
	updateFile   = "update.json"
)

// Store writes recomputation results under a base directory, one
// directory per export.
type Store struct {
	baseDir string
	formats []render.Format
}

// New returns a store writing images in the given formats (SVG when none
// are given).
func New(baseDir string, formats ...render.Format) *Store {
	if len(formats) == 0 {
		formats = []render.Format{render.SVG}
	}
	return &Store{baseDir: baseDir, formats: formats}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// File is one artifact of an export.
type File struct {
	Output string `json:"output"`
	Path   string `json:"path"`
	Kind   string `json:"kind"`
}

type Manifest struct {
	ID        string            `json:"id"`
	Dashboard string            `json:"dashboard"`
	Seq       uint64            `json:"seq"`
	Trigger   string            `json:"trigger"`
	Timestamp time.Time         `json:"timestamp"`
	State     controls.State    `json:"state"`
	Selection string            `json:"selection,omitempty"`
	Files     []File            `json:"files"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// Save writes update.json, a CSV and images per successful output, and the
// manifest into <base>/<dashboard>_<uuid>/. Failed outputs are listed in the
// manifest with their code and get no files.
func (s *Store) Save(u dispatch.Update) (*Manifest, error) {
	id := fmt.Sprintf("%s_%s", u.Dashboard, uuid.NewString())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	m := &Manifest{
		ID:        id,
		Dashboard: u.Dashboard,
		Seq:       u.Seq,
		Trigger:   u.Trigger,
		Timestamp: time.Now().UTC(),
		State:     u.State,
		Selection: u.Selection,
	}

	if err := writeJSON(filepath.Join(dir, updateFile), u); err != nil {
		return nil, err
	}
	m.Files = append(m.Files, File{Path: updateFile, Kind: "update"})

	for _, o := range u.Outputs {
		if !o.OK() {
			if m.Failed == nil {
				m.Failed = make(map[string]string)
			}
			m.Failed[o.ID] = string(o.Code)
			continue
		}

		name := o.ID + ".csv"
		if err := writeCSV(filepath.Join(dir, name), o.Spec.Table()); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, File{Output: o.ID, Path: name, Kind: "csv"})

		for _, f := range s.formats {
			name := o.ID + "." + string(f)
			err := writeImage(filepath.Join(dir, name), f, o)
			if errors.Is(err, render.ErrEmptyChart) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("export %s: %w", name, err)
			}
			m.Files = append(m.Files, File{Output: o.ID, Path: name, Kind: string(f)})
		}
	}

	if err := writeJSON(filepath.Join(dir, manifestFile), m); err != nil {
		return nil, err
	}
	return m, nil
}

// Render implements dispatch.Renderer, exporting every update.
func (s *Store) Render(u dispatch.Update) error {
	_, err := s.Save(u)
	return err
}

// List returns the manifests under the base directory, oldest first.
func (s *Store) List() ([]Manifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Manifest{}, nil
		}
		return nil, err
	}

	runs := make([]Manifest, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *m)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(id string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, manifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadUpdate reads the update of an export back. Output errors come back
// as codes and messages only.
func (s *Store) LoadUpdate(id string) (*dispatch.Update, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, updateFile))
	if err != nil {
		return nil, err
	}
	var u dispatch.Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Dir returns the directory of an export.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeImage(path string, format render.Format, o dashboard.Output) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.NewImage(format).Render(f, *o.Spec); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
