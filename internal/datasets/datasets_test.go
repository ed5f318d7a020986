package datasets

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/vizdash/internal/frame"
)

func TestIris(t *testing.T) {
	ds, err := Iris()
	if err != nil {
		t.Fatalf("Iris: %v", err)
	}
	if ds.Len() != 150 {
		t.Errorf("expected 150 rows, got %d", ds.Len())
	}
	species, err := ds.Distinct("species")
	if err != nil {
		t.Fatal(err)
	}
	if len(species) != 3 {
		t.Errorf("expected 3 species, got %v", species)
	}

	again, _ := Iris()
	if again != ds {
		t.Error("builtin datasets should be parsed once and shared")
	}
}

func TestGapminder(t *testing.T) {
	ds, err := Gapminder()
	if err != nil {
		t.Fatalf("Gapminder: %v", err)
	}
	years, err := ds.Distinct("year")
	if err != nil {
		t.Fatal(err)
	}
	if len(years) != 12 || years[0] != "1952" || years[11] != "2007" {
		t.Errorf("unexpected years: %v", years)
	}
	countries, _ := ds.Distinct("iso_alpha")
	if ds.Len() != len(countries)*len(years) {
		t.Errorf("expected one row per country and year, got %d rows for %d countries", ds.Len(), len(countries))
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, err := Builtin("kaggle"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
	if got := Names(); len(got) != 2 || got[0] != "gapminder" || got[1] != "iris" {
		t.Errorf("unexpected names: %v", got)
	}
}

func TestOpen_Builtin(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, "builtin:iris", IrisColumns...); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_, err := Open(ctx, "builtin:iris", frame.Column{Name: "continent", Kind: frame.Categorical})
	if !errors.Is(err, frame.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestOpen_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.csv")
	data := "species,sepal_length,extra\nsetosa,5.1,x\nvirginica,6.3,y\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, src := range []string{path, "csv:" + path} {
		ds, err := Open(context.Background(), src,
			frame.Column{Name: "species", Kind: frame.Categorical},
			frame.Column{Name: "sepal_length", Kind: frame.Numeric},
		)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if ds.Name() != "mini" || ds.Len() != 2 {
			t.Errorf("%s: unexpected dataset %s with %d rows", src, ds.Name(), ds.Len())
		}
		if ds.Float("sepal_length", 1) != 6.3 {
			t.Errorf("%s: expected 6.3, got %v", src, ds.Float("sepal_length", 1))
		}
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE samples (species TEXT, sepal_length REAL)`,
		`INSERT INTO samples VALUES ('setosa', 5.1), ('versicolor', 7.0), ('virginica', 6.3)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	ds, err := Open(context.Background(), "sqlite:"+path+"?table=samples")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", ds.Len())
	}
	c, _ := ds.Schema().Lookup("sepal_length")
	if c.Kind != frame.Numeric {
		t.Errorf("expected numeric sepal_length, got %s", c.Kind)
	}
	if ds.Text("species", 1) != "versicolor" {
		t.Errorf("unexpected species: %s", ds.Text("species", 1))
	}
}

func TestOpen_BadSource(t *testing.T) {
	ctx := context.Background()
	tests := []string{
		"ftp:somewhere",
		"sqlite:data.db",
		"sqlite:?table=t",
	}
	for _, src := range tests {
		if _, err := Open(ctx, src); !errors.Is(err, ErrBadSource) {
			t.Errorf("%s: expected ErrBadSource, got %v", src, err)
		}
	}
}
