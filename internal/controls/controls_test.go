package controls

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

var testDecls = []Declaration{
	{ID: "x-col", Kind: Dropdown, Options: Options("a", "b", "c"), Default: Scalar("a")},
	{ID: "species", Kind: MultiDropdown, Options: Options("setosa", "versicolor", "virginica"), Default: List("setosa", "versicolor", "virginica")},
	{ID: "year", Kind: Slider, Options: Options("1952", "1957", "2007"), Default: Number(2007)},
}

func TestDefaultsValidate(t *testing.T) {
	s := Defaults(testDecls)
	if err := Validate(s, testDecls); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if got := s.IDs(); !cmp.Equal(got, []string{"species", "x-col", "year"}) {
		t.Errorf("unexpected ids: %v", got)
	}
}

func TestValidate_Errors(t *testing.T) {
	base := Defaults(testDecls)
	tests := []struct {
		name  string
		state State
		want  error
	}{
		{"missing key", base.Without("year"), ErrMissingControl},
		{"unknown key", base.With("color", Scalar("red")), ErrUnknownControl},
		{"scalar for multi", base.With("species", Scalar("setosa")), ErrInvalidValue},
		{"list for dropdown", base.With("x-col", List("a")), ErrInvalidValue},
		{"null for non-clearable", base.With("x-col", Null()), ErrInvalidValue},
	}
	for _, tt := range tests {
		err := Validate(tt.state, testDecls)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		var se *StateError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected StateError, got %T", tt.name, err)
		}
	}

	// shape only: an option outside the list still validates
	if err := Validate(base.With("x-col", Scalar("zzz")), testDecls); err != nil {
		t.Errorf("Validate should not check membership: %v", err)
	}
}

func TestStateImmutable(t *testing.T) {
	s := Defaults(testDecls)
	s2 := s.With("x-col", Scalar("b"))
	if v, _ := s.Get("x-col"); v.String() != "a" {
		t.Errorf("With mutated the receiver: %s", v.String())
	}
	if v, _ := s2.Get("x-col"); v.String() != "b" {
		t.Errorf("expected b, got %s", v.String())
	}
	if s.Equal(s2) {
		t.Error("states should differ")
	}
	if !s.Equal(Defaults(testDecls)) {
		t.Error("defaults should be equal")
	}
}

func TestNormalize(t *testing.T) {
	species, _ := Find(testDecls, "species")
	got, err := species.Normalize(List("virginica", "setosa", "virginica"))
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got.Items(), []string{"setosa", "virginica"}) {
		t.Errorf("expected option order without duplicates, got %v", got.Items())
	}
	if _, err := species.Normalize(List("rose")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	year, _ := Find(testDecls, "year")
	snapped, err := year.Normalize(Number(1960))
	if err != nil {
		t.Fatal(err)
	}
	if snapped.String() != "1957" {
		t.Errorf("expected snap to 1957, got %s", snapped.String())
	}
	if _, err := year.Normalize(Scalar("soon")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	xcol, _ := Find(testDecls, "x-col")
	if _, err := xcol.Normalize(Scalar("zzz")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestStep(t *testing.T) {
	xcol, _ := Find(testDecls, "x-col")
	if got := xcol.Step(Scalar("c"), 1).String(); got != "a" {
		t.Errorf("dropdown should wrap forward, got %s", got)
	}
	if got := xcol.Step(Scalar("a"), -1).String(); got != "c" {
		t.Errorf("dropdown should wrap backward, got %s", got)
	}

	year, _ := Find(testDecls, "year")
	if got := year.Step(Scalar("2007"), 1).String(); got != "2007" {
		t.Errorf("slider should stop at the end, got %s", got)
	}
	if got := year.Step(Scalar("2007"), -1).String(); got != "1957" {
		t.Errorf("expected 1957, got %s", got)
	}
}

func TestToggle(t *testing.T) {
	species, _ := Find(testDecls, "species")
	v := species.Toggle(species.Default, "versicolor")
	if !cmp.Equal(v.Items(), []string{"setosa", "virginica"}) {
		t.Errorf("unexpected items after removal: %v", v.Items())
	}
	v = species.Toggle(v, "versicolor")
	if !cmp.Equal(v.Items(), []string{"setosa", "versicolor", "virginica"}) {
		t.Errorf("unexpected items after re-adding: %v", v.Items())
	}
}

func TestParse(t *testing.T) {
	species, _ := Find(testDecls, "species")
	if got := species.Parse("setosa, virginica"); !got.Equal(List("setosa", "virginica")) {
		t.Errorf("unexpected list: %s", got.Format())
	}
	if got := species.Parse(""); !got.IsList() || len(got.Items()) != 0 {
		t.Errorf("empty string should give the empty list, got %s", got.Format())
	}
	clearable := Declaration{ID: "c", Kind: Dropdown, Clearable: true}
	if !clearable.Parse("").IsNull() {
		t.Error("empty string should clear a clearable dropdown")
	}
}

func TestValueJSON(t *testing.T) {
	s := NewState(map[string]Value{
		"year":    Number(2007),
		"species": List(),
		"x":       Scalar("sepal_length"),
		"sel":     Null(),
	})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"sel":null,"species":[],"x":"sepal_length","year":2007}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(s) {
		t.Errorf("round trip changed state: %s vs %s", back, s)
	}
}

func TestValueYAML(t *testing.T) {
	src := "year: 1952\ncontinents: [Asia, Europe]\nselection: null\n"
	var s State
	if err := yaml.Unmarshal([]byte(src), &s); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("year"); v.String() != "1952" {
		t.Errorf("unexpected year: %s", v.Format())
	}
	if v, _ := s.Get("continents"); !v.Equal(List("Asia", "Europe")) {
		t.Errorf("unexpected continents: %s", v.Format())
	}
	if v, _ := s.Get("selection"); !v.IsNull() {
		t.Errorf("expected null, got %s", v.Format())
	}
}

func TestStateYAML_NullMultiSelect(t *testing.T) {
	src := "x-col: b\nspecies: null\nyear: 1957\n"
	var s State
	if err := yaml.Unmarshal([]byte(src), &s); err != nil {
		t.Fatal(err)
	}
	v, ok := s.Get("species")
	if !ok || !v.IsNull() {
		t.Fatalf("expected species to be null, got %s", v.Format())
	}
	if err := Validate(s, testDecls); err != nil {
		t.Errorf("null multi select should validate: %v", err)
	}

	if err := yaml.Unmarshal([]byte("species: {a: b}\n"), &s); err == nil {
		t.Error("expected an error for a mapping value")
	}
}
