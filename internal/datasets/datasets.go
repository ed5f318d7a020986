// Package datasets resolves dataset sources: the embedded sample tables and
// external CSV files or SQLite tables.
package datasets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/vizdash/internal/frame"
)

//go:embed data/*.csv
var files embed.FS

// ErrUnknownDataset is returned for builtin names that are not embedded.
var ErrUnknownDataset = errors.New("datasets: unknown dataset")

// IrisColumns is the schema of the iris sample.
var IrisColumns = []frame.Column{
	{Name: "sepal_length", Kind: frame.Numeric},
	{Name: "sepal_width", Kind: frame.Numeric},
	{Name: "petal_length", Kind: frame.Numeric},
	{Name: "petal_width", Kind: frame.Numeric},
	{Name: "species", Kind: frame.Categorical},
	{Name: "species_id", Kind: frame.Numeric},
}

// GapminderColumns is the schema of the gapminder sample.
var GapminderColumns = []frame.Column{
	{Name: "country", Kind: frame.Categorical},
	{Name: "continent", Kind: frame.Categorical},
	{Name: "year", Kind: frame.Numeric},
	{Name: "lifeExp", Kind: frame.Numeric},
	{Name: "pop", Kind: frame.Numeric},
	{Name: "gdpPercap", Kind: frame.Numeric},
	{Name: "iso_alpha", Kind: frame.Categorical},
	{Name: "iso_num", Kind: frame.Numeric},
}

type builtin struct {
	file string
	cols []frame.Column
	load func() (*frame.Dataset, error)
}

var builtins = map[string]*builtin{
	"iris":      {file: "data/iris.csv", cols: IrisColumns},
	"gapminder": {file: "data/gapminder.csv", cols: GapminderColumns},
}

func init() {
	for name, b := range builtins {
		b.load = sync.OnceValues(func() (*frame.Dataset, error) {
			raw, err := files.ReadFile(b.file)
			if err != nil {
				return nil, err
			}
			return frame.ReadCSV(name, bytes.NewReader(raw), b.cols...)
		})
	}
}

// Builtin returns an embedded dataset. The table is parsed once and shared.
func Builtin(name string) (*frame.Dataset, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return b.load()
}

// Iris returns the 150-row iris sample.
func Iris() (*frame.Dataset, error) { return Builtin("iris") }

// Gapminder returns the gapminder sample: one row per country and year for
// 48 of the 142 countries, values rounded to two decimals. The full table
// has the same columns and loads through a csv: or sqlite: source.
func Gapminder() (*frame.Dataset, error) { return Builtin("gapminder") }

// Names lists the builtin datasets.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
