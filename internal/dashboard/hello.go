package dashboard

import (
	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/datasets"
)

// Hello is a single static scatter of the iris sample.
func Hello() Definition {
	return Definition{
		Name:        "hello",
		Title:       "Hello World",
		Description: "Iris sepal width against sepal length, one color per species.",
		Dataset:     "iris",
		Columns:     datasets.IrisColumns[:5],
		Outputs: []OutputDecl{
			{ID: "scatter", Title: "Iris Scatter", Kind: chart.Scatter, Build: func(r *Request) (chart.Spec, error) {
				spec, err := scatterBy(r.Data().All(), "sepal_width", "sepal_length", "species", r.Palette("species"))
				if err != nil {
					return chart.Spec{}, err
				}
				spec.Title = "Hello World: Iris Scatter"
				return spec, nil
			}},
		},
	}
}
