// Package frame provides the immutable, column-typed tables that every
// dashboard reads from.
//
//   - [Dataset]: loaded once, never mutated afterwards
//   - [Schema]: ordered column names with their [Kind]
//   - [View]: an ordered subset of a dataset's rows (filters and rankings
//     produce views, never copies of the data)
//   - [Builder]: row-by-row construction with per-kind parsing
//
// # Example
//
//	ds, err := frame.ReadCSV("iris", f,
//	    frame.Column{Name: "sepal_length", Kind: frame.Numeric},
//	    frame.Column{Name: "species", Kind: frame.Categorical},
//	)
//	setosa := ds.All().Select(func(row int) bool {
//	    return ds.Text("species", row) == "setosa"
//	})
//
// # Thread Safety
//
// A Dataset is safe for concurrent readers once built. Views hold only row
// indices and share the parent's storage.
package frame
