// Package derive turns a dataset view into the derived views charts are
// built from.
//
// Filters narrow a view: [Membership] keeps rows whose category is in a
// selected set under a declared [EmptyPolicy], [Equals] keeps rows matching
// one value. Derived views are computed independently from the filtered view:
// a passthrough (the view itself), [TopN] rankings, [GroupMean]
// aggregations, and the [HistogramBy] and [BoxBy] summaries.
//
// Everything here is a pure function of its inputs. Views are row index
// lists, so no function copies column data.
package derive
