// Package dashboard binds dashboard definitions to data and recomputes their
// outputs.
//
// A [Definition] is static: controls, filters, outputs in display order and
// an optional click selection. [New] binds it to a loaded dataset and
// returns a [Context], the immutable configuration every recomputation
// reads. [Context.Recompute] is a pure function of (state, selection): it
// filters the dataset once, builds every output from that view, and returns
// the specs in declared order.
//
// # Errors
//
// A state that does not match the declared controls is a configuration
// error and fails the whole call. Data errors (a missing column, an empty
// selection under an error policy) fail only the output that hit them; the
// [Output] carries a [Code] so front ends can show an error panel in its
// place.
//
// # Builtin dashboards
//
//   - hello: one static iris scatter
//   - iris: scatter, histogram, box and scatter matrix over selected species
//   - gapminder: choropleth, top ten and a time series driven by map clicks
package dashboard
