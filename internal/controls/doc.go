// Package controls declares dashboard controls and holds their values.
//
// A [Declaration] names a control, its widget [Kind], the options it offers
// and its default. A [State] maps control ids to [Value]s and never changes
// once built; every interaction produces a new State.
//
// # Validation
//
// [Validate] checks that a state covers exactly the declared controls and
// that each value has the right shape (a list for multi selects, a scalar
// otherwise, null only where clearable). A missing key is reported as
// [ErrMissingControl]. [Declaration.Normalize] additionally checks option
// membership and snaps slider values to marks; interactive front ends apply
// it to every change.
package controls
