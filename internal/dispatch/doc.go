// Package dispatch turns interaction events into recomputations.
//
// Each [Event] names what changed. A [Session] applies it to its control
// state, recomputes the dashboard and hands the complete [Update] to every
// [Renderer]. Nothing is recomputed implicitly: the mapping from an event to
// the outputs it refreshes is this package's Handle call, which front ends
// (terminal, HTTP, scripted replay) share.
//
// # Thread Safety
//
// A Session may be read from any goroutine. Handle processes one event at a
// time and returns [ErrBusy] instead of queueing.
package dispatch
