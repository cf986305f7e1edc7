// Package queue persists the pending change set between commands.
//
// A scan produces a run: the set of outstanding work items plus the hash of
// the state store snapshot the run was computed against. Summarization and
// review update items in place; apply consumes the approved items and clears
// the run. At most one run is active at a time and a new scan replaces it.
package queue
