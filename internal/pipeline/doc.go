// Package pipeline sequences the five dubbing stages over a single State value.
//
// State is passed by value into every stage and a new value comes back, so a
// stage can never alias or partially mutate what an earlier stage produced.
// Step captures the shared check-delegate-write protocol; the Runner owns one
// state per run, enforces the fixed stage order, and turns any write-once
// violation into a failure on the unchanged state.
//
// Once a state carries an error every later stage is skipped and the state is
// returned unchanged. Run always returns the final state after all five stages
// were attempted; its error return is reserved for caller mistakes detected
// before the first stage starts.
package pipeline
