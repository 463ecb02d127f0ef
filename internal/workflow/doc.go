// Package workflow is the public face of the engine: a Workflow is a graph
// of operation instances that can be run any number of times.
//
// Every run first validates the whole graph (cycles, run order and input
// resolvability) and invokes nothing if that fails. Runs share no state
// with one another: each gets a fresh store and sees a structural snapshot
// of the graph taken when it starts.
//
// Under HaltOnFailure, the default, the first failure stops new
// invocations while in-flight ones finish. Cancelling the context has the
// same effect, and the run still returns its partial Result with
// StatusCancelled so that outputs produced before the cancellation are not
// lost.
package workflow
