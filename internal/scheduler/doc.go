// Package scheduler decides which operations of a run may start next.
//
// # How It Works
//
// The scheduler is seeded with the run's topological order. Each operation
// carries a counter of unfinished predecessors; when the counter reaches
// zero the operation joins a ready queue ordered by its topological
// position. Next always hands out the earliest ready operation, so a run
// with a single worker executes exactly the precomputed order, and a run
// with more workers still starts operations in a reproducible sequence.
//
// When an operation fails, Skip removes everything downstream of it.
// When a run halts or is cancelled, Drain removes everything not yet
// started.
//
// # Thread-Safety
//
// A Scheduler is owned by a single dispatcher goroutine and is not safe for
// concurrent use.
package scheduler
