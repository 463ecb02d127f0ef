// Package builder turns an operation into a task.Task by resolving each
// declared input against, in order of precedence: the operation's filled
// value, the output produced this run by the link feeding the input, and the
// input's declared default.
//
// Building happens immediately before invocation so that outputs written by
// upstream operations moments earlier are visible, and the operation's
// filled values and parameters are snapshotted together at that instant.
package builder
