// Package publish delivers the result of a run to whatever renders it:
// the log, or a socket.io server acting as a front end for intents.
package publish
