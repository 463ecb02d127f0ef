/*
Package portref parses references to operation ports written as
`label.port`, the form used on the command line and in workflow files.

An assignment adds a raw value: `label.port=value`. The value is kept as
text; converting it to the port's declared type is left to the caller.
*/
package portref
