// Package runopts resolves a test invocation vector into run options.
//
// The option set is closed: -D, -V, -T, -t, -I and -A. Anything else,
// including unknown options, is passed through to the script in order.
package runopts
