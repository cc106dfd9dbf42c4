//go:build debug

package types

// Debug is set when built with -tags debug. Invariant violations
// such as a due event with no handler panic instead of being logged.
const Debug = true
