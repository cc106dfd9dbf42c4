//go:build !debug

package types

// Debug is set when built with -tags debug.
const Debug = false
