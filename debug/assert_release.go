//go:build !debug

// Package debug provides configuration assertions that can be enabled
// with the debug build tag or will otherwise compile to no-ops.
//
// Fault path code can't report errors to anyone, so misconfiguration
// is caught here during bring-up instead.
package debug

// Guard assertions that could panic on their own with `if
// debug.Enabled {...}`, otherwise they can't be removed in release
// builds.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}
