//go:build debug

package debug

// Guard assertions that could panic on their own with `if
// debug.Enabled {...}`, otherwise they can't be removed in release
// builds.
const Enabled = true

func Assert(b bool, message string) {
	if !b {
		panic(message)
	}
}
