package hardfault

// Containment actions, selected at configuration time.  Combinable,
// executed in fixed priority: trap first and only with a debugger
// attached, else reset, else spin.
type Action uint8

const (
	Trap  Action = 1 << iota // breakpoint, gated on an attached debugger
	Reset                    // request a system reset
	Spin                     // unconditional infinite loop
)

// Sys gives the containment step access to the platform's debug and
// reset machinery.  Production code passes scs.Space.
type Sys interface {
	// DebuggerAttached reports whether debug tooling is connected.  A
	// breakpoint without a debugger attached escalates right back into
	// the fault pipeline and must not be attempted.
	DebuggerAttached() bool

	// Breakpoint executes a breakpoint instruction.  Returns only if
	// an attached debugger resumes execution.
	Breakpoint()

	// Reset requests a system reset.  Does not return.
	Reset()

	// Halt spins forever without touching any register.  Does not
	// return.
	Halt()
}

// decide resolves the configured actions to the one taken.  No
// configured action is an integrator error and resolves to Spin,
// returning to the interrupted code would be undefined behavior.
func decide(cfg Action, debugger bool) Action {
	if cfg&Trap != 0 && debugger {
		return Trap
	}
	if cfg&Reset != 0 {
		return Reset
	}
	return Spin
}

//go:nosplit
func (h *Handler) contain() {
	// The debug status read is gated on the Trap flag so that a spin
	// or reset only configuration touches no debug register.
	debugger := h.actions&Trap != 0 && h.sys.DebuggerAttached()
	if decide(h.actions, debugger) == Trap {
		h.sys.Breakpoint()
		// Only reached when an attached debugger resumed execution.
		// Continue with the remaining actions instead of returning
		// into undefined state.
	}
	if h.actions&Reset != 0 {
		h.sys.Reset()
	}
	h.sys.Halt()
}
