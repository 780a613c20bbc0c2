package hardfault

import "unsafe"

// Frame is the eight word register frame stacked by hardware on
// exception entry.
type Frame struct {
	R0, R1, R2, R3 uint32
	R12            uint32
	LR             uint32
	PC             uint32
	PSR            uint32
}

// EXC_RETURN bits, see Armv7-M B1.5.8.
const (
	excSPSel = 1 << 2 // frame was stacked on the process stack
	excMode  = 1 << 3 // thread mode was interrupted
	excFType = 1 << 4 // clear if an extended FP frame was stacked
)

// Context is the immutable snapshot of the interrupted execution
// context, taken once per fault occurrence.
type Context struct {
	Frame     Frame
	ExcReturn uint32
}

// ProcessStack reports whether the fault interrupted code running on
// the process stack.
func (c *Context) ProcessStack() bool { return c.ExcReturn&excSPSel != 0 }

// ThreadMode reports whether the fault interrupted thread mode.
func (c *Context) ThreadMode() bool { return c.ExcReturn&excMode != 0 }

// ExtendedFrame reports whether the stacked frame includes the FP
// register state.
func (c *Context) ExtendedFrame() bool { return c.ExcReturn&excFType == 0 }

// activeStack selects the stack that was in use when the fault was
// taken.  A wrong selection cannot be detected from inside the fault,
// all subsequent register values would be silent garbage.
func activeStack(msp, psp uintptr, excReturn uint32) uintptr {
	if excReturn&excSPSel != 0 {
		return psp
	}
	return msp
}

// capture copies the stacked frame.  Must run before anything else
// touches the interrupted stack.
//
//go:nosplit
func capture(msp, psp uintptr, excReturn uint32) Context {
	frame := (*Frame)(unsafe.Pointer(activeStack(msp, psp, excReturn)))
	return Context{Frame: *frame, ExcReturn: excReturn}
}
