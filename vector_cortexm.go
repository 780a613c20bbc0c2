//go:build cortexm

package hardfault

import _ "unsafe" // for linkname

// The handler consulted by the exception vectors.
var active *Handler

// Install binds h to the fault exception vectors.  Call once during
// early init, before the dedicated faults are enabled in SHCSR.
func Install(h *Handler) { active = h }

// The vector stubs below are the only instruction set literal part of
// the package.  The startup code must reach them before anything else
// touches a register or allocates on a stack, with the raw stack
// pointers and the exception return value in the argument registers:
//
//	MRS  R0, MSP
//	MRS  R1, PSP
//	MOV  R2, LR
//	B    <fault vector symbol>
//
// Which of MSP and PSP holds the stacked frame is decided by capture
// from bit 2 of EXC_RETURN.  If that decision is wrong there is no
// fallback, everything downstream is garbage.  Everything above vector
// entry treats the frame as an opaque word array.

//go:linkname memManageVector MemManage_Handler
//go:nowritebarrierrec
//go:nosplit
func memManageVector(msp, psp uintptr, excReturn uint32) {
	enter(MemManage, msp, psp, excReturn)
}

//go:linkname busFaultVector BusFault_Handler
//go:nowritebarrierrec
//go:nosplit
func busFaultVector(msp, psp uintptr, excReturn uint32) {
	enter(Bus, msp, psp, excReturn)
}

//go:linkname usageFaultVector UsageFault_Handler
//go:nowritebarrierrec
//go:nosplit
func usageFaultVector(msp, psp uintptr, excReturn uint32) {
	enter(Usage, msp, psp, excReturn)
}

//go:linkname hardFaultVector HardFault_Handler
//go:nowritebarrierrec
//go:nosplit
func hardFaultVector(msp, psp uintptr, excReturn uint32) {
	enter(Hard, msp, psp, excReturn)
}

//go:nosplit
func enter(k Kind, msp, psp uintptr, excReturn uint32) {
	if active == nil {
		for {
			// No handler installed, nothing safe left to do.
		}
	}
	active.Handle(k, capture(msp, psp, excReturn))
}
