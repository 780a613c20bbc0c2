// Package scs provides the System Control Space registers involved in
// fault analysis: the SCB fault status block, the debug halting
// control register and the reset request register.
//
// Only the single reset request write mutates hardware state, all
// other access is read-only.
package scs

import (
	"embedded/mmio"
	"runtime"
	"unsafe"
)

var (
	scb = (*scbRegs)(unsafe.Pointer(scbBase))
	dcb = (*dcbRegs)(unsafe.Pointer(dcbBase))
)

const (
	scbBase uintptr = 0xe000_ed00
	dcbBase uintptr = 0xe000_edf0
)

type scbRegs struct {
	cpuid mmio.U32
	icsr  mmio.U32
	vtor  mmio.U32
	aircr mmio.U32
	scr   mmio.U32
	ccr   mmio.U32
	shpr1 mmio.U32
	shpr2 mmio.U32
	shpr3 mmio.U32
	shcsr mmio.U32
	cfsr  mmio.U32
	hfsr  mmio.U32
	dfsr  mmio.U32
	mmfar mmio.U32
	bfar  mmio.U32
	afsr  mmio.U32
}

type dcbRegs struct {
	dhcsr mmio.U32
	dcrsr mmio.U32
	dcrdr mmio.U32
	demcr mmio.U32
}

// AIRCR write access requires the vector key in the upper half word.
const (
	vectKey     = 0x05fa << 16
	sysResetReq = 1 << 2
)

// DHCSR read access
const debugEn = 1 << 0 // C_DEBUGEN, set by the debug probe

// SHCSR write access
const (
	memFaultEna = 1 << 16
	busFaultEna = 1 << 17
	usgFaultEna = 1 << 18
)

// EnableFaults enables the dedicated MemManage, Bus and Usage fault
// exceptions.  Without them every fault escalates to Hard fault.
func EnableFaults() {
	scb.shcsr.SetBits(memFaultEna | busFaultEna | usgFaultEna)
}

// Space is a capability over the fault related System Control Space
// registers.  It satisfies both hardfault.StatusRegs and
// hardfault.Sys.
type Space struct{}

//go:nosplit
func (Space) HFSR() uint32 { return scb.hfsr.Load() }

//go:nosplit
func (Space) CFSR() uint32 { return scb.cfsr.Load() }

//go:nosplit
func (Space) MMFAR() uint32 { return scb.mmfar.Load() }

//go:nosplit
func (Space) BFAR() uint32 { return scb.bfar.Load() }

//go:nosplit
func (Space) AFSR() uint32 { return scb.afsr.Load() }

// DebuggerAttached reports whether a debug probe has enabled halting
// debug.
//
//go:nosplit
func (Space) DebuggerAttached() bool {
	return dcb.dhcsr.LoadBits(debugEn) != 0
}

// Breakpoint executes a breakpoint instruction.  Without a debugger
// attached this escalates the fault, check DebuggerAttached first.
//
//go:nosplit
func (Space) Breakpoint() { runtime.Breakpoint() }

// Reset writes the unlock and request pattern to AIRCR and waits for
// the reset to take effect.
//
//go:nosplit
func (Space) Reset() {
	scb.aircr.Store(resetRequest())
	for {
		// wait
	}
}

// Halt stops execution in an infinite loop.
//
//go:nosplit
func (Space) Halt() {
	for {
	}
}

func resetRequest() uint32 { return vectKey | sysResetReq }
