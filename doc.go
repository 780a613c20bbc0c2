// Package hardfault reports and contains Cortex-M hardware faults.
//
// When the core takes a MemManage, Bus, Usage or Hard fault, the
// handler captures the stacked register frame, takes a fresh read of
// the SCB fault status registers, decodes them into a plain text
// report and finally runs a configured containment action: breakpoint,
// system reset or an infinite loop.  No path returns to the
// interrupted code.
//
// All code on the fault path is nosplit and avoids allocation, since
// neither the heap nor the faulted stack can be trusted anymore.  For
// the same reason the report output must not rely on interrupts or
// DMA, see [Sink].
//
// Typical wiring during early init:
//
//	// A nil port discards output, reports are then lost but the
//	// containment actions still run.
//	port := itm.Probe()
//	hardfault.Install(hardfault.New(hardfault.Config{
//		Output:  hardfault.NewWriter(port),
//		Status:  scs.Space{},
//		Sys:     scs.Space{},
//		Actions: hardfault.Trap | hardfault.Reset,
//		Enabled: hardfault.AllKinds,
//	}))
//	scs.EnableFaults()
//
// The hardware access is confined to the scs and drivers/itm packages.
// Everything here depends only on the narrow [StatusRegs], [Sys] and
// [Sink] interfaces and can be exercised with synthetic values.
package hardfault
