package hardfault

// Each fault category decodes to one explanation line per set status
// bit, in the fixed order of its table.  Decoding only reads and never
// clears status bits, decoding the same snapshot twice yields
// identical output.
type statusBit struct {
	mask uint32
	text string
}

var memManageBits = [...]statusBit{
	{mlspErr, "Fault occurred during floating-point lazy state preservation."},
	{mstkErr, "Stacking has caused an access violation."},
	{munstkErr, "Unstacking has caused an access violation."},
	{daccViol, "Load or store at a location that does not permit the operation."},
	{iaccViol, "Instruction fetch from a location that does not permit execution."},
}

var busBits = [...]statusBit{
	{lspErr, "Fault occurred during floating-point lazy state preservation."},
	{stkErr, "Stacking has caused a Bus fault."},
	{unstkErr, "Unstacking has caused a Bus fault."},
	{impreciseErr, "Data bus error has occurred, but the return address in the stack is not related to the fault."},
	{preciseErr, "Data bus error has occurred, and the return address points to the instruction that caused the fault."},
	{ibusErr, "Instruction bus error."},
}

var usageBits = [...]statusBit{
	{divByZero, "The processor has executed an SDIV or UDIV instruction with a divisor of 0."},
	{unaligned, "The processor has made an unaligned memory access."},
	{noCP, "Attempted to access a coprocessor."},
	{invPC, "Illegal attempt to load of EXC_RETURN to the PC."},
	{invState, "Attempted to execute an instruction that makes illegal use of the EPSR."},
	{undefInstr, "The processor has attempted to execute an undefined instruction."},
}

var hardBits = [...]statusBit{
	{forced, "Forced Hard fault."},
	{vectTbl, "Bus fault on vector table read."},
}

//go:nosplit
func reportBits(s Sink, reg uint32, bits []statusBit) {
	for i := range bits {
		if reg&bits[i].mask != 0 {
			s.Text(" - ")
			s.Line(bits[i].text)
		}
	}
}

// reportMemManage explains the MemManage bits of cfsr.  MMARVALID is
// an either/or statement about the MMFAR contents, not a fault cause.
//
//go:nosplit
func reportMemManage(s Sink, cfsr uint32) {
	s.Line("MemManage fault status:")
	if cfsr&mmarValid != 0 {
		s.Line(" - MMAR holds a valid address.")
	} else {
		s.Line(" - MMAR holds an invalid address.")
	}
	reportBits(s, cfsr, memManageBits[:])
}

//go:nosplit
func reportBus(s Sink, cfsr uint32) {
	s.Line("Bus fault status:")
	if cfsr&bfarValid != 0 {
		s.Line(" - BFAR holds a valid address.")
	} else {
		s.Line(" - BFAR holds an invalid address.")
	}
	reportBits(s, cfsr, busBits[:])
}

//go:nosplit
func reportUsage(s Sink, cfsr uint32) {
	s.Line("Usage fault status:")
	reportBits(s, cfsr, usageBits[:])
}

//go:nosplit
func reportHard(s Sink, hfsr uint32) {
	s.Line("Hard fault status:")
	reportBits(s, hfsr, hardBits[:])
}

// reportContext dumps the stacked frame, the fault status registers
// and EXC_RETURN.  Order and labels are fixed.
//
//go:nosplit
func reportContext(s Sink, ctx *Context, snap *Snapshot) {
	s.Newline()
	s.Line("!!!Fault detected!!!")
	s.Newline()
	s.Line("Stack frame:")
	word(s, "R0:         ", ctx.Frame.R0)
	word(s, "R1:         ", ctx.Frame.R1)
	word(s, "R2:         ", ctx.Frame.R2)
	word(s, "R3:         ", ctx.Frame.R3)
	word(s, "R12:        ", ctx.Frame.R12)
	word(s, "LR:         ", ctx.Frame.LR)
	word(s, "PC:         ", ctx.Frame.PC)
	word(s, "PSR:        ", ctx.Frame.PSR)
	s.Newline()
	s.Line("Fault status:")
	word(s, "HFSR:       ", snap.HFSR)
	word(s, "CFSR:       ", snap.CFSR)
	word(s, "MMFAR:      ", snap.MMFAR)
	word(s, "BFAR:       ", snap.BFAR)
	word(s, "AFSR:       ", snap.AFSR)
	s.Newline()
	s.Line("Other:")
	word(s, "EXC_RETURN: ", ctx.ExcReturn)
	s.Newline()
}

//go:nosplit
func word(s Sink, label string, v uint32) {
	s.Text(label)
	s.Word(v)
	s.Newline()
}
