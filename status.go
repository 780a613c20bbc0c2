package hardfault

// StatusRegs gives read access to the fault status registers in the
// System Control Block.  Reads are non-destructive, so a Snapshot can
// be taken per handler without clearing latched causes.  Production
// code passes scs.Space, tests pass synthetic values.
type StatusRegs interface {
	HFSR() uint32
	CFSR() uint32
	MMFAR() uint32
	BFAR() uint32
	AFSR() uint32
}

// Snapshot is one fresh read of all fault status registers.  It is
// taken at report time, before any operation that could itself fault.
// The address registers are only meaningful if the corresponding valid
// bit in CFSR is set.
type Snapshot struct {
	HFSR  uint32
	CFSR  uint32
	MMFAR uint32
	BFAR  uint32
	AFSR  uint32
}

//go:nosplit
func takeSnapshot(r StatusRegs) Snapshot {
	return Snapshot{
		HFSR:  r.HFSR(),
		CFSR:  r.CFSR(),
		MMFAR: r.MMFAR(),
		BFAR:  r.BFAR(),
		AFSR:  r.AFSR(),
	}
}

// CFSR bits.  MemManage status occupies bits 0-7, Bus fault status
// bits 8-15, Usage fault status bits 16-25.
const (
	// MemManage fault status
	mmarValid = 1 << 7
	mlspErr   = 1 << 5 // Cortex-M4F only
	mstkErr   = 1 << 4
	munstkErr = 1 << 3
	daccViol  = 1 << 1
	iaccViol  = 1 << 0

	// Bus fault status
	bfarValid    = 1 << 15
	lspErr       = 1 << 13 // Cortex-M4F only
	stkErr       = 1 << 12
	unstkErr     = 1 << 11
	impreciseErr = 1 << 10
	preciseErr   = 1 << 9
	ibusErr      = 1 << 8

	// Usage fault status
	divByZero  = 1 << 25 // detection must be enabled in CCR
	unaligned  = 1 << 24 // detection must be enabled in CCR
	noCP       = 1 << 19
	invPC      = 1 << 18
	invState   = 1 << 17
	undefInstr = 1 << 16
)

// HFSR bits.
const (
	forced  = 1 << 30
	vectTbl = 1 << 1
)
