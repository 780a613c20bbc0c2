package hardfault

import "github.com/clktmr/hardfault/debug"

// Kind is a fault category with its own exception vector.
type Kind uint8

const (
	MemManage Kind = iota // memory protection violation
	Bus                   // bus error
	Usage                 // illegal instruction or state
	Hard                  // escalated form of any of the others

	numKinds
)

func (k Kind) String() string {
	switch k {
	case MemManage:
		return "MemManage fault"
	case Bus:
		return "Bus fault"
	case Usage:
		return "Usage fault"
	case Hard:
		return "Hard fault"
	}
	return "unknown fault"
}

// A KindSet selects fault categories.
type KindSet uint8

const AllKinds = KindSet(1<<numKinds - 1)

func Kinds(kinds ...Kind) (s KindSet) {
	for _, k := range kinds {
		s |= 1 << k
	}
	return
}

func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

// A Hook runs after the report and before containment, at most once
// per fault occurrence.  It must not rely on interrupts, DMA or any
// stack sensitive service.
type Hook func()

// Config wires a Handler.  Enabled categories and hooks are ordinary
// values consulted on dispatch, in place of the usual compile time
// vector symbol selection.
type Config struct {
	// Output receives the report.  Required.
	Output Sink

	// Status provides the fault status registers.  Required, scs.Space
	// on hardware.
	Status StatusRegs

	// Sys provides debugger detection, breakpoint and reset.
	// Required, scs.Space on hardware.
	Sys Sys

	// Actions selects the containment actions taken after the report.
	// Zero is a misconfiguration and resolves to Spin, see decide.
	Actions Action

	// Enabled selects the categories wired to their own vector entry.
	// A fault of a disabled category escalates to the Hard pipeline.
	Enabled KindSet

	// Optional per category hooks.
	OnMemManage Hook
	OnBus       Hook
	OnUsage     Hook
	OnHard      Hook
}

// Handler runs the fault pipeline: capture, report, hook, containment.
// Every entry is terminal for the current fault occurrence, no path
// returns to the interrupted code.
type Handler struct {
	out     Sink
	status  StatusRegs
	sys     Sys
	actions Action
	enabled KindSet
	hooks   [numKinds]Hook
}

// New validates cfg and returns a ready Handler.  Call Install to bind
// it to the exception vectors.
func New(cfg Config) *Handler {
	debug.Assert(cfg.Output != nil, "hardfault: nil Output")
	debug.Assert(cfg.Status != nil, "hardfault: nil Status")
	debug.Assert(cfg.Sys != nil, "hardfault: nil Sys")
	return &Handler{
		out:     cfg.Output,
		status:  cfg.Status,
		sys:     cfg.Sys,
		actions: cfg.Actions,
		enabled: cfg.Enabled,
		hooks:   [numKinds]Hook{cfg.OnMemManage, cfg.OnBus, cfg.OnUsage, cfg.OnHard},
	}
}

// Handle runs the full pipeline for a fault of category k.  The status
// registers are read before anything that could itself fault, then the
// context dump, the category decoders, the hook and finally the
// containment action run in fixed order.  Never returns.
//
//go:nosplit
func (h *Handler) Handle(k Kind, ctx Context) {
	if !h.enabled.Has(k) {
		k = Hard
	}
	snap := takeSnapshot(h.status)
	reportContext(h.out, &ctx, &snap)
	switch k {
	case MemManage:
		reportMemManage(h.out, snap.CFSR)
	case Bus:
		reportBus(h.out, snap.CFSR)
	case Usage:
		reportUsage(h.out, snap.CFSR)
	default:
		// A Hard fault can be the escalated form of any other
		// category, report every plausible cause.
		reportMemManage(h.out, snap.CFSR)
		reportBus(h.out, snap.CFSR)
		reportUsage(h.out, snap.CFSR)
		reportHard(h.out, snap.HFSR)
	}
	if hook := h.hooks[k]; hook != nil {
		hook()
	}
	h.contain()
}
