package hardfault

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type recordSink struct{ bytes.Buffer }

func (s *recordSink) Line(str string) { s.WriteString(str); s.WriteByte('\n') }
func (s *recordSink) Text(str string) { s.WriteString(str) }
func (s *recordSink) Word(v uint32)   { fmt.Fprintf(&s.Buffer, "0x%08X", v) }
func (s *recordSink) Newline()        { s.WriteByte('\n') }

type fakeStatus struct{ hfsr, cfsr, mmfar, bfar, afsr uint32 }

func (r fakeStatus) HFSR() uint32  { return r.hfsr }
func (r fakeStatus) CFSR() uint32  { return r.cfsr }
func (r fakeStatus) MMFAR() uint32 { return r.mmfar }
func (r fakeStatus) BFAR() uint32  { return r.bfar }
func (r fakeStatus) AFSR() uint32  { return r.afsr }

// Reset and Halt never return on hardware.  The fakes panic instead so
// tests regain control, runFault recovers.
type fakeSys struct {
	attached     bool
	attachChecks int
	calls        []string
}

var errStop = errors.New("terminal action")

func (s *fakeSys) DebuggerAttached() bool { s.attachChecks++; return s.attached }
func (s *fakeSys) Breakpoint()            { s.calls = append(s.calls, "breakpoint") }
func (s *fakeSys) Reset()                 { s.calls = append(s.calls, "reset"); panic(errStop) }
func (s *fakeSys) Halt()                  { s.calls = append(s.calls, "halt"); panic(errStop) }

func runFault(t *testing.T, h *Handler, k Kind, ctx Context) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil && r != errStop {
			panic(r)
		}
	}()
	h.Handle(k, ctx)
	t.Error("Handle returned")
}

var testCtx = Context{
	Frame:     Frame{R0: 1, R1: 2, R2: 3, R3: 4, R12: 0xc, LR: 0xdeadbeef, PC: 0x0800_0130, PSR: 0x2100_0000},
	ExcReturn: 0xffff_fffd,
}

func TestMemManageInstructionAccess(t *testing.T) {
	sink := &recordSink{}
	h := New(Config{
		Output:  sink,
		Status:  fakeStatus{cfsr: iaccViol},
		Sys:     &fakeSys{},
		Actions: Spin,
		Enabled: AllKinds,
	})
	runFault(t, h, MemManage, testCtx)

	got := sink.String()
	for _, want := range []string{
		" - MMAR holds an invalid address.\n",
		" - Instruction fetch from a location that does not permit execution.\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	for _, bit := range memManageBits[:len(memManageBits)-1] {
		if strings.Contains(got, bit.text) {
			t.Errorf("unexpected line %q", bit.text)
		}
	}
	for _, header := range []string{"Bus fault status:", "Usage fault status:", "Hard fault status:"} {
		if strings.Contains(got, header) {
			t.Errorf("unexpected section %q in MemManage report", header)
		}
	}
}

func TestBusPreciseError(t *testing.T) {
	sink := &recordSink{}
	h := New(Config{
		Output:  sink,
		Status:  fakeStatus{cfsr: bfarValid | preciseErr, bfar: 0x2000_0000},
		Sys:     &fakeSys{},
		Actions: Spin,
		Enabled: AllKinds,
	})
	runFault(t, h, Bus, testCtx)

	got := sink.String()
	if !strings.Contains(got, " - BFAR holds a valid address.\n") {
		t.Error("missing BFAR valid line")
	}
	if !strings.Contains(got, "return address points to the instruction that caused the fault") {
		t.Error("missing precise error line")
	}
	if strings.Contains(got, "not related to the fault") {
		t.Error("unexpected imprecise error line")
	}
}

func TestHardForced(t *testing.T) {
	sink := &recordSink{}
	h := New(Config{
		Output:  sink,
		Status:  fakeStatus{hfsr: forced},
		Sys:     &fakeSys{},
		Actions: Spin,
		Enabled: AllKinds,
	})
	runFault(t, h, Hard, testCtx)

	got := sink.String()
	if !strings.Contains(got, " - Forced Hard fault.\n") {
		t.Error("missing forced line")
	}
	if strings.Contains(got, "Bus fault on vector table read.") {
		t.Error("unexpected vector table line")
	}
}

// The Hard pipeline output must be the fixed order concatenation of
// the context dump and all four decoders.
func TestHardRunsAllDecoders(t *testing.T) {
	status := fakeStatus{
		hfsr:  forced,
		cfsr:  mmarValid | preciseErr | undefInstr,
		mmfar: 0xe000_ed34,
		bfar:  0x2000_0000,
	}

	var want recordSink
	snap := takeSnapshot(status)
	reportContext(&want, &testCtx, &snap)
	reportMemManage(&want, snap.CFSR)
	reportBus(&want, snap.CFSR)
	reportUsage(&want, snap.CFSR)
	reportHard(&want, snap.HFSR)

	sink := &recordSink{}
	h := New(Config{
		Output:  sink,
		Status:  status,
		Sys:     &fakeSys{},
		Actions: Spin,
		Enabled: AllKinds,
	})
	runFault(t, h, Hard, testCtx)

	if !bytes.Equal(sink.Bytes(), want.Bytes()) {
		t.Errorf("got:\n%s\nwant:\n%s", sink.String(), want.String())
	}
}

func TestContextDump(t *testing.T) {
	const want = `
!!!Fault detected!!!

Stack frame:
R0:         0x00000001
R1:         0x00000002
R2:         0x00000003
R3:         0x00000004
R12:        0x0000000C
LR:         0xDEADBEEF
PC:         0x08000130
PSR:        0x21000000

Fault status:
HFSR:       0x40000000
CFSR:       0x00008200
MMFAR:      0xE000ED34
BFAR:       0x20000000
AFSR:       0x00000000

Other:
EXC_RETURN: 0xFFFFFFFD
` + "\n"

	snap := Snapshot{
		HFSR:  0x4000_0000,
		CFSR:  0x0000_8200,
		MMFAR: 0xe000_ed34,
		BFAR:  0x2000_0000,
	}
	var sink recordSink
	reportContext(&sink, &testCtx, &snap)
	if got := sink.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestContainment(t *testing.T) {
	for _, tc := range []struct {
		name     string
		actions  Action
		attached bool
		want     []string
	}{
		{"spin", Spin, false, []string{"halt"}},
		{"reset", Reset, false, []string{"reset"}},
		{"trap attached", Trap, true, []string{"breakpoint", "halt"}},
		{"trap detached", Trap, false, []string{"halt"}},
		{"trap reset attached", Trap | Reset, true, []string{"breakpoint", "reset"}},
		{"trap reset detached", Trap | Reset, false, []string{"reset"}},
		{"all detached", Trap | Reset | Spin, false, []string{"reset"}},
		{"none configured", 0, false, []string{"halt"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sys := &fakeSys{attached: tc.attached}
			h := New(Config{
				Output:  &recordSink{},
				Status:  fakeStatus{},
				Sys:     sys,
				Actions: tc.actions,
				Enabled: AllKinds,
			})
			runFault(t, h, Hard, testCtx)
			if fmt.Sprint(sys.calls) != fmt.Sprint(tc.want) {
				t.Errorf("calls %v, want %v", sys.calls, tc.want)
			}
		})
	}
}

// Without Trap configured the containment step must not even read the
// debug status register.
func TestContainmentSkipsDebugRead(t *testing.T) {
	for _, actions := range []Action{Spin, Reset, 0} {
		sys := &fakeSys{attached: true}
		h := New(Config{
			Output:  &recordSink{},
			Status:  fakeStatus{},
			Sys:     sys,
			Actions: actions,
			Enabled: AllKinds,
		})
		runFault(t, h, Hard, testCtx)
		if sys.attachChecks != 0 {
			t.Errorf("actions %#x: %d debug status reads", actions, sys.attachChecks)
		}
	}
}

func TestHookOrder(t *testing.T) {
	sink := &recordSink{}
	sys := &fakeSys{}
	var called, reportLen, sysCalls int
	h := New(Config{
		Output:  sink,
		Status:  fakeStatus{cfsr: daccViol},
		Sys:     sys,
		Actions: Spin,
		Enabled: AllKinds,
		OnMemManage: func() {
			called++
			reportLen = sink.Len()
			sysCalls = len(sys.calls)
		},
	})
	runFault(t, h, MemManage, testCtx)

	if called != 1 {
		t.Fatalf("hook called %d times", called)
	}
	if reportLen != sink.Len() {
		t.Error("report not complete before hook")
	}
	if sysCalls != 0 {
		t.Error("containment ran before hook")
	}
	if len(sys.calls) == 0 {
		t.Error("containment did not run after hook")
	}
}

func TestHookPerKind(t *testing.T) {
	sink := &recordSink{}
	var got []string
	mark := func(name string) Hook {
		return func() { got = append(got, name) }
	}
	h := New(Config{
		Output:      sink,
		Status:      fakeStatus{},
		Sys:         &fakeSys{},
		Actions:     Spin,
		Enabled:     AllKinds,
		OnMemManage: mark("memmanage"),
		OnBus:       mark("bus"),
		OnUsage:     mark("usage"),
		OnHard:      mark("hard"),
	})
	runFault(t, h, Usage, testCtx)
	if fmt.Sprint(got) != "[usage]" {
		t.Errorf("hooks %v, want [usage]", got)
	}
}

// A fault of a category without its own vector enabled escalates to
// the Hard pipeline, including the Hard hook.
func TestDisabledKindEscalates(t *testing.T) {
	sink := &recordSink{}
	var got []string
	h := New(Config{
		Output:  sink,
		Status:  fakeStatus{cfsr: ibusErr},
		Sys:     &fakeSys{},
		Actions: Spin,
		Enabled: Kinds(Hard),
		OnBus:   func() { got = append(got, "bus") },
		OnHard:  func() { got = append(got, "hard") },
	})
	runFault(t, h, Bus, testCtx)

	for _, header := range []string{
		"MemManage fault status:", "Bus fault status:",
		"Usage fault status:", "Hard fault status:",
	} {
		if !strings.Contains(sink.String(), header) {
			t.Errorf("missing section %q", header)
		}
	}
	if fmt.Sprint(got) != "[hard]" {
		t.Errorf("hooks %v, want [hard]", got)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		MemManage: "MemManage fault",
		Bus:       "Bus fault",
		Usage:     "Usage fault",
		Hard:      "Hard fault",
		numKinds:  "unknown fault",
	} {
		if got := k.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
