package hardfault

import "io"

// A Sink receives the diagnostic report.  Implementations must not
// depend on interrupts or DMA, both might be broken or masked while a
// fault is handled.  There is no error channel: each call either
// completes or the output is silently lost.
type Sink interface {
	Line(s string) // emit s followed by a newline
	Text(s string)
	Word(v uint32) // emit v as 0x prefixed, zero padded 8 digit hex
	Newline()
}

// WriterSink adapts an io.Writer, e.g. an itm.Port, to the Sink
// interface.  All output is staged through a fixed scratch buffer to
// keep the fault path free of allocations.
type WriterSink struct {
	w   io.Writer
	buf [64]byte
}

func NewWriter(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

var newline = []byte{'\n'}

//go:nosplit
func (s *WriterSink) Line(str string) {
	s.Text(str)
	s.Newline()
}

// Text copies str through the scratch buffer in chunks.  A direct
// []byte(str) conversion would heap allocate, which must not happen
// inside a fault handler.
//
//go:nosplit
func (s *WriterSink) Text(str string) {
	for len(str) > 0 {
		n := copy(s.buf[:], str)
		s.w.Write(s.buf[:n])
		str = str[n:]
	}
}

//go:nosplit
func (s *WriterSink) Word(v uint32) {
	s.buf[0] = '0'
	s.buf[1] = 'x'
	for i := 0; i < 8; i++ {
		char := byte(v>>(28-4*i)) & 0xf
		if char > 9 {
			char += 'A' - 10
		} else {
			char += '0'
		}
		s.buf[2+i] = char
	}
	s.w.Write(s.buf[:10])
}

//go:nosplit
func (s *WriterSink) Newline() {
	s.w.Write(newline)
}
