package focus

import (
	"testing"
	"time"
)

// time1ms is the pacing delay used by test sessions; long enough to be a
// real sleep, short enough to keep the suite fast.
const time1ms = time.Millisecond

// readStep scripts one Read outcome for fakeTransport: either data is
// delivered or err is returned.
type readStep struct {
	data []byte
	err  error
}

// fakeTransport is a scripted Transport recording the order of protocol
// calls, so tests can assert both data flow and control-line sequencing.
type fakeTransport struct {
	// calls records every method invocation in order:
	// "assertReady", "assertReceive", "write", "read", "bytesToRead", "close".
	calls []string

	// writes records each Write payload.
	writes [][]byte

	// reads scripts successive Read outcomes. Once exhausted, Read returns
	// ErrReadTimeout, matching a device that has gone silent.
	reads   []readStep
	readIdx int

	// avail scripts successive BytesToRead results. Once exhausted,
	// BytesToRead reports the size of the next scripted read, or 1 if a
	// read error is scripted, so collection proceeds into the read loop.
	avail    []int
	availIdx int

	writeErr         error
	availErr         error
	assertReadyErr   error
	assertReceiveErr error
	closed           bool
}

var _ Transport = (*fakeTransport)(nil)

func (ft *fakeTransport) Write(p []byte) (int, error) {
	ft.calls = append(ft.calls, "write")

	if ft.writeErr != nil {
		return 0, ft.writeErr
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	ft.writes = append(ft.writes, buf)

	return len(p), nil
}

func (ft *fakeTransport) Read(p []byte) (int, error) {
	ft.calls = append(ft.calls, "read")

	if ft.readIdx >= len(ft.reads) {
		return 0, ErrReadTimeout
	}

	step := ft.reads[ft.readIdx]
	ft.readIdx++

	if step.err != nil {
		return 0, step.err
	}

	return copy(p, step.data), nil
}

func (ft *fakeTransport) BytesToRead() (int, error) {
	ft.calls = append(ft.calls, "bytesToRead")

	if ft.availErr != nil {
		return 0, ft.availErr
	}

	if ft.availIdx < len(ft.avail) {
		n := ft.avail[ft.availIdx]
		ft.availIdx++

		return n, nil
	}

	if ft.readIdx < len(ft.reads) {
		step := ft.reads[ft.readIdx]
		if step.err != nil {
			return 1, nil
		}

		return len(step.data), nil
	}

	return 1, nil
}

func (ft *fakeTransport) AssertReady() error {
	ft.calls = append(ft.calls, "assertReady")

	return ft.assertReadyErr
}

func (ft *fakeTransport) AssertReceive() error {
	ft.calls = append(ft.calls, "assertReceive")

	return ft.assertReceiveErr
}

func (ft *fakeTransport) Close() error {
	ft.calls = append(ft.calls, "close")
	ft.closed = true

	return nil
}

// written concatenates all Write payloads in order.
func (ft *fakeTransport) written() []byte {
	var out []byte
	for _, w := range ft.writes {
		out = append(out, w...)
	}

	return out
}

// replyingTransport builds a fakeTransport that answers every request with
// the given raw reply bytes in a single read.
func replyingTransport(raw []byte) *fakeTransport {
	return &fakeTransport{
		reads: []readStep{{data: raw}},
	}
}

// newTestSession creates a Session over the given transport with pacing
// short enough for tests.
func newTestSession(t *testing.T, ft Transport, opts ...Option) *Session {
	t.Helper()

	defaults := []Option{
		WithWriteDelay(time1ms),
	}

	s, err := NewSession(ft, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestSession: %v", err)
	}

	return s
}
