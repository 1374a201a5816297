package focus

import "errors"

// Sentinel errors for the Focus protocol.
var (
	// ErrReadTimeout reports that no byte arrived within the transport's
	// configured read window. During reply collection this is the expected
	// end-of-reply condition, not a failure.
	ErrReadTimeout = errors.New("focus: read timed out")

	// ErrNilTransport is returned by NewSession when no transport is given.
	ErrNilTransport = errors.New("focus: transport is nil")

	// ErrEmptyCommand is returned when a request's command token is empty.
	ErrEmptyCommand = errors.New("focus: empty command")

	// ErrEmbeddedLineBreak is returned when a command or argument token
	// contains a CR or LF, which would corrupt the single-line frame.
	ErrEmbeddedLineBreak = errors.New("focus: embedded line break in command or argument")

	// ErrSessionExists is returned by Manager.Add for an already-tracked port.
	ErrSessionExists = errors.New("focus: session already exists for port")
)

// Transport abstracts the byte-stream endpoint a Session talks through,
// typically a USB CDC serial port.
//
// Implementations are not required to be goroutine-safe; a Transport is
// owned by exactly one Session and driven from one goroutine at a time.
type Transport interface {
	// Write writes the given bytes. It may buffer internally but must not
	// return before the driver has accepted all of p.
	Write(p []byte) (int, error)

	// Read fills p with available bytes, blocking up to the transport's
	// configured read window. It returns ErrReadTimeout when no byte
	// arrived in time, and a fatal error otherwise.
	Read(p []byte) (int, error)

	// BytesToRead reports the number of buffered-but-unread bytes without
	// blocking.
	BytesToRead() (int, error)

	// AssertReady raises the control line telling the remote endpoint the
	// host is ready to transmit. Issued once before each frame is written.
	AssertReady() error

	// AssertReceive raises the control line telling the remote endpoint the
	// host is ready to receive. Issued once before reply collection begins.
	AssertReceive() error

	// Close releases the underlying device.
	Close() error
}
