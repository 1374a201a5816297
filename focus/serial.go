package focus

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Serial transport defaults.
const (
	// DefaultBaudRate is the serial rate Focus devices enumerate at. The
	// devices are USB CDC endpoints, so the rate is nominal, but it must be
	// set for the port to open on every platform.
	DefaultBaudRate = 115200

	// DefaultReadTimeout is the per-read window after which a reply is
	// considered complete. Short enough to detect idle promptly, long
	// enough to not mistake the device's own write pacing for silence.
	DefaultReadTimeout = 100 * time.Millisecond
)

// probeTimeout is the near-zero deadline used by BytesToRead probes.
const probeTimeout = time.Millisecond

// SerialTransport implements [Transport] on top of a go.bug.st/serial port.
//
// go.bug.st reports an expired read deadline as a zero-byte read and offers
// no input-queue count, so SerialTransport translates zero-byte reads into
// [ErrReadTimeout] and backs BytesToRead with a short probe read whose
// result is stashed in an internal pending buffer.
type SerialTransport struct {
	port        serial.Port
	name        string
	readTimeout time.Duration

	pending []byte
	scratch [64]byte
}

var _ Transport = (*SerialTransport)(nil)

type serialConfig struct {
	baudRate    int
	readTimeout time.Duration
}

// SerialOption is a functional option for OpenSerial.
type SerialOption interface {
	apply(*serialConfig) error
}

type serialOptFunc func(*serialConfig) error

func (f serialOptFunc) apply(cfg *serialConfig) error { return f(cfg) }

// WithBaudRate sets the serial rate used to open the port.
func WithBaudRate(rate int) SerialOption {
	return serialOptFunc(func(cfg *serialConfig) error {
		if rate <= 0 {
			return fmt.Errorf("focus: baud rate %d must be positive", rate)
		}
		cfg.baudRate = rate

		return nil
	})
}

// WithReadTimeout sets the per-read window that, once expired during reply
// collection, marks the reply as complete.
func WithReadTimeout(d time.Duration) SerialOption {
	return serialOptFunc(func(cfg *serialConfig) error {
		if d <= 0 {
			return fmt.Errorf("focus: read timeout %v must be positive", d)
		}
		cfg.readTimeout = d

		return nil
	})
}

// OpenSerial opens the named serial port and wraps it in a SerialTransport.
func OpenSerial(name string, opts ...SerialOption) (*SerialTransport, error) {
	cfg := serialConfig{
		baudRate:    DefaultBaudRate,
		readTimeout: DefaultReadTimeout,
	}

	for _, opt := range opts {
		if err := opt.apply(&cfg); err != nil {
			return nil, err
		}
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: cfg.baudRate})
	if err != nil {
		return nil, fmt.Errorf("focus: open serial port %q: %w", name, err)
	}

	return NewSerialTransport(port, name, cfg.readTimeout), nil
}

// NewSerialTransport wraps an already-open port. Useful when the caller
// configures the port itself or injects a fake in tests.
func NewSerialTransport(port serial.Port, name string, readTimeout time.Duration) *SerialTransport {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	return &SerialTransport{
		port:        port,
		name:        name,
		readTimeout: readTimeout,
	}
}

// Name returns the port name the transport was opened with.
func (t *SerialTransport) Name() string { return t.name }

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	// Serve bytes stashed by BytesToRead probes first.
	if len(t.pending) > 0 {
		n := copy(p, t.pending)
		t.pending = t.pending[n:]

		return n, nil
	}

	if err := t.port.SetReadTimeout(t.readTimeout); err != nil {
		return 0, fmt.Errorf("focus: set read timeout: %w", err)
	}

	n, err := t.port.Read(p)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, ErrReadTimeout
	}

	return n, nil
}

func (t *SerialTransport) BytesToRead() (int, error) {
	if len(t.pending) > 0 {
		return len(t.pending), nil
	}

	if err := t.port.SetReadTimeout(probeTimeout); err != nil {
		return 0, fmt.Errorf("focus: set read timeout: %w", err)
	}

	n, err := t.port.Read(t.scratch[:])
	if err != nil {
		return 0, err
	}

	t.pending = append(t.pending, t.scratch[:n]...)

	return len(t.pending), nil
}

func (t *SerialTransport) AssertReady() error {
	return t.port.SetDTR(true)
}

func (t *SerialTransport) AssertReceive() error {
	return t.port.SetRTS(true)
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
