package focus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keyboardio/go-focus/logger"
)

// Session tuning defaults and bounds.
//
// Fixed small chunks with a mandatory inter-chunk delay exist because the
// device firmware has limited UART receive buffering; writing a whole frame
// in one call can overrun it silently. Pacing trades latency for reliability.
const (
	DefaultChunkSize  = 32
	DefaultWriteDelay = 500 * time.Millisecond

	MinChunkSize = 1
	MaxChunkSize = 4096

	MaxWriteDelay = 10 * time.Second
)

// flushCommand is the single-space command used to drain stale device state.
const flushCommand = " "

// Session is the Focus protocol façade: it owns a Transport exclusively and
// drives complete request/reply cycles over it.
//
// All operations are synchronous and blocking; a request's write phase fully
// completes (all chunks written, including the final pacing sleep) before
// its read phase begins. Session provides no internal synchronization: it
// must not be shared between goroutines.
type Session struct {
	transport  Transport
	logger     logger.Logger
	chunkSize  int
	writeDelay time.Duration
	metrics    SessionMetrics
}

// Option is a functional option for NewSession.
type Option interface {
	apply(*Session) error
}

type optFunc func(*Session) error

func (f optFunc) apply(s *Session) error { return f(s) }

// WithChunkSize sets the number of bytes written per chunk.
// Must be in [MinChunkSize, MaxChunkSize].
func WithChunkSize(n int) Option {
	return optFunc(func(s *Session) error {
		return s.SetChunkSize(n)
	})
}

// WithWriteDelay sets the pacing delay between chunk writes and between
// collection poll iterations. Must be in (0, MaxWriteDelay].
func WithWriteDelay(d time.Duration) Option {
	return optFunc(func(s *Session) error {
		return s.SetWriteDelay(d)
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(s *Session) error {
		if l == nil {
			return errors.New("focus: logger must not be nil")
		}
		s.logger = l

		return nil
	})
}

// NewSession creates a Session owning the given transport.
//
// The caller must not use the transport afterwards; Close releases it.
func NewSession(t Transport, opts ...Option) (*Session, error) {
	if t == nil {
		return nil, ErrNilTransport
	}

	s := &Session{
		transport:  t,
		logger:     logger.GetLogger(),
		chunkSize:  DefaultChunkSize,
		writeDelay: DefaultWriteDelay,
	}

	for _, opt := range opts {
		if err := opt.apply(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SetChunkSize sets the number of bytes written per chunk.
//
// Call it, if at all, before the first request on the session; no
// synchronization is provided for concurrent setter/request use, and
// mid-session pacing changes make device behavior hard to reason about.
func (s *Session) SetChunkSize(n int) error {
	if n < MinChunkSize || n > MaxChunkSize {
		return fmt.Errorf("focus: chunk size %d out of range [%d, %d]", n, MinChunkSize, MaxChunkSize)
	}
	s.chunkSize = n

	return nil
}

// SetWriteDelay sets the pacing delay between chunk writes and between
// collection poll iterations. The same pre-use caveat as SetChunkSize applies.
func (s *Session) SetWriteDelay(d time.Duration) error {
	if d <= 0 || d > MaxWriteDelay {
		return fmt.Errorf("focus: write delay %v out of range (0, %v]", d, MaxWriteDelay)
	}
	s.writeDelay = d

	return nil
}

// ChunkSize returns the configured bytes-per-write chunk size.
func (s *Session) ChunkSize() int { return s.chunkSize }

// WriteDelay returns the configured pacing delay.
func (s *Session) WriteDelay() time.Duration { return s.writeDelay }

// GetLogger returns the logger associated with the session.
func (s *Session) GetLogger() logger.Logger { return s.logger }

// GetMetrics returns the metrics associated with the session.
func (s *Session) GetMetrics() *SessionMetrics { return &s.metrics }

// Flush sends the single-space command and discards the reply, draining any
// state left over from a prior, possibly interrupted, exchange. Call it
// before the first real request of a session.
func (s *Session) Flush(ctx context.Context) error {
	_, err := s.Request(ctx, flushCommand)

	return err
}

// Request sends a command with the given arguments and returns the
// normalized reply, or the first error encountered in either phase.
func (s *Session) Request(ctx context.Context, command string, args ...string) (string, error) {
	return s.RequestWithProgress(ctx, command, args, nil, nil)
}

// RequestWithProgress is Request with the two encoder hooks exposed for UI
// feedback: onLength is invoked once with the total frame length before any
// chunk is written, onProgress once per chunk with the chunk length. No
// hooks fire during collection; a reply has no known total to report
// against.
func (s *Session) RequestWithProgress(
	ctx context.Context,
	command string,
	args []string,
	onLength ProgressFunc,
	onProgress ProgressFunc,
) (string, error) {
	frame, err := buildFrame(command, args)
	if err != nil {
		return "", err
	}

	s.logger.Debug("focus: sending request",
		"command", command,
		"frameLen", len(frame),
		"chunkSize", s.chunkSize)

	progress := func(n int) {
		s.metrics.incChunkSendCount()
		s.metrics.addBytesWrittenCount(n)

		if onProgress != nil {
			onProgress(n)
		}
	}

	if err := sendFrame(ctx, s.transport, frame, s.chunkSize, s.writeDelay, onLength, progress); err != nil {
		s.metrics.incIOErrCount()

		return "", err
	}

	s.metrics.incRequestSendCount()

	raw, err := collect(ctx, s.transport, s.writeDelay)
	if err != nil {
		s.metrics.incIOErrCount()

		return "", err
	}

	s.metrics.incReplyRecvCount()
	s.metrics.addBytesReadCount(len(raw))

	reply := Normalize(raw)

	s.logger.Debug("focus: reply collected",
		"command", command,
		"rawBytes", len(raw),
		"replyLen", len(reply))

	return reply, nil
}

// Close releases the owned transport. The session must not be used after.
func (s *Session) Close() error {
	return s.transport.Close()
}
