package focus

import (
	"errors"

	"github.com/keyboardio/go-focus/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Manager tracks open sessions keyed by port name, for hosts that drive
// several Focus devices at once (e.g. a configuration UI with more than one
// keyboard attached).
//
// The registry itself is safe for concurrent use; the individual sessions
// keep their single-owner contract, so two goroutines must not issue
// requests on the same session.
type Manager struct {
	sessions *xsync.MapOf[string, *Session]
	logger   logger.Logger
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: xsync.NewMapOf[string, *Session](),
		logger:   logger.GetLogger(),
	}
}

// Open opens the named serial port, wraps it in a session with the given
// options, and registers it. If a session for the port already exists, it is
// returned unchanged and no port is opened.
func (m *Manager) Open(portName string, opts ...Option) (*Session, error) {
	if s, ok := m.sessions.Load(portName); ok {
		return s, nil
	}

	t, err := OpenSerial(portName)
	if err != nil {
		return nil, err
	}

	s, err := NewSession(t, opts...)
	if err != nil {
		_ = t.Close()

		return nil, err
	}

	if err := m.Add(portName, s); err != nil {
		// Lost the race to another Open; keep the registered session.
		_ = s.Close()
		existing, _ := m.sessions.Load(portName)

		return existing, nil
	}

	m.logger.Debug("focus: session opened", "port", portName)

	return s, nil
}

// Add registers an existing session under the given port name.
// Returns ErrSessionExists if the name is already tracked.
func (m *Manager) Add(portName string, s *Session) error {
	if _, loaded := m.sessions.LoadOrStore(portName, s); loaded {
		return ErrSessionExists
	}

	return nil
}

// Get returns the session registered under the given port name.
func (m *Manager) Get(portName string) (*Session, bool) {
	return m.sessions.Load(portName)
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// Range calls f for each tracked session until f returns false.
func (m *Manager) Range(f func(portName string, s *Session) bool) {
	m.sessions.Range(f)
}

// Close closes and forgets the session registered under the given port
// name. Closing an unknown name is a no-op.
func (m *Manager) Close(portName string) error {
	s, ok := m.sessions.LoadAndDelete(portName)
	if !ok {
		return nil
	}

	return s.Close()
}

// CloseAll closes every tracked session and empties the registry, returning
// the joined close errors.
func (m *Manager) CloseAll() error {
	var errs []error

	m.sessions.Range(func(portName string, s *Session) bool {
		if err := s.Close(); err != nil {
			m.logger.Error("focus: failed to close session", "port", portName, "error", err)
			errs = append(errs, err)
		}

		return true
	})
	m.sessions.Clear()

	return errors.Join(errs...)
}
