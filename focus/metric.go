package focus

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for a Focus session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// RequestSendCount indicates the number of frames fully written.
	RequestSendCount atomic.Uint64
	// ReplyRecvCount indicates the number of replies collected.
	ReplyRecvCount atomic.Uint64
	// ChunkSendCount indicates the number of chunk writes.
	ChunkSendCount atomic.Uint64
	// BytesWrittenCount indicates the total outbound bytes.
	BytesWrittenCount atomic.Uint64
	// BytesReadCount indicates the total raw reply bytes collected,
	// before normalization.
	BytesReadCount atomic.Uint64
	// IOErrCount indicates the number of fatal transport errors observed.
	IOErrCount atomic.Uint64
}

func (m *SessionMetrics) incRequestSendCount() {
	m.RequestSendCount.Add(1)
}

func (m *SessionMetrics) incReplyRecvCount() {
	m.ReplyRecvCount.Add(1)
}

func (m *SessionMetrics) incChunkSendCount() {
	m.ChunkSendCount.Add(1)
}

func (m *SessionMetrics) addBytesWrittenCount(n int) {
	m.BytesWrittenCount.Add(uint64(n)) //nolint:gosec // chunk lengths are small and non-negative
}

func (m *SessionMetrics) addBytesReadCount(n int) {
	m.BytesReadCount.Add(uint64(n)) //nolint:gosec // reply lengths are non-negative
}

func (m *SessionMetrics) incIOErrCount() {
	m.IOErrCount.Add(1)
}
