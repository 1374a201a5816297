package focus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===========================================================================
// buildFrame tests
// ===========================================================================

func TestBuildFrame_CommandOnly(t *testing.T) {
	frame, err := buildFrame("version", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("version\n"), frame)
}

func TestBuildFrame_CommandWithArgs(t *testing.T) {
	frame, err := buildFrame("led.at", []string{"1", "2", "red"})
	require.NoError(t, err)
	assert.Equal(t, []byte("led.at 1 2 red\n"), frame)
}

func TestBuildFrame_FlushCommand(t *testing.T) {
	// The flush command is a single space with no arguments.
	frame, err := buildFrame(flushCommand, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(" \n"), frame)
}

func TestBuildFrame_EmptyCommand(t *testing.T) {
	_, err := buildFrame("", nil)
	require.ErrorIs(t, err, ErrEmptyCommand)
}

func TestBuildFrame_EmbeddedLineBreak(t *testing.T) {
	_, err := buildFrame("led.mode\n2", nil)
	require.ErrorIs(t, err, ErrEmbeddedLineBreak)

	_, err = buildFrame("led.at", []string{"1", "2\r\n3"})
	require.ErrorIs(t, err, ErrEmbeddedLineBreak)
}

// ===========================================================================
// sendFrame tests
// ===========================================================================

func TestSendFrame_ChunksAreLosslessPartition(t *testing.T) {
	ft := &fakeTransport{}
	frame := []byte("palette 0 1 2 3 4 5 6 7 8 9\n")

	err := sendFrame(context.Background(), ft, frame, 5, time1ms, nil, nil)
	require.NoError(t, err)

	// Concatenating the chunks reproduces the frame exactly, in order.
	assert.Equal(t, frame, ft.written())

	// ⌈L/C⌉ write calls, every chunk but the last at full size.
	wantWrites := (len(frame) + 4) / 5
	require.Len(t, ft.writes, wantWrites)
	for i, w := range ft.writes[:len(ft.writes)-1] {
		assert.Len(t, w, 5, "chunk %d", i)
	}
	assert.LessOrEqual(t, len(ft.writes[len(ft.writes)-1]), 5)
}

func TestSendFrame_PacingCardinality(t *testing.T) {
	ft := &fakeTransport{}
	frame := []byte("settings.defaultLayer 0\n") // 24 bytes
	const chunkSize = 10
	const delay = 10 * time.Millisecond

	start := time.Now()
	err := sendFrame(context.Background(), ft, frame, chunkSize, delay, nil, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, ft.writes, 3)

	// One pacing sleep per write, including after the last chunk.
	assert.GreaterOrEqual(t, elapsed, 3*delay)
}

func TestSendFrame_AssertsReadyBeforeWriting(t *testing.T) {
	ft := &fakeTransport{}

	err := sendFrame(context.Background(), ft, []byte("version\n"), 32, time1ms, nil, nil)
	require.NoError(t, err)

	require.NotEmpty(t, ft.calls)
	assert.Equal(t, "assertReady", ft.calls[0])
}

func TestSendFrame_Hooks(t *testing.T) {
	ft := &fakeTransport{}
	frame := []byte("led.theme 0 0 0 255 255 255\n")

	var lengths []int
	var progress []int

	err := sendFrame(context.Background(), ft, frame, 8, time1ms,
		func(n int) { lengths = append(lengths, n) },
		func(n int) { progress = append(progress, n) },
	)
	require.NoError(t, err)

	// Length hook fires exactly once, before work, with the frame total.
	require.Equal(t, []int{len(frame)}, lengths)

	// Progress hook fires once per chunk and the counts sum to the total.
	require.Len(t, progress, len(ft.writes))
	sum := 0
	for _, n := range progress {
		sum += n
	}
	assert.Equal(t, len(frame), sum)
}

func TestSendFrame_WriteErrorAborts(t *testing.T) {
	wantErr := errors.New("device unplugged")
	ft := &fakeTransport{writeErr: wantErr}

	err := sendFrame(context.Background(), ft, []byte("version\n"), 4, time1ms, nil, nil)
	require.ErrorIs(t, err, wantErr)

	// First write failed; no further chunks were attempted.
	writeCalls := 0
	for _, c := range ft.calls {
		if c == "write" {
			writeCalls++
		}
	}
	assert.Equal(t, 1, writeCalls)
}

func TestSendFrame_AssertReadyError(t *testing.T) {
	wantErr := errors.New("ioctl failed")
	ft := &fakeTransport{assertReadyErr: wantErr}

	err := sendFrame(context.Background(), ft, []byte("version\n"), 32, time1ms, nil, nil)
	require.ErrorIs(t, err, wantErr)
	assert.Empty(t, ft.writes)
}

func TestSendFrame_ContextCancelled(t *testing.T) {
	ft := &fakeTransport{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sendFrame(ctx, ft, []byte("version\n"), 4, 50*time.Millisecond, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}
