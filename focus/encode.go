package focus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keyboardio/go-focus/internal/pool"
)

// ProgressFunc receives byte counts from the send path: once with the total
// frame length (the length hook) and once per chunk with the chunk length
// (the progress hook). Hooks run synchronously on the calling goroutine.
type ProgressFunc func(n int)

// buildFrame joins the command and its arguments with single spaces and
// appends the terminating newline.
//
// A frame never contains a line break before its terminal one, so tokens
// with embedded CR or LF are rejected.
func buildFrame(command string, args []string) ([]byte, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	if strings.ContainsAny(command, "\r\n") {
		return nil, ErrEmbeddedLineBreak
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "\r\n") {
			return nil, ErrEmbeddedLineBreak
		}
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	parts = append(parts, args...)

	return []byte(strings.Join(parts, " ") + "\n"), nil
}

// sendFrame writes a frame to the transport in paced chunks.
//
// It asserts the ready-to-transmit line first, reports the total frame
// length via onLength, then writes chunkSize-byte chunks in order (the last
// chunk possibly shorter), sleeping writeDelay after every chunk. The sleep
// after the final chunk is intentional: the device may still be draining
// its receive buffer, and the pause keeps the immediately following read
// phase from racing it.
func sendFrame(
	ctx context.Context,
	t Transport,
	frame []byte,
	chunkSize int,
	writeDelay time.Duration,
	onLength ProgressFunc,
	onProgress ProgressFunc,
) error {
	if err := t.AssertReady(); err != nil {
		return fmt.Errorf("focus: assert ready signal: %w", err)
	}

	if onLength != nil {
		onLength(len(frame))
	}

	for off := 0; off < len(frame); off += chunkSize {
		end := off + chunkSize
		if end > len(frame) {
			end = len(frame)
		}
		chunk := frame[off:end]

		if onProgress != nil {
			onProgress(len(chunk))
		}

		if _, err := t.Write(chunk); err != nil {
			return fmt.Errorf("focus: write chunk: %w", err)
		}

		if err := sleep(ctx, writeDelay); err != nil {
			return err
		}
	}

	return nil
}

// sleep pauses for d, returning early with ctx.Err() if ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := pool.GetTimer(d)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
