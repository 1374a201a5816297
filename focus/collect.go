package focus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// collectState tracks the reply collector's termination state machine.
//
// The protocol has no explicit end-of-reply marker or length prefix, so the
// collector models termination explicitly: a read timeout while accumulating
// is the designed "reply complete" transition, distinct from the fatal-error
// transition and from the initial wait for the first byte.
type collectState int

const (
	stateAwaitingFirstByte collectState = iota
	stateAccumulating
	stateDone
	stateFailed
)

// replyScratchSize is the size of the per-read scratch buffer.
const replyScratchSize = 1024

// collect reads the raw reply bytes for one request/reply cycle.
//
// It asserts the ready-to-receive line once, polls BytesToRead (sleeping
// pollDelay between polls) until the first byte is buffered, then reads and
// accumulates until a read times out. There is no overall deadline for the
// first byte: a device that never answers is a legitimate state, bounded
// only by ctx cancellation.
//
// A fatal transport error discards the partial accumulator.
func collect(ctx context.Context, t Transport, pollDelay time.Duration) ([]byte, error) {
	if err := t.AssertReceive(); err != nil {
		return nil, fmt.Errorf("focus: assert receive signal: %w", err)
	}

	var (
		reply   []byte
		failure error
	)

	scratch := make([]byte, replyScratchSize)
	state := stateAwaitingFirstByte

	for state != stateDone && state != stateFailed {
		switch state {
		case stateAwaitingFirstByte:
			n, err := t.BytesToRead()
			switch {
			case err != nil:
				failure = fmt.Errorf("focus: query buffered bytes: %w", err)
				state = stateFailed

			case n > 0:
				state = stateAccumulating

			default:
				if err := sleep(ctx, pollDelay); err != nil {
					failure = err
					state = stateFailed
				}
			}

		case stateAccumulating:
			n, err := t.Read(scratch)
			switch {
			case errors.Is(err, ErrReadTimeout):
				// Link silence: the reply is complete.
				state = stateDone

			case err != nil:
				failure = fmt.Errorf("focus: read reply: %w", err)
				state = stateFailed

			default:
				reply = append(reply, scratch[:n]...)

				if err := sleep(ctx, pollDelay); err != nil {
					failure = err
					state = stateFailed
				}
			}
		}
	}

	if state == stateFailed {
		return nil, failure
	}

	return reply, nil
}
