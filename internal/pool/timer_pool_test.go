package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPool(t *testing.T) {
	t.Run("get and put", func(t *testing.T) {
		timer1 := GetTimer(10 * time.Millisecond)
		assert.NotNil(t, timer1)

		PutTimer(timer1)

		timer2 := GetTimer(20 * time.Millisecond)
		assert.NotNil(t, timer2)

		<-timer2.C
		PutTimer(timer2)
	})

	t.Run("put active timer is reusable", func(t *testing.T) {
		timer1 := GetTimer(100 * time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		PutTimer(timer1) // still active

		begin := time.Now()
		timer2 := GetTimer(60 * time.Millisecond)

		select {
		case fired := <-timer2.C:
			// The reused timer must run its full new duration, not the
			// remainder of the old one.
			assert.GreaterOrEqual(t, fired.Sub(begin), 50*time.Millisecond)
		case <-time.After(200 * time.Millisecond):
			t.Error("reused timer never fired")
		}
		PutTimer(timer2)
	})

	t.Run("concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				timer := GetTimer(5 * time.Millisecond)
				defer PutTimer(timer)
				<-timer.C
			}()
		}
		wg.Wait()
	})
}
