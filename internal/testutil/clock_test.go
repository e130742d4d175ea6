package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_StartsAtEpoch(t *testing.T) {
	clock := NewFakeClock()
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch, clock.Now())
}

func TestFakeClock_Advance(t *testing.T) {
	clock := NewFakeClock()

	clock.Advance(15 * time.Millisecond)
	clock.Advance(time.Second)

	assert.Equal(t, Epoch.Add(1015*time.Millisecond), clock.Now())
}

func TestFakeClock_Reset(t *testing.T) {
	clock := NewFakeClock()
	clock.Advance(time.Hour)

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestFakeClock_ThreadSafe(t *testing.T) {
	clock := NewFakeClock()
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(numGoroutines*time.Millisecond), clock.Now())
}

func TestTickingClock(t *testing.T) {
	clock := NewTickingClock(5 * time.Millisecond)

	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(5*time.Millisecond), clock.Now())
	assert.Equal(t, Epoch.Add(10*time.Millisecond), clock.Now())
}
