package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_StandsStill(t *testing.T) {
	clock := NewFixedClock(Today)
	assert.Equal(t, Today, clock.Now())
	assert.Equal(t, Today, clock.Now())
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock(Today)

	next := clock.Advance(24 * time.Hour)
	assert.Equal(t, time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), next)
	assert.Equal(t, next, clock.Now())
}

func TestFixedClock_Set(t *testing.T) {
	clock := NewFixedClock(Today)
	later := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(Today)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, Today.Add(100*time.Second), clock.Now())
}
