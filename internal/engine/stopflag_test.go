package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopFlag_StartsUnset(t *testing.T) {
	f := NewStopFlag()
	assert.False(t, f.IsSet())

	select {
	case <-f.Done():
		t.Fatal("Done closed before trip")
	default:
	}
}

func TestStopFlag_TripOnce(t *testing.T) {
	f := NewStopFlag()

	assert.True(t, f.trip(), "first trip changes the flag")
	assert.False(t, f.trip(), "second trip is a no-op")
	assert.True(t, f.IsSet())

	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed after trip")
	}
}

func TestStopFlag_ConcurrentTripHasOneWinner(t *testing.T) {
	f := NewStopFlag()
	var winners atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.trip() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
