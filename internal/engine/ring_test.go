package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	r, err := NewRing(5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, r.Fork(i).Index())
		assert.Equal(t, 0, r.Fork(i).Holder())
	}

	_, err = NewRing(0)
	assert.Error(t, err)
}

func TestRing_Seat(t *testing.T) {
	r, err := NewRing(4)
	require.NoError(t, err)

	left, right := r.Seat(0)
	assert.Equal(t, 0, left.Index())
	assert.Equal(t, 1, right.Index())

	left, right = r.Seat(3)
	assert.Equal(t, 3, left.Index())
	assert.Equal(t, 0, right.Index(), "last seat wraps to the first fork")
}

func TestRing_SingleSeatSharesOneFork(t *testing.T) {
	r, err := NewRing(1)
	require.NoError(t, err)

	left, right := r.Seat(0)
	assert.Same(t, left, right)
}

func TestOrdered_LowerIndexFirst(t *testing.T) {
	r, err := NewRing(3)
	require.NoError(t, err)

	first, second := Ordered(r.Fork(2), r.Fork(0))
	assert.Equal(t, 0, first.Index())
	assert.Equal(t, 2, second.Index())

	first, second = Ordered(r.Fork(1), r.Fork(2))
	assert.Equal(t, 1, first.Index())
	assert.Equal(t, 2, second.Index())
}

func TestPair_TakeAndRelease(t *testing.T) {
	r, err := NewRing(2)
	require.NoError(t, err)

	p := newPair(1)
	p.take(r.Fork(0))
	p.take(r.Fork(1))
	assert.Equal(t, 2, p.Held())
	assert.Equal(t, 1, r.Fork(0).Holder())
	assert.Equal(t, 1, r.Fork(1).Holder())

	p.Release()
	assert.Equal(t, 0, p.Held())
	assert.Equal(t, 0, r.Fork(0).Holder())
	assert.Equal(t, 0, r.Fork(1).Holder())

	assert.NotPanics(t, p.Release, "release is idempotent")
}

func TestFork_UnlockByNonHolderPanics(t *testing.T) {
	r, err := NewRing(1)
	require.NoError(t, err)
	f := r.Fork(0)

	f.lock(1)
	defer f.unlock(1)

	defer func() {
		v := recover()
		require.NotNil(t, v)
		se, ok := v.(*SimulationError)
		require.True(t, ok, "panic value should be *SimulationError, got %T", v)
		assert.Equal(t, ErrCodeForkCorrupted, se.Code)
		assert.Equal(t, 2, se.Actor)
		assert.Equal(t, "1", se.Details["holder"])
	}()
	f.unlock(2)
}

// Every actor of a contended ring increments a counter per neighbouring
// fork pair; holding both forks must give exclusive access.
func TestRing_MutualExclusionUnderContention(t *testing.T) {
	const n = 5
	const rounds = 500
	r, err := NewRing(n)
	require.NoError(t, err)

	inUse := make([]int, n)
	var wg sync.WaitGroup
	for seat := 0; seat < n; seat++ {
		wg.Add(1)
		go func(seat int) {
			defer wg.Done()
			left, right := r.Seat(seat)
			for i := 0; i < rounds; i++ {
				first, second := Ordered(left, right)
				p := newPair(seat + 1)
				p.take(first)
				p.take(second)

				inUse[left.Index()]++
				inUse[right.Index()]++
				assert.Equal(t, seat+1, left.Holder())
				assert.Equal(t, seat+1, right.Holder())
				inUse[left.Index()]--
				inUse[right.Index()]--

				p.Release()
			}
		}(seat)
	}
	wg.Wait()

	for i := range inUse {
		assert.Zero(t, inUse[i])
		assert.Zero(t, r.Fork(i).Holder())
	}
}
