package track

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/internal/eventbus"
)

func at(i int, lat, lon float64) model.Observation {
	return model.Observation{Timestamp: time.Unix(int64(i)*600, 0).UTC(), Lat: lat, Lon: lon}
}

func TestStore_AppendSnapshot(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Append(at(0, 1, 1), at(1, 2, 2)))
	require.NoError(t, s.Append(at(2, 3, 3)))
	require.NoError(t, s.Append())

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 3.0, snap[2].Lat)

	// Snapshots are copies.
	snap[0].Lat = 99
	assert.Equal(t, 1.0, s.Snapshot()[0].Lat)
	assert.Equal(t, 3, s.Len())
}

func TestStore_MaxLen(t *testing.T) {
	s := New(2)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(at(i, float64(i), 0)))
	}
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 3.0, snap[0].Lat)
	assert.Equal(t, 4.0, snap[1].Lat)
	assert.Equal(t, uint64(5), s.Version())
	require.NoError(t, s.Append())
	assert.Equal(t, uint64(5), s.Version())
}

func TestStore_Subscribe(t *testing.T) {
	s := New(0)
	sub := s.Subscribe()
	require.NoError(t, s.Append(at(0, 1, 1)))
	select {
	case ev := <-sub:
		assert.Equal(t, 1, ev.Len)
		assert.Len(t, ev.Added, 1)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	s.Unsubscribe(sub)
	_, open := <-sub
	assert.False(t, open)
}

func TestStore_Close(t *testing.T) {
	s := New(0)
	sub := s.Subscribe()
	s.Close()
	s.Close()
	_, open := <-sub
	assert.False(t, open)
	assert.ErrorIs(t, s.Append(at(0, 0, 0)), ErrClosed)
	_, open = <-s.Subscribe()
	assert.False(t, open)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Append(at(i*100+j, 0, 0))
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1000, s.Len())
}

func TestStore_SlowSubscriberMissesEvents(t *testing.T) {
	s := New(0)
	sub := s.Subscribe()
	for i := 0; i < eventbus.DefaultBuffer+3; i++ {
		require.NoError(t, s.Append(at(i, 0, 0)))
	}
	s.Close()
	var lens []int
	for ev := range sub {
		lens = append(lens, ev.Len)
	}
	require.Len(t, lens, eventbus.DefaultBuffer)
	for i, n := range lens {
		assert.Equal(t, i+1, n)
	}
}
