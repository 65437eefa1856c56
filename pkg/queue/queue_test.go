package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueue_ReportsWasEmpty(t *testing.T) {
	q := New(0)
	_, wasEmpty := q.Enqueue("t", "k", []byte("1"), time.Now())
	assert.True(t, wasEmpty)

	_, wasEmpty = q.Enqueue("t", "k", []byte("2"), time.Now())
	assert.False(t, wasEmpty)
}

func TestEnqueue_MonotonicIDs(t *testing.T) {
	q := New(0)
	id1, _ := q.Enqueue("t", "k", []byte("1"), time.Now())
	id2, _ := q.Enqueue("t", "k", []byte("2"), time.Now())
	assert.Equal(t, id1+1, id2)
}

func TestEnqueue_HighWaterMarkWarns(t *testing.T) {
	q := New(1)
	q.Enqueue("t", "k", nil, time.Now())
	q.Enqueue("t", "k", nil, time.Now())
	q.Enqueue("t", "k", nil, time.Now())
	assert.Equal(t, uint64(2), q.Warnings())
}

func TestDrainExpired_SeparatesDroppedFromBatch(t *testing.T) {
	q := New(0)
	old := time.Now().Add(-time.Hour)
	fresh := time.Now()
	q.Enqueue("t", "k", []byte("old"), old)
	q.Enqueue("t", "k", []byte("fresh"), fresh)

	batch, dropped := q.DrainExpired(time.Now(), 10*time.Minute)
	require.Len(t, dropped, 1)
	require.Len(t, batch, 1)
	assert.Equal(t, []byte("fresh"), batch[0].Payload)
	// the fresh item stays queued until Discard/Requeue resolves it
	assert.Equal(t, 1, q.Len())
}

func TestDiscard_RemovesOnlyMatchingIDs(t *testing.T) {
	q := New(0)
	q.Enqueue("t", "k", []byte("1"), time.Now())
	q.Enqueue("t", "k", []byte("2"), time.Now())

	batch, _ := q.DrainExpired(time.Now(), time.Hour)
	require.Len(t, batch, 2)

	id3, _ := q.Enqueue("t", "k", []byte("3"), time.Now())
	q.Discard(batch)

	assert.Equal(t, 1, q.Len())
	remaining, _ := q.DrainExpired(time.Now(), time.Hour)
	require.Len(t, remaining, 1)
	assert.Equal(t, id3, remaining[0].ID)
}

func TestRequeue_PreservesOrderAndIncrementsAttempts(t *testing.T) {
	q := New(0)
	q.Enqueue("t", "k", []byte("new"), time.Now())

	batch := []Message{{ID: 100, Payload: []byte("retry")}}
	q.Requeue(batch)

	all, _ := q.DrainExpired(time.Now(), time.Hour)
	require.Len(t, all, 2)
	assert.Equal(t, []byte("retry"), all[0].Payload)
	assert.Equal(t, 1, all[0].Attempts)
	assert.Equal(t, []byte("new"), all[1].Payload)
}
