package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_ReadAbsent(t *testing.T) {
	s := NewMemoryBackend().Storage()
	_, err := s.Read(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_WriteRead(t *testing.T) {
	backend := NewMemoryBackend()
	a := backend.Storage()

	require.NoError(t, a.Write(context.Background(), []byte(`[{"id":"x","quantity":1}]`)))

	data, err := backend.Storage().Read(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"x","quantity":1}]`, string(data))
}

func TestMemoryStorage_WatchSkipsOwnWrites(t *testing.T) {
	backend := NewMemoryBackend()
	a := backend.Storage()
	b := backend.Storage()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchA, err := a.Watch(ctx)
	require.NoError(t, err)

	// A's own write never echoes back to A
	require.NoError(t, a.Write(ctx, []byte(`["from-a"]`)))
	select {
	case data := <-watchA:
		t.Fatalf("unexpected self notification: %s", data)
	case <-time.After(50 * time.Millisecond):
	}

	// B's write does reach A
	require.NoError(t, b.Write(ctx, []byte(`["from-b"]`)))
	select {
	case data := <-watchA:
		assert.Equal(t, `["from-b"]`, string(data))
	case <-time.After(time.Second):
		t.Fatal("expected notification from the other storage")
	}
}

func TestMemoryStorage_CloseEndsWatch(t *testing.T) {
	backend := NewMemoryBackend()
	a := backend.Storage()

	watch, err := a.Watch(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Close())

	select {
	case _, open := <-watch:
		assert.False(t, open, "watch channel closes with the storage")
	case <-time.After(time.Second):
		t.Fatal("watch channel did not close")
	}

	// Closing twice is harmless
	assert.NoError(t, a.Close())
}
