package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotLocker_FallsBackToLocal(t *testing.T) {
	_, ok := NewSlotLocker(nil, time.Second).(*LocalSlotLocker)
	assert.True(t, ok)
}

func TestLocalSlotLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalSlotLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "Sakura Heights|2025-06-10T01:00:00Z")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := l.Lock(ctx, "Sakura Heights|2025-06-10T01:00:00Z")
		if err == nil {
			second()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock not acquired after release")
	}
}

func TestLocalSlotLocker_IndependentKeys(t *testing.T) {
	l := NewLocalSlotLocker()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer a()

	b, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	b()
}

func TestLocalSlotLocker_ContextCancelled(t *testing.T) {
	l := NewLocalSlotLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrSlotBusy)
}

func TestLocalSlotLocker_UnlockIsIdempotent(t *testing.T) {
	l := NewLocalSlotLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}
