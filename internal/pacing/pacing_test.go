package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBetween(t *testing.T) {
	src := NewSource(42)
	for i := 0; i < 200; i++ {
		d := Between(src, 500*time.Millisecond, 3*time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.Less(t, d, 3*time.Second)
	}

	assert.Equal(t, time.Second, Between(src, time.Second, time.Second))
	assert.Equal(t, time.Second, Between(src, time.Second, 0))
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Int63n(1000), b.Int63n(1000))
	}
}

func TestPick(t *testing.T) {
	src := NewSource(1)
	assert.Equal(t, 0, Pick(src, 0))
	assert.Equal(t, 0, Pick(src, 1))
	for i := 0; i < 50; i++ {
		idx := Pick(src, 3)
		assert.True(t, idx >= 0 && idx < 3)
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepZero(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}
