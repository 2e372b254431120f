package local

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/snow-ghost/decision/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_WrapTimeout(t *testing.T) {
	g := NewGuard(core.Budget{Timeout: 10 * time.Millisecond})

	start := time.Now()
	err := g.Wrap(context.Background(), func(ctx context.Context) error {
		// Simulate long work
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	})
	elapsed := time.Since(start)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed.Milliseconds(), int64(10))
}

func TestGuard_WrapNoTimeout(t *testing.T) {
	g := NewGuard(core.Budget{})
	var hasDeadline bool
	err := g.Wrap(context.Background(), func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hasDeadline)

	boom := errors.New("boom")
	assert.ErrorIs(t, g.Wrap(context.Background(), func(context.Context) error { return boom }), boom)
}

func TestGuard_Spend(t *testing.T) {
	g := NewGuard(core.Budget{MaxEvaluations: 10})

	require.NoError(t, g.Spend(6))
	assert.Equal(t, 4, g.Remaining())

	err := g.Spend(5)
	assert.ErrorIs(t, err, core.ErrBudgetExhausted)
	assert.Equal(t, 6, g.Spent())

	require.NoError(t, g.Spend(4))
	assert.Equal(t, 0, g.Remaining())
	assert.ErrorIs(t, g.Spend(1), core.ErrBudgetExhausted)
}

func TestGuard_SpendUnlimited(t *testing.T) {
	g := NewGuard(core.Budget{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Spend(2))
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, g.Spent())
	assert.Equal(t, -1, g.Remaining())
}
