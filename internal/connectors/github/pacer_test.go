package github

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_Wait(t *testing.T) {
	t.Run("first request passes immediately", func(t *testing.T) {
		pacer := NewPacer(time.Second)

		start := time.Now()
		err := pacer.Wait(context.Background())

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("spaces consecutive requests", func(t *testing.T) {
		pacer := NewPacer(20 * time.Millisecond)
		ctx := context.Background()

		require.NoError(t, pacer.Wait(ctx))
		start := time.Now()
		require.NoError(t, pacer.Wait(ctx))

		assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	})

	t.Run("negative interval disables pacing", func(t *testing.T) {
		pacer := NewPacer(-1)

		start := time.Now()
		for i := 0; i < 50; i++ {
			require.NoError(t, pacer.Wait(context.Background()))
		}

		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		pacer := NewPacer(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, pacer.Wait(context.Background()))
		err := pacer.Wait(ctx)

		assert.Error(t, err)
	})
}
