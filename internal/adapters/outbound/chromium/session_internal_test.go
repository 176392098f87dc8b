package chromium

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackshot/stackshot/internal/domain"
)

func TestGotoTimeout(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no deadline keeps the timeout", func(t *testing.T) {
		got, err := gotoTimeout(context.Background(), 15*time.Second, now)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Second, got)
	})

	t.Run("clamped to the deadline", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), now.Add(3*time.Second))
		defer cancel()
		got, err := gotoTimeout(ctx, 15*time.Second, now)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, got)
	})

	t.Run("zero timeout takes the deadline", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), now.Add(2*time.Second))
		defer cancel()
		got, err := gotoTimeout(ctx, 0, now)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, got)
	})

	t.Run("deadline already passed", func(t *testing.T) {
		// The context itself has not fired yet; only the clock says it is over.
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(time.Hour))
		defer cancel()
		got, err := gotoTimeout(ctx, 15*time.Second, time.Now().Add(2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrNavigationTimeout)
		assert.Zero(t, got)
	})

	t.Run("expired context", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		_, err := gotoTimeout(ctx, 15*time.Second, time.Now())
		assert.ErrorIs(t, err, domain.ErrNavigationTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gotoTimeout(ctx, 15*time.Second, now)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrNavigationTimeout)
	})
}
