package tpccsql

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementTimeout(t *testing.T) {
	t.Run("no deadline", func(t *testing.T) {
		_, ok := StatementTimeout(context.Background())

		assert.False(t, ok)
	})

	t.Run("remaining time", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		value, ok := StatementTimeout(ctx)

		require.True(t, ok)
		ms, err := strconv.Atoi(value)
		require.NoError(t, err)
		assert.InDelta(t, 2000, ms, 100)
	})

	t.Run("expired deadline still sets a minimum", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		value, ok := StatementTimeout(ctx)

		require.True(t, ok)
		assert.Equal(t, "1", value)
	})
}
