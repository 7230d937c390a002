package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSpinnerReportsRetries(t *testing.T) {
	m := newConnectSpinnerModel("nats://127.0.0.1:4222", 3, nil)
	assert.Contains(t, m.View(), "Connecting to nats://127.0.0.1:4222...")
	assert.NotContains(t, m.View(), "attempt")

	updated, cmd := m.Update(dialFailedMsg{attempt: 1, err: errors.New("connection refused")})
	assert.Nil(t, cmd)
	m = updated.(connectSpinnerModel)
	assert.Contains(t, m.View(), "(attempt 2/3, last error: connection refused)")
}

func TestConnectSpinnerQuitsWhenDone(t *testing.T) {
	m := newConnectSpinnerModel("nats://127.0.0.1:4222", 3, nil)
	dialErr := errors.New("no servers available")

	updated, cmd := m.Update(connectDoneMsg{err: dialErr})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = updated.(connectSpinnerModel)
	assert.True(t, m.done)
	assert.ErrorIs(t, m.err, dialErr)
	assert.Empty(t, m.View())
}

func TestDialWithRetry(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")

	t.Run("succeeds after failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var reported []int
		err := dialWithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
			calls++
			if calls < 3 {
				return dialErr
			}
			return nil
		}, func(attempt int, err error) {
			assert.ErrorIs(t, err, dialErr)
			reported = append(reported, attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, reported)
	})

	t.Run("returns last error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := dialWithRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
			calls++
			return dialErr
		}, nil)

		assert.ErrorIs(t, err, dialErr)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops waiting on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		err := dialWithRetry(ctx, 3, time.Hour, func(context.Context) error {
			cancel()
			return dialErr
		}, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
