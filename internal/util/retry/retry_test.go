package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(t.Context(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, WithAttempts(4), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttemptBudget(t *testing.T) {
	cause := errors.New("still broken")
	attempts := 0
	err := Do(t.Context(), func() error {
		attempts++
		return cause
	}, WithAttempts(3), WithInitialDelay(time.Millisecond))

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
}

func TestDo_FatalErrorStopsImmediately(t *testing.T) {
	cause := errors.New("bad credentials")
	attempts := 0
	err := Do(t.Context(), func() error {
		attempts++
		return Fatal(cause)
	}, WithAttempts(5), WithInitialDelay(time.Millisecond))

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
}

func TestDo_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("keep trying")
	}, WithAttempts(5), WithInitialDelay(time.Minute))

	require.ErrorIs(t, err, context.Canceled)
}

func TestFatal_NilPassthrough(t *testing.T) {
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(nil))
	assert.True(t, IsFatal(Fatal(errors.New("x"))))
}
