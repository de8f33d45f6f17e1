package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"insurance-agent/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	opts := Options{ConnectRetries: 3, ConnectDelay: time.Millisecond}

	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, opts, logger.NewTestLogger(t), "test op")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(func() error {
		calls++
		return errors.New("down")
	}, opts, logger.NewNoOpLogger(), "test op")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "test op failed after 3 attempts: down")
}

func TestRetryWithBackoff_AtLeastOnce(t *testing.T) {
	calls := 0
	_ = retryWithBackoff(func() error { calls++; return nil }, Options{}, logger.NewNoOpLogger(), "op")
	assert.Equal(t, 1, calls)
}

type slowModel struct{}

func (slowModel) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (slowModel) Embed(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	m := withTimeout(slowModel{}, 5*time.Millisecond)

	_, err := m.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = m.Embed(context.Background(), "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, slowModel{}, withTimeout(slowModel{}, 0))
}
