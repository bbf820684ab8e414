package retry

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "try later"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	target := &HTTPError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return target
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, target)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_NonRetryableAbortsImmediately(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "gone"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	err := WithBackoff(ctx, cfg, func() error {
		return &HTTPError{StatusCode: 500, Message: "x"}
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(syscall.ECONNREFUSED))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 503}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: http.StatusRequestTimeout}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsRetryable(errors.New("parse failure")))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, BucketTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, BucketNotFound, Classify(&HTTPError{StatusCode: 404}))
	assert.Equal(t, BucketBlocked, Classify(&HTTPError{StatusCode: 403}))
	assert.Equal(t, BucketBlocked, Classify(&HTTPError{StatusCode: 429}))
	assert.Equal(t, BucketTimeout, Classify(&HTTPError{StatusCode: 504}))
	assert.Equal(t, BucketBlocked, Classify(errors.New("captcha challenge detected")))
	assert.Equal(t, BucketOther, Classify(errors.New("selector mismatch")))
}
