package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, RetryAfterSeconds(true, now, now.Add(time.Minute)))
	assert.Equal(t, 60, RetryAfterSeconds(false, now, now.Add(time.Minute)))
	assert.Equal(t, 2, RetryAfterSeconds(false, now, now.Add(1500*time.Millisecond)))
	assert.Equal(t, 1, RetryAfterSeconds(false, now, now.Add(-time.Second)))
}
