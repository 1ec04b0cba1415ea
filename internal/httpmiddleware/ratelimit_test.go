package httpmiddleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterExhaustsBurst(t *testing.T) {
	l := NewIPRateLimiter(3, 60)

	assert.True(t, l.take("10.0.0.1"))
	assert.True(t, l.take("10.0.0.1"))
	assert.True(t, l.take("10.0.0.1"))
	assert.False(t, l.take("10.0.0.1"), "fourth request within the burst window must be rejected")

	// Other clients have their own bucket.
	assert.True(t, l.take("10.0.0.2"))
}

func TestLimiterRefills(t *testing.T) {
	l := NewIPRateLimiter(1, 60)

	assert.True(t, l.take("10.0.0.1"))
	assert.False(t, l.take("10.0.0.1"))

	// Backdate the bucket one second; at 60/min that is one token.
	l.mu.Lock()
	l.buckets["10.0.0.1"].last = time.Now().Add(-time.Second)
	l.mu.Unlock()

	assert.True(t, l.take("10.0.0.1"))
	assert.False(t, l.take("10.0.0.1"))
}

func TestLimiterDefaultsBurstToRate(t *testing.T) {
	l := NewIPRateLimiter(0, 5)
	for i := 0; i < 5; i++ {
		assert.True(t, l.take("10.0.0.1"), "request %d", i)
	}
	assert.False(t, l.take("10.0.0.1"))
}
