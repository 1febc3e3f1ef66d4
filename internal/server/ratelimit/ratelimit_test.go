package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Allowlist:     make(map[string]bool),
		Blocklist:     make(map[string]bool),
		EndpointConfigs: []EndpointConfig{
			{Path: "/brands/", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/brands/abc/voice-profiles", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/brands/abc/voice-profiles", "POST")
	assert.True(t, allowed)

	allowed, info := l.Allow("1.2.3.4", "/brands/abc/voice-profiles", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/brands/abc/voice-profiles", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("5.6.7.8", "/brands/abc/voice-profiles", "POST")
	assert.True(t, allowed, "a different client has its own bucket")
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/brands", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_AllowAndBlockLists(t *testing.T) {
	cfg := testConfig()
	cfg.Allowlist["10.0.0.1"] = true
	cfg.Blocklist["10.0.0.2"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/brands/abc/voice-profiles", "POST")
		require.True(t, allowed)
	}

	allowed, _ := l.Allow("10.0.0.2", "/brands", "GET")
	assert.False(t, allowed)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/brands", Method: "POST", Limit: 100},
		{Path: "/brands/", Method: "POST", Limit: 2},
	}

	exact := MatchEndpoint("/brands", "POST", configs)
	require.NotNil(t, exact)
	assert.Equal(t, 100, exact.Limit)

	prefix := MatchEndpoint("/brands/abc/evaluations", "POST", configs)
	require.NotNil(t, prefix)
	assert.Equal(t, 2, prefix.Limit)

	assert.Nil(t, MatchEndpoint("/brands/abc", "GET", configs))

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.Limit, "health checks are unlimited")
}

func TestTokenBucket_Refills(t *testing.T) {
	// 100 tokens/sec so the refill is observable without a long sleep.
	tb := newTokenBucket(1, 100)

	require.True(t, tb.allow())
	require.False(t, tb.allow())

	time.Sleep(50 * time.Millisecond)
	assert.True(t, tb.allow(), "bucket refills over time")
}
