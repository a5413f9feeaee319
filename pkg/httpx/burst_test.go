package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBurstLimiterEvictsIdleEntries(t *testing.T) {
	bl := newBurstLimiter(BurstConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10})

	now := time.Now()
	bl.now = func() time.Time { return now }

	require.True(t, bl.get("203.0.113.1").Allow())
	require.True(t, bl.get("203.0.113.2").Allow())
	require.Len(t, bl.entries, 2)

	// Keep one client active within the idle TTL, then advance past it so
	// the next request triggers a sweep.
	now = now.Add(2 * time.Minute)
	bl.get("203.0.113.1")
	now = now.Add(2 * time.Minute)
	bl.get("203.0.113.3")

	bl.mu.Lock()
	defer bl.mu.Unlock()
	require.Contains(t, bl.entries, "203.0.113.1", "recently active bucket must survive the sweep")
	require.NotContains(t, bl.entries, "203.0.113.2", "idle bucket must be evicted")
	require.Contains(t, bl.entries, "203.0.113.3")
}
