package stats

import (
	"context"
	"testing"
	"time"

	"qrportal/internal/events"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBucketDaily(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	times := []time.Time{
		now.Add(-time.Hour),
		now.Add(-2 * time.Hour),
		now.AddDate(0, 0, -2),
		now.AddDate(0, 0, -30),
	}

	got := BucketDaily(times, now, 3)
	assert.Equal(t, []DailyCount{
		{Day: "2026-10-13", Count: 1},
		{Day: "2026-10-14", Count: 0},
		{Day: "2026-10-15", Count: 2},
	}, got)
}

func TestCounter_DisabledWithoutRedis(t *testing.T) {
	c := NewCounter(nil, zap.NewNop().Sugar())
	assert.False(t, c.Enabled())
	assert.NoError(t, c.HandleScan(context.Background(), events.ScanMessage{QRID: 1, ScannedAt: time.Now()}))
}
