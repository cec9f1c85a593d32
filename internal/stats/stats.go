package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"qrportal/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dayLayout   = "2006-01-02"
	keyPrefix   = "qr:stats:"
	keepForDays = 90
)

// DailyCount 某一天的扫码次数
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// days 返回以 now 所在日期结尾的连续 n 天
func days(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, now.AddDate(0, 0, -i).Format(dayLayout))
	}
	return out
}

// BucketDaily 将扫码时间按天汇总，没有扫码的日期补 0
func BucketDaily(times []time.Time, now time.Time, n int) []DailyCount {
	counts := make(map[string]int64, n)
	for _, t := range times {
		counts[t.In(now.Location()).Format(dayLayout)]++
	}
	result := make([]DailyCount, 0, n)
	for _, day := range days(now, n) {
		result = append(result, DailyCount{Day: day, Count: counts[day]})
	}
	return result
}

// Counter 基于 redis hash 的按天计数，由扫码事件驱动
type Counter struct {
	rdb    *redis.Client
	logger *zap.SugaredLogger
}

// NewCounter rdb 为 nil 时 Enabled 返回 false
func NewCounter(rdb *redis.Client, logger *zap.SugaredLogger) *Counter {
	return &Counter{rdb: rdb, logger: logger.Named("stats")}
}

func (c *Counter) Enabled() bool {
	return c != nil && c.rdb != nil
}

func key(qrID uint) string {
	return keyPrefix + strconv.FormatUint(uint64(qrID), 10)
}

// HandleScan 事件总线回调
func (c *Counter) HandleScan(ctx context.Context, msg events.ScanMessage) error {
	if !c.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	k := key(msg.QRID)
	pipe := c.rdb.TxPipeline()
	pipe.HIncrBy(ctx, k, msg.ScannedAt.Local().Format(dayLayout), 1)
	pipe.Expire(ctx, k, keepForDays*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新按天扫码计数失败: %w", err)
	}
	return nil
}

// Daily 读取最近 n 天的计数
func (c *Counter) Daily(ctx context.Context, qrID uint, now time.Time, n int) ([]DailyCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	dayKeys := days(now, n)
	vals, err := c.rdb.HMGet(ctx, key(qrID), dayKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("读取按天扫码计数失败: %w", err)
	}
	result := make([]DailyCount, 0, n)
	for i, day := range dayKeys {
		var count int64
		if s, ok := vals[i].(string); ok {
			count, _ = strconv.ParseInt(s, 10, 64)
		}
		result = append(result, DailyCount{Day: day, Count: count})
	}
	return result, nil
}
