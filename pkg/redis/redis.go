package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"qrportal/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	poolSize    = 20
	dialTimeout = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// NewClient 按缓存配置创建客户端并测试连接；未配置 host 时返回 nil，表示不启用 redis
func NewClient(ctx context.Context, cfg *config.Cache) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败 %s: %w", client.Options().Addr, err)
	}

	return client, nil
}
