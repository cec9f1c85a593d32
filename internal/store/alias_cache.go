package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const aliasKeyPrefix = "qr:alias:"

// AliasCache 缓存 alias -> 记录ID，nil 或未配置 redis 时所有操作为空操作
type AliasCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewAliasCache rdb 可以为 nil
func NewAliasCache(rdb *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *AliasCache {
	return &AliasCache{rdb: rdb, ttl: ttl, logger: logger.Named("alias_cache")}
}

func (c *AliasCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get 缓存未命中或出错时返回 false，错误只记录日志
func (c *AliasCache) Get(ctx context.Context, alias string) (uint, bool) {
	if !c.enabled() {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	val, err := c.rdb.Get(ctx, aliasKeyPrefix+alias).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("读取别名缓存失败: %v", err)
		}
		return 0, false
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (c *AliasCache) Set(ctx context.Context, alias string, id uint) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := c.rdb.Set(ctx, aliasKeyPrefix+alias, strconv.FormatUint(uint64(id), 10), c.ttl).Err(); err != nil {
		c.logger.Warnf("写入别名缓存失败: %v", err)
	}
}

func (c *AliasCache) Del(ctx context.Context, alias string) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.rdb.Del(ctx, aliasKeyPrefix+alias).Err(); err != nil {
		c.logger.Warnf("删除别名缓存失败: %v", err)
	}
}
