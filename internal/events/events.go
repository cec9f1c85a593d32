package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qrportal/internal/config"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanMessage 扫码事件的消息体
type ScanMessage struct {
	QRID      uint      `json:"qr_id"`
	OwnerID   uint      `json:"owner_id"`
	Alias     string    `json:"alias"`
	ScannedAt time.Time `json:"scanned_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
}

// Publisher 扫码记录器只依赖发布能力
type Publisher interface {
	PublishScan(ctx context.Context, msg ScanMessage) error
}

// ScanHandler 订阅方处理函数
type ScanHandler func(ctx context.Context, msg ScanMessage) error

// NopPublisher 事件总线关闭时使用
type NopPublisher struct{}

func (NopPublisher) PublishScan(context.Context, ScanMessage) error { return nil }

// Bus 基于 watermill gochannel 的进程内事件总线
type Bus struct {
	pubsub *gochannel.GoChannel
	topic  string
	logger *zap.SugaredLogger
}

// NewBus 创建事件总线
func NewBus(cfg *config.Events, logger *zap.SugaredLogger) *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            int64(cfg.BufferSize),
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		NewZapAdapter(logger),
	)
	return &Bus{pubsub: pubSub, topic: cfg.Topic, logger: logger.Named("event_bus")}
}

// PublishScan 发布扫码事件，没有订阅者时消息直接丢弃
func (b *Bus) PublishScan(ctx context.Context, msg ScanMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化扫码事件失败: %w", err)
	}
	m := message.NewMessage(uuid.NewString(), payload)
	m.Metadata.Set("event_type", b.topic)
	m.SetContext(ctx)
	if err := b.pubsub.Publish(b.topic, m); err != nil {
		return fmt.Errorf("发布扫码事件失败: %w", err)
	}
	return nil
}

// Subscribe 在后台消费扫码事件，ctx 取消后停止；处理失败只记录日志并确认消息
func (b *Bus) Subscribe(ctx context.Context, name string, handler ScanHandler) error {
	messages, err := b.pubsub.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("订阅扫码事件失败: %w", err)
	}

	go func() {
		for m := range messages {
			var msg ScanMessage
			if err := json.Unmarshal(m.Payload, &msg); err != nil {
				b.logger.Errorf("[%s] 解析扫码事件失败: %v", name, err)
				m.Ack()
				continue
			}
			if err := handler(ctx, msg); err != nil {
				b.logger.Errorf("[%s] 处理扫码事件失败 qr_id=%d: %v", name, msg.QRID, err)
			}
			m.Ack()
		}
		b.logger.Infof("[%s] 已停止消费扫码事件", name)
	}()
	return nil
}

// Close 关闭总线，所有订阅通道随之关闭
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
