package scan

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"qrportal/internal/events"
	"qrportal/internal/model"
	"qrportal/internal/store"

	"go.uber.org/zap"
)

const (
	maxIPLength   = 45
	maxTextLength = 1024
)

// ClientMeta 扫码者的请求信息，由路由层提取后显式传入
type ClientMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

// Recorder 每个放行的请求恰好调用一次：写扫码日志并递增计数
type Recorder struct {
	store     store.RecordStore
	publisher events.Publisher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewRecorder publisher 为 nil 时不发布事件
func NewRecorder(s store.RecordStore, publisher events.Publisher, logger *zap.SugaredLogger) *Recorder {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Recorder{store: s, publisher: publisher, logger: logger.Named("scan_recorder"), now: time.Now}
}

// Record 存储失败时返回错误，调用方必须中止请求而不是继续返回内容
func (r *Recorder) Record(ctx context.Context, q *model.QRCode, alias string, meta ClientMeta) error {
	event := &model.ScanEvent{
		QRID:      q.ID,
		Alias:     alias,
		ScannedAt: r.now(),
		IP:        truncate(meta.IP, maxIPLength),
		UserAgent: truncate(meta.UserAgent, maxTextLength),
		Referrer:  truncate(meta.Referrer, maxTextLength),
	}
	if err := r.store.RecordScan(ctx, event); err != nil {
		return fmt.Errorf("记录扫码失败 qr_id=%d: %w", q.ID, err)
	}

	// 数据库是统计的唯一可信来源，事件发布失败不影响本次请求
	err := r.publisher.PublishScan(ctx, events.ScanMessage{
		QRID:      q.ID,
		OwnerID:   q.OwnerID,
		Alias:     alias,
		ScannedAt: event.ScannedAt,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Referrer:  event.Referrer,
	})
	if err != nil {
		r.logger.Warnf("发布扫码事件失败 qr_id=%d: %v", q.ID, err)
	}
	return nil
}

// truncate 按字节截断，但不会切断多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
