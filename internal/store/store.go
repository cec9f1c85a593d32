package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrportal/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在（包括已删除）
	ErrNotFound = errors.New("record not found")
	// ErrLimitReached 扫码次数已达上限，本次扫码未记录
	ErrLimitReached = errors.New("scan limit reached")
	// ErrAliasTaken 别名已被占用
	ErrAliasTaken = errors.New("alias already taken")
)

// RecordStore 二维码记录与扫码日志的持久化接口
type RecordStore interface {
	FindByAlias(ctx context.Context, alias string) (*model.QRCode, error)
	FindByID(ctx context.Context, id uint) (*model.QRCode, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
	IsOwnerPaused(ctx context.Context, ownerID uint) (bool, error)

	RecordScan(ctx context.Context, event *model.ScanEvent) error
	ListScans(ctx context.Context, qrID uint, limit int) ([]model.ScanEvent, error)
	ScanTimes(ctx context.Context, qrID uint, since time.Time) ([]time.Time, error)

	Create(ctx context.Context, q *model.QRCode) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SetStatus(ctx context.Context, id uint, status model.QRStatus, adminLocked bool) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]model.QRCode, error)
}

// gormStore 基于 gorm 的实现，cache 可以为 nil
type gormStore struct {
	db    *gorm.DB
	cache *AliasCache
}

// New 创建记录存储
func New(db *gorm.DB, cache *AliasCache) RecordStore {
	return &gormStore{db: db, cache: cache}
}

// FindByAlias 别名是路由的唯一查找入口；别名不可变，因此缓存 alias -> id 不会过期失效
func (s *gormStore) FindByAlias(ctx context.Context, alias string) (*model.QRCode, error) {
	if id, ok := s.cache.Get(ctx, alias); ok {
		q, err := s.FindByID(ctx, id)
		switch {
		case err == nil && q.Alias == alias:
			return q, nil
		case errors.Is(err, ErrNotFound):
			s.cache.Del(ctx, alias)
			return nil, ErrNotFound
		case err != nil:
			return nil, err
		}
	}

	var q model.QRCode
	if err := s.db.WithContext(ctx).Where("alias = ?", alias).First(&q).Error; err != nil {
		return nil, wrapFind(err, "按别名查询二维码失败")
	}
	s.cache.Set(ctx, alias, q.ID)
	return &q, nil
}

func (s *gormStore) FindByID(ctx context.Context, id uint) (*model.QRCode, error) {
	var q model.QRCode
	if err := s.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, wrapFind(err, "按ID查询二维码失败")
	}
	return &q, nil
}

// AliasExists 包含已删除的记录，已用过的别名不再复用
func (s *gormStore) AliasExists(ctx context.Context, alias string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&model.QRCode{}).Where("alias = ?", alias).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询别名失败: %w", err)
	}
	return count > 0, nil
}

// IsOwnerPaused 用户不存在时视为未暂停
func (s *gormStore) IsOwnerPaused(ctx context.Context, ownerID uint) (bool, error) {
	var u model.User
	err := s.db.WithContext(ctx).Select("id", "qr_paused").First(&u, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("查询用户暂停状态失败: %w", err)
	}
	return u.QRPaused, nil
}

// RecordScan 在同一事务中追加扫码日志并原子递增计数；达到上限时回滚并返回 ErrLimitReached
func (s *gormStore) RecordScan(ctx context.Context, event *model.ScanEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("写入扫码日志失败: %w", err)
		}
		// 次数上限在同一条 UPDATE 中判断，并发请求不会超出上限
		result := tx.Model(&model.QRCode{}).
			Where("id = ? AND (scan_limit = 0 OR scan_count < scan_limit)", event.QRID).
			Update("scan_count", gorm.Expr("scan_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("更新扫码次数失败: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&model.QRCode{}).Where("id = ?", event.QRID).Count(&count).Error; err != nil {
			return fmt.Errorf("查询二维码失败: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrLimitReached
	})
}

// ListScans 按时间倒序列出扫码记录，limit <= 0 表示不限制
func (s *gormStore) ListScans(ctx context.Context, qrID uint, limit int) ([]model.ScanEvent, error) {
	var events []model.ScanEvent
	query := s.db.WithContext(ctx).Where("qr_id = ?", qrID).Order("scanned_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("查询扫码记录失败: %w", err)
	}
	return events, nil
}

func (s *gormStore) ScanTimes(ctx context.Context, qrID uint, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := s.db.WithContext(ctx).Model(&model.ScanEvent{}).
		Where("qr_id = ? AND scanned_at >= ?", qrID, since).
		Order("scanned_at ASC").
		Pluck("scanned_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("查询扫码时间失败: %w", err)
	}
	return times, nil
}

func (s *gormStore) Create(ctx context.Context, q *model.QRCode) error {
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAliasTaken
		}
		return fmt.Errorf("创建二维码失败: %w", err)
	}
	return nil
}

// Update 更新可变字段，alias 与 scan_count 不允许通过此处修改；调用方负责先确认记录存在
func (s *gormStore) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	delete(fields, "alias")
	delete(fields, "scan_count")
	if len(fields) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&model.QRCode{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("更新二维码失败: %w", err)
	}
	return nil
}

func (s *gormStore) SetStatus(ctx context.Context, id uint, status model.QRStatus, adminLocked bool) error {
	return s.Update(ctx, id, map[string]interface{}{"status": status, "admin_locked": adminLocked})
}

// Delete 软删除，删除后立即无法解析
func (s *gormStore) Delete(ctx context.Context, id uint) error {
	q, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&model.QRCode{}, id).Error; err != nil {
		return fmt.Errorf("删除二维码失败: %w", err)
	}
	s.cache.Del(ctx, q.Alias)
	return nil
}

func (s *gormStore) ListByOwner(ctx context.Context, ownerID uint) ([]model.QRCode, error) {
	var list []model.QRCode
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询二维码列表失败: %w", err)
	}
	return list, nil
}

func wrapFind(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
