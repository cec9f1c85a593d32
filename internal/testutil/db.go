package testutil

import (
	"fmt"
	"testing"

	"qrportal/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 为每个测试创建独立的内存数据库并完成迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "无法连接到内存数据库")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite 内存库并发写入会锁表，测试中串行化连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.QRCode{}, &model.ScanEvent{}))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser 创建测试用户
func CreateUser(t *testing.T, db *gorm.DB, username string, role string, qrPaused bool) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true, QRPaused: qrPaused}
	require.NoError(t, u.SetPassword("password"))
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateQR 创建测试二维码，未设置的字段使用可访问的默认值
func CreateQR(t *testing.T, db *gorm.DB, q *model.QRCode) *model.QRCode {
	t.Helper()
	if q.Status == "" {
		q.Status = model.StatusActive
	}
	if q.ContentType == "" {
		q.ContentType = model.ContentLink
	}
	require.NoError(t, db.Create(q).Error)
	return q
}
