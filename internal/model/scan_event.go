package model

import (
	"time"
)

// ScanEvent 扫码记录，只追加不修改
type ScanEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	QRID      uint      `gorm:"column:qr_id;not null;index" json:"qr_id"`
	Alias     string    `gorm:"size:191;index" json:"alias"`
	ScannedAt time.Time `gorm:"not null;index" json:"scanned_at"`
	IP        string    `gorm:"size:45" json:"ip"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Referrer  string    `gorm:"type:text" json:"referrer"`
}

func (ScanEvent) TableName() string {
	return "scan_events"
}
