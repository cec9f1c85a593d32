package model

import (
	"time"

	"gorm.io/gorm"
)

// QRStatus 二维码状态
type QRStatus string

const (
	StatusActive QRStatus = "active"
	StatusPaused QRStatus = "paused"
)

// ContentType 二维码内容类型
type ContentType string

const (
	ContentLink  ContentType = "link"
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// ContentTypes 所有受支持的内容类型
var ContentTypes = []ContentType{ContentLink, ContentText, ContentImage, ContentVideo}

// Valid 判断是否为受支持的内容类型
func (t ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// QRCode 动态二维码记录
type QRCode struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Alias       string         `gorm:"size:191;uniqueIndex;not null" json:"alias"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"size:200" json:"name"`
	Status      QRStatus       `gorm:"size:20;default:'active';not null" json:"status"`
	AdminLocked bool           `gorm:"default:false" json:"admin_locked"`
	ContentType ContentType    `gorm:"size:20;default:'link'" json:"content_type"`
	TargetURL   string         `gorm:"type:text" json:"target_url"`
	Payload     string         `gorm:"type:text" json:"payload"`
	StartAt     *time.Time     `json:"start_at"`
	EndAt       *time.Time     `json:"end_at"`
	ScanLimit   int64          `gorm:"default:0" json:"scan_limit"`
	ScanCount   int64          `gorm:"default:0" json:"scan_count"`
	TitleTop    string         `gorm:"size:200" json:"title_top"`
	TitleBottom string         `gorm:"size:200" json:"title_bottom"`
	TitleFontPx int            `gorm:"default:0" json:"title_font_px"`
	ImagePath   string         `gorm:"size:500" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (QRCode) TableName() string {
	return "qr_codes"
}

// Kind 返回内容类型，空值按 link 处理
func (q *QRCode) Kind() ContentType {
	if q.ContentType == "" {
		return ContentLink
	}
	return q.ContentType
}

// Target link 类型的跳转目标，未设置 target_url 时退回 payload
func (q *QRCode) Target() string {
	if q.TargetURL != "" {
		return q.TargetURL
	}
	return q.Payload
}
