// Package policy 决定一次扫码请求是否放行。
//
// 检查顺序固定：用户暂停 -> 记录状态 -> 开始时间 -> 结束时间 -> 次数上限，
// 第一个不满足的条件决定响应，后续条件不再检查。
package policy

import (
	"net/http"
	"time"

	"qrportal/internal/model"
)

// Kind 判定结果类型
type Kind int

const (
	Allowed Kind = iota
	OwnerPaused
	RecordPaused
	NotStarted
	Expired
	LimitReached
)

var kindNames = map[Kind]string{
	Allowed:      "allowed",
	OwnerPaused:  "owner_paused",
	RecordPaused: "record_paused",
	NotStarted:   "not_started",
	Expired:      "expired",
	LimitReached: "limit_reached",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus 判定结果对应的状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case Allowed:
		return http.StatusOK
	case OwnerPaused, NotStarted:
		return http.StatusForbidden
	case RecordPaused, Expired:
		return http.StatusGone
	case LimitReached:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message 拒绝时返回给扫码者的文案
func (k Kind) Message() string {
	switch k {
	case OwnerPaused:
		return "User Paused by Admin"
	case RecordPaused:
		return "QR Paused"
	case NotStarted:
		return "QR Not Started"
	case Expired:
		return "QR Ended"
	case LimitReached:
		return "Scan Limit Reached"
	default:
		return ""
	}
}

// Verdict 单次判定结果，Allowed 时携带跳转目标
type Verdict struct {
	Kind   Kind
	Target string
}

// Allowed 是否放行
func (v Verdict) Allowed() bool {
	return v.Kind == Allowed
}

// Evaluate 纯函数，不访问存储
func Evaluate(q *model.QRCode, now time.Time, ownerPaused bool) Verdict {
	switch {
	case ownerPaused:
		return Verdict{Kind: OwnerPaused}
	case q.Status != model.StatusActive:
		return Verdict{Kind: RecordPaused}
	case q.StartAt != nil && now.Before(*q.StartAt):
		return Verdict{Kind: NotStarted}
	case q.EndAt != nil && now.After(*q.EndAt):
		return Verdict{Kind: Expired}
	case q.ScanLimit > 0 && q.ScanCount >= q.ScanLimit:
		return Verdict{Kind: LimitReached}
	}
	return Verdict{Kind: Allowed, Target: q.Target()}
}
