package resolver

import (
	"context"
	"regexp"
	"strings"

	"qrportal/internal/model"
	"qrportal/internal/store"

	"go.uber.org/zap"
)

// MaxAliasLength 与 qr_codes.alias 列宽一致
const MaxAliasLength = 191

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Resolver 路由读取二维码记录的唯一入口，不产生副作用
type Resolver struct {
	store  store.RecordStore
	logger *zap.SugaredLogger
}

func New(s store.RecordStore, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{store: s, logger: logger.Named("resolver")}
}

// ValidAlias 判断别名格式是否合法
func ValidAlias(alias string) bool {
	return len(alias) <= MaxAliasLength && aliasPattern.MatchString(alias)
}

// Resolve 按别名查找记录；空别名或非法字符直接返回 store.ErrNotFound
func (r *Resolver) Resolve(ctx context.Context, alias string) (*model.QRCode, error) {
	alias = strings.TrimSpace(alias)
	if !ValidAlias(alias) {
		return nil, store.ErrNotFound
	}
	q, err := r.store.FindByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	r.logger.Debugw("别名解析成功", "alias", alias, "qr_id", q.ID)
	return q, nil
}

// ResolveID 按ID查找记录，供落地页与图片下载使用
func (r *Resolver) ResolveID(ctx context.Context, id uint) (*model.QRCode, error) {
	if id == 0 {
		return nil, store.ErrNotFound
	}
	return r.store.FindByID(ctx, id)
}
