package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"qrportal/internal/middleware"
	"qrportal/internal/model"
	"qrportal/internal/policy"
	"qrportal/internal/render"
	"qrportal/internal/resolver"
	"qrportal/internal/scan"
	"qrportal/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxEntries = 500

// portalRequest 每个请求只提取一次，之后显式向下传递
type portalRequest struct {
	alias     string
	id        uint
	entries   bool
	principal *middleware.Principal
	meta      scan.ClientMeta
	now       time.Time
}

// PortalHandler 扫码入口：解析 -> 判定 -> 记录 -> 渲染
type PortalHandler struct {
	resolver *resolver.Resolver
	store    store.RecordStore
	recorder *scan.Recorder
	renderer *render.Renderer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewPortalHandler(
	res *resolver.Resolver,
	s store.RecordStore,
	recorder *scan.Recorder,
	renderer *render.Renderer,
	logger *zap.SugaredLogger,
) *PortalHandler {
	return &PortalHandler{
		resolver: res,
		store:    s,
		recorder: recorder,
		renderer: renderer,
		logger:   logger.Named("portal"),
		now:      time.Now,
	}
}

func (h *PortalHandler) newRequest(c *gin.Context) *portalRequest {
	req := &portalRequest{
		alias:     c.Param("alias"),
		entries:   c.Query("entries") == "1",
		principal: middleware.CurrentPrincipal(c),
		meta: scan.ClientMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
		},
		now: h.now(),
	}
	if alias, ok := c.GetQuery("rwqr_alias"); ok && req.alias == "" {
		req.alias = alias
	}
	// /qr/:id/image 以路径中的 id 为准
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("id")
	}
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		req.id = uint(id)
	}
	return req
}

// Redirect GET /r/:alias
func (h *PortalHandler) Redirect(c *gin.Context) {
	req := h.newRequest(c)
	q, err := h.resolver.Resolve(c.Request.Context(), req.alias)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.serve(c, req, q)
}

// Index GET /，带 rwqr_alias 参数时与 /r/:alias 相同
func (h *PortalHandler) Index(c *gin.Context) {
	if _, ok := c.GetQuery("rwqr_alias"); ok {
		h.Redirect(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service": "qr-portal",
		"docs":    "/swagger/index.html",
	})
}

// View GET /view?id=，entries=1 时仅二维码所有者可查看扫码记录
func (h *PortalHandler) View(c *gin.Context) {
	req := h.newRequest(c)
	ctx := c.Request.Context()

	q, err := h.resolver.ResolveID(ctx, req.id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if !req.entries {
		h.serve(c, req, q)
		return
	}

	// 先校验身份，再读取任何内容
	if req.principal == nil || req.principal.UserID != q.OwnerID {
		h.write(c, render.Forbidden())
		return
	}
	paused, err := h.store.IsOwnerPaused(ctx, q.OwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if paused {
		h.write(c, render.Message(policy.OwnerPaused.HTTPStatus(), policy.OwnerPaused.Message()))
		return
	}

	entries, err := h.store.ListScans(ctx, q.ID, maxEntries)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Infow("查看扫码记录", "qr_id", q.ID, "user_id", req.principal.UserID, "ip", req.meta.IP)
	c.JSON(http.StatusOK, gin.H{
		"qr_id":   q.ID,
		"alias":   q.Alias,
		"total":   q.ScanCount,
		"entries": entries,
	})
}

// Image GET /qr/:id/image 下载二维码图片，仅所有者或管理员可用
func (h *PortalHandler) Image(c *gin.Context) {
	req := h.newRequest(c)
	ctx := c.Request.Context()

	if req.principal == nil {
		h.write(c, render.Forbidden())
		return
	}

	q, err := h.resolver.ResolveID(ctx, req.id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.principal.UserID != q.OwnerID && !req.principal.IsAdmin() {
		h.write(c, render.Forbidden())
		return
	}

	paused, err := h.store.IsOwnerPaused(ctx, q.OwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if paused {
		h.write(c, render.Message(policy.OwnerPaused.HTTPStatus(), policy.OwnerPaused.Message()))
		return
	}

	if q.ImagePath == "" {
		h.write(c, render.NotFound())
		return
	}
	if info, err := os.Stat(q.ImagePath); err != nil || info.IsDir() {
		h.write(c, render.NotFound())
		return
	}

	c.Header("Content-Type", "image/png")
	c.FileAttachment(q.ImagePath, fmt.Sprintf("qr-%d.png", q.ID))
}

// serve 放行时恰好记录一次扫码；记录失败不返回任何内容
func (h *PortalHandler) serve(c *gin.Context, req *portalRequest, q *model.QRCode) {
	ctx := c.Request.Context()

	paused, err := h.store.IsOwnerPaused(ctx, q.OwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}

	verdict := policy.Evaluate(q, req.now, paused)
	if verdict.Allowed() {
		err := h.recorder.Record(ctx, q, q.Alias, req.meta)
		if errors.Is(err, store.ErrLimitReached) {
			// 读取记录之后、计数之前被其他请求用完了次数
			verdict = policy.Verdict{Kind: policy.LimitReached}
		} else if err != nil {
			h.fail(c, err)
			return
		}
	}
	h.write(c, h.renderer.Render(verdict, q))
}

func (h *PortalHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.write(c, render.NotFound())
		return
	}
	if errors.Is(err, context.Canceled) {
		h.logger.Warnf("请求已取消 path=%s: %v", c.Request.URL.Path, err)
	} else {
		h.logger.Errorf("处理扫码请求失败 path=%s: %v", c.Request.URL.Path, err)
	}
	_ = c.Error(err)
	h.write(c, render.ServerError())
}

func (h *PortalHandler) write(c *gin.Context, resp render.Response) {
	if resp.Location != "" {
		c.Redirect(resp.Status, resp.Location)
		return
	}
	c.Data(resp.Status, resp.ContentType, []byte(resp.Body))
}
