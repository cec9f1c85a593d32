package handler

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"qrportal/internal/middleware"
	"qrportal/internal/model"
	"qrportal/internal/qrimage"
	"qrportal/internal/render"
	"qrportal/internal/resolver"
	"qrportal/internal/shortcode"
	"qrportal/internal/stats"
	"qrportal/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90
)

// QRCodeHandler 二维码所有者的管理接口
type QRCodeHandler struct {
	store         store.RecordStore
	codeGenerator *shortcode.Generator
	images        *qrimage.Writer
	renderer      *render.Renderer
	counter       *stats.Counter
	logger        *zap.SugaredLogger
	now           func() time.Time
}

// NewQRCodeHandler images 与 counter 可以为 nil
func NewQRCodeHandler(
	s store.RecordStore,
	codeGenerator *shortcode.Generator,
	images *qrimage.Writer,
	renderer *render.Renderer,
	counter *stats.Counter,
	logger *zap.SugaredLogger,
) *QRCodeHandler {
	return &QRCodeHandler{
		store:         s,
		codeGenerator: codeGenerator,
		images:        images,
		renderer:      renderer,
		counter:       counter,
		logger:        logger.Named("qrcode"),
		now:           time.Now,
	}
}

// HealthCheck 健康检查
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// CreateQRCodeRequest 创建二维码请求，alias 为空时自动生成
type CreateQRCodeRequest struct {
	Alias       string            `json:"alias" binding:"omitempty,max=191" example:"spring-menu"`
	Name        string            `json:"name" binding:"max=200" example:"春季菜单"`
	ContentType model.ContentType `json:"content_type" example:"link"`
	TargetURL   string            `json:"target_url" example:"example.com/menu"`
	Payload     string            `json:"payload"`
	StartAt     *time.Time        `json:"start_at"`
	EndAt       *time.Time        `json:"end_at"`
	ScanLimit   int64             `json:"scan_limit" binding:"min=0"`
	TitleTop    string            `json:"title_top" binding:"max=200"`
	TitleBottom string            `json:"title_bottom" binding:"max=200"`
	TitleFontPx int               `json:"title_font_px" binding:"min=0"`
}

// UpdateQRCodeRequest 只更新提供的字段，别名不可修改
type UpdateQRCodeRequest struct {
	Name          *string            `json:"name" binding:"omitempty,max=200"`
	ContentType   *model.ContentType `json:"content_type"`
	TargetURL     *string            `json:"target_url"`
	Payload       *string            `json:"payload"`
	StartAt       *time.Time         `json:"start_at"`
	EndAt         *time.Time         `json:"end_at"`
	ClearSchedule bool               `json:"clear_schedule"`
	ScanLimit     *int64             `json:"scan_limit" binding:"omitempty,min=0"`
	TitleTop      *string            `json:"title_top" binding:"omitempty,max=200"`
	TitleBottom   *string            `json:"title_bottom" binding:"omitempty,max=200"`
	TitleFontPx   *int               `json:"title_font_px" binding:"omitempty,min=0"`
}

// QRCodeResponse 二维码及其短链接
type QRCodeResponse struct {
	*model.QRCode
	ShortLink string `json:"short_link" example:"http://localhost:8080/r/spring-menu"`
}

// QRStatsResponse 单个二维码的扫码统计
type QRStatsResponse struct {
	QRID   uint               `json:"qr_id"`
	Alias  string             `json:"alias"`
	Total  int64              `json:"total"`
	Daily  []stats.DailyCount `json:"daily"`
	Source string             `json:"source" example:"database"`
}

func (h *QRCodeHandler) toResponse(q *model.QRCode) QRCodeResponse {
	return QRCodeResponse{QRCode: q, ShortLink: h.renderer.ShortLink(q.Alias)}
}

// CreateQRCode godoc
// @Summary 创建二维码
// @Description 创建一个动态二维码，未指定别名时自动生成
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   qrcode  body   CreateQRCodeRequest  true  "二维码信息"
// @Success 201 {object} QRCodeResponse "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 409 {object} gin.H "别名已被使用"
// @Failure 500 {object} gin.H "服务器内部错误"
// @Router /api/qrcodes [post]
func (h *QRCodeHandler) CreateQRCode(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return
	}

	var req CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}
	if req.ContentType == "" {
		req.ContentType = model.ContentLink
	}
	if !req.ContentType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的内容类型"})
		return
	}
	if !validSchedule(req.StartAt, req.EndAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "结束时间不能早于开始时间"})
		return
	}

	ctx := c.Request.Context()
	alias := req.Alias
	if alias != "" {
		if !resolver.ValidAlias(alias) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "别名只能包含字母、数字、下划线和短横线"})
			return
		}
		exists, err := h.store.AliasExists(ctx, alias)
		if err != nil {
			h.logger.Errorf("检查别名失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "创建二维码失败"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "别名已被使用"})
			return
		}
	} else {
		code, err := h.codeGenerator.GetCode(ctx)
		if err != nil {
			h.logger.Errorf("生成别名失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "生成别名失败，请稍后重试"})
			return
		}
		alias = code
	}

	q := &model.QRCode{
		Alias:       alias,
		OwnerID:     principal.UserID,
		Name:        req.Name,
		Status:      model.StatusActive,
		ContentType: req.ContentType,
		TargetURL:   req.TargetURL,
		Payload:     req.Payload,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ScanLimit:   req.ScanLimit,
		TitleTop:    req.TitleTop,
		TitleBottom: req.TitleBottom,
		TitleFontPx: req.TitleFontPx,
	}
	if err := h.store.Create(ctx, q); err != nil {
		// 并发创建同一别名时由唯一索引兜底
		if errors.Is(err, store.ErrAliasTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "别名已被使用"})
			return
		}
		h.logger.Errorf("创建二维码失败 alias=%s: %v", alias, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建二维码失败"})
		return
	}

	// 图片生成失败不影响二维码本身可用
	if h.images != nil {
		path, err := h.images.Write(q.ID, h.renderer.ShortLink(q.Alias))
		if err != nil {
			h.logger.Warnf("生成二维码图片失败 id=%d: %v", q.ID, err)
		} else if err := h.store.Update(ctx, q.ID, map[string]interface{}{"image_path": path}); err != nil {
			h.logger.Warnf("保存二维码图片路径失败 id=%d: %v", q.ID, err)
		} else {
			q.ImagePath = path
		}
	}

	c.JSON(http.StatusCreated, h.toResponse(q))
}

// ListQRCodes godoc
// @Summary 我的二维码
// @Description 列出当前用户创建的全部二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {array} QRCodeResponse "成功响应"
// @Failure 401 {object} gin.H "未认证"
// @Router /api/qrcodes [get]
func (h *QRCodeHandler) ListQRCodes(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return
	}

	list, err := h.store.ListByOwner(c.Request.Context(), principal.UserID)
	if err != nil {
		h.logger.Errorf("获取二维码列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取二维码列表失败"})
		return
	}

	resp := make([]QRCodeResponse, 0, len(list))
	for i := range list {
		resp = append(resp, h.toResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetQRCode godoc
// @Summary 二维码详情
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "二维码ID"
// @Success 200 {object} QRCodeResponse "成功响应"
// @Failure 403 {object} gin.H "无权访问"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/qrcodes/{id} [get]
func (h *QRCodeHandler) GetQRCode(c *gin.Context) {
	q, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.toResponse(q))
}

// UpdateQRCode godoc
// @Summary 修改二维码
// @Description 修改跳转目标、内容、时间窗口与次数上限，别名不可修改
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id      path  int                  true  "二维码ID"
// @Param   qrcode  body  UpdateQRCodeRequest  true  "要修改的字段"
// @Success 200 {object} QRCodeResponse "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 403 {object} gin.H "无权访问"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/qrcodes/{id} [put]
func (h *QRCodeHandler) UpdateQRCode(c *gin.Context) {
	q, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req UpdateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ContentType != nil {
		if !req.ContentType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的内容类型"})
			return
		}
		fields["content_type"] = *req.ContentType
	}
	if req.TargetURL != nil {
		fields["target_url"] = *req.TargetURL
	}
	if req.Payload != nil {
		fields["payload"] = *req.Payload
	}
	if req.ScanLimit != nil {
		fields["scan_limit"] = *req.ScanLimit
	}
	if req.TitleTop != nil {
		fields["title_top"] = *req.TitleTop
	}
	if req.TitleBottom != nil {
		fields["title_bottom"] = *req.TitleBottom
	}
	if req.TitleFontPx != nil {
		fields["title_font_px"] = *req.TitleFontPx
	}

	startAt, endAt := q.StartAt, q.EndAt
	if req.ClearSchedule {
		startAt, endAt = nil, nil
		fields["start_at"] = nil
		fields["end_at"] = nil
	}
	if req.StartAt != nil {
		startAt = req.StartAt
		fields["start_at"] = *req.StartAt
	}
	if req.EndAt != nil {
		endAt = req.EndAt
		fields["end_at"] = *req.EndAt
	}
	if !validSchedule(startAt, endAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "结束时间不能早于开始时间"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Update(ctx, q.ID, fields); err != nil {
		h.logger.Errorf("修改二维码失败 id=%d: %v", q.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "修改二维码失败"})
		return
	}

	updated, err := h.store.FindByID(ctx, q.ID)
	if err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(updated))
}

// ToggleQRCode godoc
// @Summary 暂停/恢复二维码
// @Description 被管理员暂停的二维码不能由所有者恢复
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "二维码ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 403 {object} gin.H "无权操作"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/qrcodes/{id}/toggle [put]
func (h *QRCodeHandler) ToggleQRCode(c *gin.Context) {
	q, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if q.AdminLocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "该二维码已被管理员暂停"})
		return
	}

	status := model.StatusPaused
	if q.Status != model.StatusActive {
		status = model.StatusActive
	}
	if err := h.store.SetStatus(c.Request.Context(), q.ID, status, false); err != nil {
		h.logger.Errorf("更新二维码状态失败 id=%d: %v", q.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新状态失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "状态更新成功", "id": q.ID, "status": status})
}

// DeleteQRCode godoc
// @Summary 删除二维码
// @Description 删除后别名立即失效且不会被再次使用
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "二维码ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 403 {object} gin.H "无权操作"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/qrcodes/{id} [delete]
func (h *QRCodeHandler) DeleteQRCode(c *gin.Context) {
	q, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), q.ID); err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	removeImage(h.logger, q)
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// GetQRStats godoc
// @Summary 扫码统计
// @Description 总扫码次数与最近若干天的按天统计
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id    path   int  true   "二维码ID"
// @Param   days  query  int  false  "统计天数，默认7，最多90"
// @Success 200 {object} QRStatsResponse "成功响应"
// @Failure 403 {object} gin.H "无权访问"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/qrcodes/{id}/stats [get]
func (h *QRCodeHandler) GetQRStats(c *gin.Context) {
	q, ok := h.loadOwned(c)
	if !ok {
		return
	}

	days := defaultStatsDays
	if n, err := strconv.Atoi(c.Query("days")); err == nil && n > 0 {
		days = n
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	ctx := c.Request.Context()
	now := h.now()
	resp := QRStatsResponse{QRID: q.ID, Alias: q.Alias, Total: q.ScanCount}

	if h.counter.Enabled() {
		daily, err := h.counter.Daily(ctx, q.ID, now, days)
		if err == nil {
			resp.Daily, resp.Source = daily, "redis"
			c.JSON(http.StatusOK, resp)
			return
		}
		h.logger.Warnf("读取 redis 统计失败，改用数据库 id=%d: %v", q.ID, err)
	}

	y, m, d := now.AddDate(0, 0, -(days - 1)).Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	times, err := h.store.ScanTimes(ctx, q.ID, since)
	if err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	resp.Daily, resp.Source = stats.BucketDaily(times, now, days), "database"
	c.JSON(http.StatusOK, resp)
}

// loadOwned 读取路径中的二维码并确认归当前用户所有
func (h *QRCodeHandler) loadOwned(c *gin.Context) (*model.QRCode, bool) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return nil, false
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return nil, false
	}

	q, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, h.logger, err)
		return nil, false
	}
	if q.OwnerID != principal.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权访问该二维码"})
		return nil, false
	}
	return q, true
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func validSchedule(startAt, endAt *time.Time) bool {
	return startAt == nil || endAt == nil || !endAt.Before(*startAt)
}

func writeStoreError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "二维码不存在"})
		return
	}
	logger.Errorf("存储操作失败 path=%s: %v", c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
}

func removeImage(logger *zap.SugaredLogger, q *model.QRCode) {
	if q.ImagePath == "" {
		return
	}
	if err := os.Remove(q.ImagePath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("删除二维码图片失败 id=%d: %v", q.ID, err)
	}
}
