package handler

import (
	"errors"
	"net/http"

	"qrportal/internal/middleware"
	"qrportal/internal/model"
	"qrportal/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler 管理员接口
type AdminHandler struct {
	db     *gorm.DB
	store  store.RecordStore
	logger *zap.SugaredLogger
}

func NewAdminHandler(db *gorm.DB, s store.RecordStore, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{db: db, store: s, logger: logger.Named("admin")}
}

// SetStatusRequest 管理员强制暂停或恢复
type SetStatusRequest struct {
	Status model.QRStatus `json:"status" binding:"required,oneof=active paused" example:"paused"`
}

// PauseUserRequest 暂停或恢复用户的全部二维码
type PauseUserRequest struct {
	Paused *bool `json:"paused" binding:"required" example:"true"`
}

// GlobalStats 全站统计
type GlobalStats struct {
	TotalQRCodes  int64 `json:"total_qrcodes"`
	ActiveQRCodes int64 `json:"active_qrcodes"`
	PausedQRCodes int64 `json:"paused_qrcodes"`
	TotalScans    int64 `json:"total_scans"`
	TotalUsers    int64 `json:"total_users"`
	PausedUsers   int64 `json:"paused_users"`
}

// SetQRStatus godoc
// @Summary 强制暂停/恢复二维码
// @Description 管理员暂停后所有者无法自行恢复
// @Tags Admin
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id      path  int               true  "二维码ID"
// @Param   status  body  SetStatusRequest  true  "目标状态"
// @Success 200 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/admin/qrcodes/{id}/status [put]
func (h *AdminHandler) SetQRStatus(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindByID(ctx, id); err != nil {
		writeStoreError(c, h.logger, err)
		return
	}

	locked := req.Status == model.StatusPaused
	if err := h.store.SetStatus(ctx, id, req.Status, locked); err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	h.logger.Infow("管理员修改二维码状态", "qr_id", id, "status", req.Status, "admin_id", c.GetUint(middleware.ContextUserID))
	c.JSON(http.StatusOK, gin.H{"message": "状态更新成功", "id": id, "status": req.Status, "admin_locked": locked})
}

// DeleteQRCode godoc
// @Summary 删除任意二维码
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "二维码ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "二维码不存在"
// @Router /api/admin/qrcodes/{id} [delete]
func (h *AdminHandler) DeleteQRCode(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	ctx := c.Request.Context()
	q, err := h.store.FindByID(ctx, id)
	if err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	if err := h.store.Delete(ctx, id); err != nil {
		writeStoreError(c, h.logger, err)
		return
	}
	removeImage(h.logger, q)
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// PauseUser godoc
// @Summary 暂停/恢复用户
// @Description 暂停后该用户的全部二维码立即无法访问
// @Tags Admin
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id     path  int               true  "用户ID"
// @Param   pause  body  PauseUserRequest  true  "是否暂停"
// @Success 200 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 404 {object} gin.H "用户不存在"
// @Router /api/admin/users/{id}/pause [put]
func (h *AdminHandler) PauseUser(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}
	var req PauseUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
			return
		}
		h.logger.Errorf("查询用户失败 id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}

	if err := db.Model(&user).Update("qr_paused", *req.Paused).Error; err != nil {
		h.logger.Errorf("更新用户暂停状态失败 id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新失败"})
		return
	}
	h.logger.Infow("管理员修改用户暂停状态", "user_id", id, "paused", *req.Paused, "admin_id", c.GetUint(middleware.ContextUserID))
	c.JSON(http.StatusOK, gin.H{"message": "更新成功", "id": id, "qr_paused": *req.Paused})
}

// GetStats godoc
// @Summary 全站统计
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} GlobalStats "成功响应"
// @Failure 500 {object} gin.H "服务器内部错误"
// @Router /api/admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	var stats GlobalStats

	err := errors.Join(
		db.Model(&model.QRCode{}).Count(&stats.TotalQRCodes).Error,
		db.Model(&model.QRCode{}).Where("status = ?", model.StatusActive).Count(&stats.ActiveQRCodes).Error,
		db.Model(&model.QRCode{}).Where("status = ?", model.StatusPaused).Count(&stats.PausedQRCodes).Error,
		db.Model(&model.QRCode{}).Select("COALESCE(SUM(scan_count), 0)").Scan(&stats.TotalScans).Error,
		db.Model(&model.User{}).Count(&stats.TotalUsers).Error,
		db.Model(&model.User{}).Where("qr_paused = ?", true).Count(&stats.PausedUsers).Error,
	)
	if err != nil {
		h.logger.Errorf("获取统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计失败"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
