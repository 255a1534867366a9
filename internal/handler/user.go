package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/gunantos/miniapp-telegram/internal/middleware"
	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/service"
	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// telegramAuthRequest Telegram 登录请求体
type telegramAuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// TelegramAuth Mini App 登录
// 校验 initData 签名，按 Telegram ID 建号或同步资料，返回 JWT
func (h *Handler) TelegramAuth(c *gin.Context) {
	var req telegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误")
		return
	}

	tgUser, err := h.Telegram.ValidateInitData(req.InitData)
	if err != nil {
		if errors.Is(err, service.ErrInitDataExpired) {
			utils.Unauthorized(c, "登录凭据已过期，请重新打开应用")
			return
		}
		utils.Unauthorized(c, "登录校验失败")
		return
	}

	name := tgUser.FirstName
	if tgUser.LastName != "" {
		name += " " + tgUser.LastName
	}
	if name == "" {
		name = fmt.Sprintf("User_%d", tgUser.ID)
	}

	user := &model.User{
		TelegramID:           tgUser.ID,
		TelegramUsername:     tgUser.Username,
		TelegramFirstName:    tgUser.FirstName,
		TelegramLastName:     tgUser.LastName,
		TelegramIsBot:        tgUser.IsBot,
		TelegramLanguageCode: tgUser.LanguageCode,
		TelegramPhotoURL:     tgUser.PhotoURL,
		Name:                 name,
		Email:                fmt.Sprintf("user_%d@telegram.local", tgUser.ID),
	}
	if err := h.Repos.User.UpsertByTelegramID(user); err != nil {
		log.Printf("[用户] 保存用户失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.TelegramID, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	// Cookie + Session 双写，接口调用和页面跳转都能识别登录态
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)
	if err := middleware.SaveSessionUser(c, user); err != nil {
		log.Printf("[用户] 保存 Session 失败: %v", err)
	}

	utils.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me 当前登录用户信息
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.Repos.User.FindByID(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.Unauthorized(c, "")
		return
	}
	utils.Success(c, user)
}

// GetHistory 观看历史列表
func (h *Handler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePaging(c)

	histories, total, err := h.Repos.History.ListByUser(userID, page, limit)
	if err != nil {
		log.Printf("[用户] 查询观看历史失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.SuccessPaged(c, histories, utils.NewPagination(page, limit, total))
}

// historyRequest 观看进度上报请求体
type historyRequest struct {
	VideoID      uint    `json:"videoId" binding:"required"`
	SerialPartID *uint   `json:"serialPartId"`
	Progress     float64 `json:"progress" binding:"min=0"`
	Duration     float64 `json:"duration" binding:"min=0"`
}

// SaveHistory 上报观看进度
// 同一 (视频, 剧集) 只保留一条记录，进度覆盖更新
func (h *Handler) SaveHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误")
		return
	}

	video, err := h.Repos.Video.FindByID(req.VideoID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	if req.SerialPartID != nil {
		part, err := h.Repos.SerialPart.FindByID(*req.SerialPartID)
		if err != nil {
			utils.InternalServerError(c, "")
			return
		}
		if part == nil || part.SerialID != video.ID {
			utils.BadRequest(c, "剧集不存在")
			return
		}
	}

	history := &model.WatchHistory{
		UserID:       userID,
		VideoID:      req.VideoID,
		SerialPartID: req.SerialPartID,
		Progress:     req.Progress,
		Duration:     req.Duration,
	}
	if err := h.Repos.History.Upsert(history); err != nil {
		log.Printf("[用户] 保存观看历史失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, history)
}

// DeleteHistory 删除一条观看历史
func (h *Handler) DeleteHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	historyID, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的记录 ID")
		return
	}

	if err := h.Repos.History.Delete(userID, historyID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.SuccessWithMessage(c, "已删除", nil)
}

// ClearHistory 清空观看历史
func (h *Handler) ClearHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.Repos.History.Clear(userID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.SuccessWithMessage(c, "已清空", nil)
}

// GetPreferences 用户偏好
func (h *Handler) GetPreferences(c *gin.Context) {
	userID := middleware.GetUserID(c)
	pref, err := h.Repos.Preference.Get(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, pref)
}

// preferenceRequest 偏好设置请求体
type preferenceRequest struct {
	Theme         string `json:"theme" binding:"required,oneof=light dark"`
	Language      string `json:"language" binding:"required"`
	Quality       string `json:"quality" binding:"required,oneof=auto 360p 480p 720p 1080p"`
	Autoplay      *bool  `json:"autoplay" binding:"required"`
	Notifications *bool  `json:"notifications" binding:"required"`
}

// UpdatePreferences 保存用户偏好
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误")
		return
	}

	pref := &model.UserPreference{
		UserID:        userID,
		Theme:         req.Theme,
		Language:      req.Language,
		Quality:       req.Quality,
		Autoplay:      *req.Autoplay,
		Notifications: *req.Notifications,
	}
	if err := h.Repos.Preference.Upsert(pref); err != nil {
		log.Printf("[用户] 保存偏好失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, pref)
}
