package handler

import (
	"log"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/repository"
	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// adminLoginRequest 管理员登录请求体
type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录，密码比对通过后下发管理 Token
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误")
		return
	}

	if h.Config.AdminPasswordHash == "" {
		utils.Forbidden(c, "未配置管理员密码")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.Config.AdminPasswordHash), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "密码错误")
		return
	}

	utils.Success(c, gin.H{
		"token": h.Config.AdminToken,
	})
}

// RunImport 触发一次目录导入
func (h *Handler) RunImport(c *gin.Context) {
	summary, err := h.Importer.Run(c.Request.Context())
	if err != nil {
		log.Printf("[管理] 导入失败: %v", err)
		utils.InternalServerError(c, "导入失败")
		return
	}

	utils.SuccessWithMessage(c, "导入完成", summary)
}

// ScrapeStats 导入统计
func (h *Handler) ScrapeStats(c *gin.Context) {
	stats, err := h.Repos.Video.Stats()
	if err != nil {
		log.Printf("[管理] 查询统计失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, stats)
}

// syncTelegramRequest 频道同步请求体，字段都可省略
type syncTelegramRequest struct {
	Limit    int    `json:"limit" binding:"min=0,max=100"`
	Category string `json:"category" binding:"omitempty,videocategory"`
}

// SyncTelegram 触发一次 Telegram 频道同步
func (h *Handler) SyncTelegram(c *gin.Context) {
	req := syncTelegramRequest{Limit: 50}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "请求参数错误: "+err.Error())
			return
		}
		if req.Limit == 0 {
			req.Limit = 50
		}
	}

	summary, err := h.Sync.Run(req.Limit, req.Category)
	if err != nil {
		log.Printf("[管理] 频道同步失败: %v", err)
		utils.InternalServerError(c, "频道同步失败")
		return
	}

	utils.SuccessWithMessage(c, "同步完成", summary)
}

// SyncStats 频道同步统计
func (h *Handler) SyncStats(c *gin.Context) {
	stats, err := h.Repos.Video.StatsBySource()
	if err != nil {
		log.Printf("[管理] 查询同步统计失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, stats)
}

// adminVideoRequest 管理后台的视频创建/编辑请求体
type adminVideoRequest struct {
	Title          string  `json:"title" binding:"required,max=500"`
	Description    string  `json:"description"`
	ThumbnailID    string  `json:"thumbnailId"`
	ThumbnailURL   string  `json:"thumbnailUrl"`
	Status         string  `json:"status" binding:"required,oneof=DRAFT PUBLISH"`
	Category       string  `json:"category" binding:"required,videocategory"`
	VideoSource    string  `json:"videoSource" binding:"required,oneof=TELEGRAM WEBSITE"`
	VideoURL       string  `json:"videoUrl"`
	TelegramFileID string  `json:"telegramFileId"`
	Duration       float64 `json:"duration" binding:"min=0"`
}

// AdminListVideos 管理后台视频列表（不过滤状态）
func (h *Handler) AdminListVideos(c *gin.Context) {
	page, limit := parsePaging(c)
	videos, total, err := h.Repos.Video.ListAdmin(repository.ListOptions{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.SuccessPaged(c, videos, utils.NewPagination(page, limit, total))
}

// AdminCreateVideo 新建视频
func (h *Handler) AdminCreateVideo(c *gin.Context) {
	var req adminVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 来源和播放源要能对上
	if req.VideoSource == model.SourceWebsite && req.VideoURL == "" {
		utils.BadRequest(c, "WEBSITE 来源必须提供 videoUrl")
		return
	}
	if req.VideoSource == model.SourceTelegram && req.TelegramFileID == "" {
		utils.BadRequest(c, "TELEGRAM 来源必须提供 telegramFileId")
		return
	}

	video := &model.Video{
		Title:          req.Title,
		Description:    req.Description,
		ThumbnailID:    req.ThumbnailID,
		ThumbnailURL:   req.ThumbnailURL,
		Status:         req.Status,
		Category:       req.Category,
		VideoSource:    req.VideoSource,
		VideoURL:       req.VideoURL,
		TelegramFileID: req.TelegramFileID,
		Duration:       req.Duration,
		IsActive:       true,
	}
	if err := h.Repos.Video.Create(video); err != nil {
		log.Printf("[管理] 创建视频失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.SuccessWithMessage(c, "创建成功", video)
}

// AdminUpdateVideo 编辑视频
func (h *Handler) AdminUpdateVideo(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	existing, err := h.Repos.Video.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	var req adminVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	fields := map[string]interface{}{
		"title":            req.Title,
		"description":      req.Description,
		"thumbnail_id":     req.ThumbnailID,
		"thumbnail_url":    req.ThumbnailURL,
		"status":           req.Status,
		"category":         req.Category,
		"video_source":     req.VideoSource,
		"video_url":        req.VideoURL,
		"telegram_file_id": req.TelegramFileID,
		"duration":         req.Duration,
	}
	if err := h.Repos.Video.Update(id, fields); err != nil {
		log.Printf("[管理] 更新视频失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	updated, _ := h.Repos.Video.FindByID(id)
	utils.SuccessWithMessage(c, "更新成功", updated)
}

// AdminDeleteVideo 删除视频
func (h *Handler) AdminDeleteVideo(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	if err := h.Repos.Video.Delete(id); err != nil {
		log.Printf("[管理] 删除视频失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	utils.SuccessWithMessage(c, "已删除", nil)
}

// AdminListParts 视频的剧集列表
func (h *Handler) AdminListParts(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	parts, err := h.Repos.SerialPart.ListBySerial(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, parts)
}

// adminPartRequest 剧集编辑请求体
type adminPartRequest struct {
	VideoFileID  string `json:"videoFileId" binding:"required"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SeasonNumber int    `json:"seasonNumber" binding:"min=1"`
	EpisodeLabel string `json:"episodeLabel"`
	AirDate      string `json:"airDate"`
}

// AdminUpdatePart 编辑剧集
func (h *Handler) AdminUpdatePart(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的剧集 ID")
		return
	}

	part, err := h.Repos.SerialPart.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if part == nil {
		utils.NotFound(c, "剧集不存在")
		return
	}

	var req adminPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	fields := map[string]interface{}{
		"video_file_id": req.VideoFileID,
		"title":         req.Title,
		"thumbnail_url": req.ThumbnailURL,
		"season_number": req.SeasonNumber,
		"episode_label": req.EpisodeLabel,
		"air_date":      req.AirDate,
	}
	if err := h.Repos.SerialPart.Update(id, fields); err != nil {
		log.Printf("[管理] 更新剧集失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	updated, _ := h.Repos.SerialPart.FindByID(id)
	utils.SuccessWithMessage(c, "更新成功", updated)
}
