package handler

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/gunantos/miniapp-telegram/internal/middleware"
	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// GetLikes 点赞状态和数量
func (h *Handler) GetLikes(c *gin.Context) {
	videoID, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	count, err := h.Repos.Like.Count(videoID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	isLiked := false
	if userID := middleware.GetUserID(c); userID > 0 {
		isLiked, _ = h.Repos.Like.IsLiked(userID, videoID)
	}

	utils.Success(c, gin.H{
		"count":   count,
		"isLiked": isLiked,
	})
}

// ToggleLike 点赞/取消点赞
func (h *Handler) ToggleLike(c *gin.Context) {
	videoID, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}
	userID := middleware.GetUserID(c)

	video, err := h.Repos.Video.FindByID(videoID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	liked, err := h.Repos.Like.Toggle(userID, videoID)
	if err != nil {
		log.Printf("[互动] 点赞操作失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	count, _ := h.Repos.Like.Count(videoID)
	utils.Success(c, gin.H{
		"liked": liked,
		"count": count,
	})
}

// commentRequest 评论请求体
type commentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

// ListComments 评论列表，顶级最新在前，回复按时间正序
func (h *Handler) ListComments(c *gin.Context) {
	videoID, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	page, limit := parsePaging(c)
	comments, total, err := h.Repos.Comment.ListByVideo(videoID, page, limit)
	if err != nil {
		log.Printf("[互动] 查询评论失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.SuccessPaged(c, comments, utils.NewPagination(page, limit, total))
}

const maxCommentRunes = 1000

// normalizeComment 去掉首尾空白并检查长度
// 长度按字符数算，中文等多字节内容不能按字节截
func normalizeComment(raw string) (string, bool) {
	content := strings.TrimSpace(raw)
	if content == "" || utf8.RuneCountInString(content) > maxCommentRunes {
		return "", false
	}
	return content, true
}

// CreateComment 发表评论或回复
func (h *Handler) CreateComment(c *gin.Context) {
	videoID, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}
	userID := middleware.GetUserID(c)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数错误")
		return
	}

	content, ok := normalizeComment(req.Content)
	if !ok {
		utils.BadRequest(c, "评论内容应在 1-1000 个字符之间")
		return
	}

	video, err := h.Repos.Video.FindByID(videoID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	// 回复必须挂在同一个视频的已有评论下
	if req.ParentID != nil {
		parent, err := h.Repos.Comment.FindByID(*req.ParentID)
		if err != nil {
			utils.InternalServerError(c, "")
			return
		}
		if parent == nil || parent.VideoID != videoID {
			utils.BadRequest(c, "回复的评论不存在")
			return
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		VideoID:  videoID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := h.Repos.Comment.Create(comment); err != nil {
		log.Printf("[互动] 发表评论失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.SuccessWithMessage(c, "评论成功", comment)
}
