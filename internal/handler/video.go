package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gunantos/miniapp-telegram/internal/middleware"
	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/repository"
	"github.com/gunantos/miniapp-telegram/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// 转发视频时单次写入的空闲超时，每写出一块就续期一次
	streamWriteTimeout = 30 * time.Second
	streamCopyChunk    = 64 * 1024
)

// parsePaging 解析分页参数
func parsePaging(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// ListVideos 视频列表
// 支持 category / search / sortBy / page / limit
func (h *Handler) ListVideos(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !model.IsValidCategory(category) {
		utils.BadRequest(c, "无效的分类: "+category)
		return
	}

	sortBy := c.DefaultQuery("sortBy", "latest")
	switch sortBy {
	case "latest", "oldest", "most_viewed", "least_viewed":
	default:
		utils.BadRequest(c, "无效的排序方式: "+sortBy)
		return
	}

	page, limit := parsePaging(c)

	videos, total, err := h.Repos.Video.List(repository.ListOptions{
		Category: category,
		Search:   strings.TrimSpace(c.Query("search")),
		SortBy:   sortBy,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("[视频] 查询列表失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.SuccessPaged(c, videos, utils.NewPagination(page, limit, total))
}

// GetVideo 视频详情，访问一次播放量 +1
func (h *Handler) GetVideo(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	video, err := h.Repos.Video.FindByID(id)
	if err != nil {
		log.Printf("[视频] 查询详情失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	// 播放量只管加，失败不影响返回
	if err := h.Repos.Video.IncrementViewCount(id); err != nil {
		log.Printf("[视频] 播放量更新失败: %v", err)
	} else {
		video.ViewCount++
	}

	likeCount, _ := h.Repos.Like.Count(id)
	commentCount, _ := h.Repos.Comment.CountByVideo(id)

	isLiked := false
	if userID := middleware.GetUserID(c); userID > 0 {
		isLiked, _ = h.Repos.Like.IsLiked(userID, id)
	}

	utils.Success(c, gin.H{
		"video":        video,
		"likeCount":    likeCount,
		"commentCount": commentCount,
		"isLiked":      isLiked,
	})
}

// RelatedVideos 相关视频推荐
func (h *Handler) RelatedVideos(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	video, err := h.Repos.Video.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	related, err := h.Similar.FindRelated(video, limit)
	if err != nil {
		log.Printf("[视频] 相关推荐失败: %v", err)
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, related)
}

// StreamVideo 播放入口
// 外链视频 302 跳转；Telegram 视频解析直链后代理转发，透传 Range
func (h *Handler) StreamVideo(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.BadRequest(c, "无效的视频 ID")
		return
	}

	video, err := h.Repos.Video.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "视频不存在")
		return
	}

	target := video.VideoURL
	fileID := video.TelegramFileID

	// 指定了剧集时用剧集的播放源
	if partParam := c.Query("part"); partParam != "" {
		partID, err := strconv.ParseUint(partParam, 10, 32)
		if err != nil {
			utils.BadRequest(c, "无效的剧集 ID")
			return
		}
		part, err := h.Repos.SerialPart.FindByID(uint(partID))
		if err != nil {
			utils.InternalServerError(c, "")
			return
		}
		if part == nil || part.SerialID != video.ID {
			utils.NotFound(c, "剧集不存在")
			return
		}

		if strings.HasPrefix(part.VideoFileID, "http") {
			target = part.VideoFileID
			fileID = ""
		} else {
			target = ""
			fileID = part.VideoFileID
		}

		if err := h.Repos.SerialPart.IncrementViewCount(part.ID); err != nil {
			log.Printf("[视频] 剧集播放量更新失败: %v", err)
		}
	}

	if video.VideoSource == model.SourceTelegram || (target == "" && fileID != "") {
		h.proxyTelegramFile(c, fileID)
		return
	}

	if target == "" {
		utils.NotFound(c, "没有可用的播放源")
		return
	}

	c.Redirect(http.StatusFound, target)
}

// proxyTelegramFile 代理转发 Telegram 文件
// 直链带 botToken 不能下发给客户端，只能由服务端转发
func (h *Handler) proxyTelegramFile(c *gin.Context, fileID string) {
	if fileID == "" {
		utils.NotFound(c, "没有可用的播放源")
		return
	}

	fileURL, err := h.Telegram.ResolveFileURL(fileID)
	if err != nil {
		log.Printf("[视频] 解析 Telegram 文件失败: %v", err)
		utils.InternalServerError(c, "播放源解析失败")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), "GET", fileURL, nil)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	// 透传 Range，支持拖动进度条
	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[视频] 拉取 Telegram 文件失败: %v", err)
		utils.InternalServerError(c, "播放源拉取失败")
		return
	}
	defer resp.Body.Close()


	for _, header := range []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges"} {
		if v := resp.Header.Get(header); v != "" {
			c.Header(header, v)
		}
	}
	c.Status(resp.StatusCode)
	if err := copyStream(c.Writer, resp.Body); err != nil {
		// 播放中断很常见，记一条就够
		log.Printf("[视频] 转发中断: %v", err)
	}
}

// copyStream 分块转发响应体
// 服务器全局 WriteTimeout 是按 JSON 接口设的，转发整个视频文件远不止 10 秒，
// 每写出一块就把本连接的写超时往后续期，只有写入停滞才会断开
func copyStream(w http.ResponseWriter, body io.Reader) error {
	rc := http.NewResponseController(w)
	buf := make([]byte, streamCopyChunk)

	for {
		if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			// 不支持续期的 ResponseWriter 只能按全局超时走
			return copyStreamPlain(w, body, buf)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func copyStreamPlain(w http.ResponseWriter, body io.Reader, buf []byte) error {
	_, err := io.CopyBuffer(w, body, buf)
	return err
}

// parseID 解析路径里的数字 ID
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
