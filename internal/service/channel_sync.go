package service

import (
	"fmt"
	"log"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

// 时长分界：5 分钟以内归短剧，30 分钟以上归电影
const (
	shortDramaMaxSeconds = 300
	filmMinSeconds       = 1800
)

// ChannelSource 频道视频来源，测试时可替换
type ChannelSource interface {
	GetChannelVideos(limit int) ([]ChannelVideo, error)
}

// ChannelCatalog 同步写入目录的接口
type ChannelCatalog interface {
	FindByTelegramFile(fileID string) (*model.Video, error)
	Create(video *model.Video) error
	Update(id uint, fields map[string]interface{}) error
}

// SyncSummary 一次频道同步的统计结果
type SyncSummary struct {
	Imported int `json:"imported"` // 新建条数
	Updated  int `json:"updated"`  // 已存在、重新发布的条数
	Skipped  int `json:"skipped"`  // 处理失败跳过的条数
	Total    int `json:"total"`    // 频道里取到的视频总数
}

// ChannelSync 把 Telegram 频道里的视频同步进目录
type ChannelSync struct {
	source  ChannelSource
	catalog ChannelCatalog
}

func NewChannelSync(source ChannelSource, catalog ChannelCatalog) *ChannelSync {
	return &ChannelSync{source: source, catalog: catalog}
}

// Run 执行一次同步
// category 为空时按时长推断分类；单条失败只计数不中断
func (s *ChannelSync) Run(limit int, category string) (*SyncSummary, error) {
	log.Println("[同步] 开始同步 Telegram 频道视频...")

	videos, err := s.source.GetChannelVideos(limit)
	if err != nil {
		return nil, fmt.Errorf("获取频道视频失败: %w", err)
	}

	summary := &SyncSummary{Total: len(videos)}
	for _, video := range videos {
		created, err := s.syncVideo(video, category)
		switch {
		case err != nil:
			log.Printf("[同步] 处理失败，跳过: %s: %v", video.FileID, err)
			summary.Skipped++
		case created:
			summary.Imported++
		default:
			summary.Updated++
		}
	}

	log.Printf("[同步] 完成: 新建 %d, 更新 %d, 跳过 %d, 共 %d",
		summary.Imported, summary.Updated, summary.Skipped, summary.Total)
	return summary, nil
}

func (s *ChannelSync) syncVideo(video ChannelVideo, category string) (created bool, err error) {
	existing, err := s.catalog.FindByTelegramFile(video.FileID)
	if err != nil {
		return false, fmt.Errorf("查询已有视频失败: %w", err)
	}

	if existing != nil {
		// 已导入过，确保处于发布状态
		if err := s.catalog.Update(existing.ID, map[string]interface{}{
			"status": model.StatusPublish,
		}); err != nil {
			return false, fmt.Errorf("更新视频失败: %w", err)
		}
		return false, nil
	}

	title := video.Caption
	if title == "" {
		prefix := video.FileID
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		title = fmt.Sprintf("Video %s", prefix)
	}

	record := &model.Video{
		Title: title,
		Description: fmt.Sprintf("Duration: %ds, Size: %.2fMB",
			video.Duration, float64(video.FileSize)/1024/1024),
		ThumbnailID:    video.ThumbFileID,
		Status:         model.StatusPublish,
		Category:       inferCategory(video.Duration, category),
		VideoSource:    model.SourceTelegram,
		TelegramFileID: video.FileID,
		Duration:       float64(video.Duration),
		IsActive:       true,
	}
	if err := s.catalog.Create(record); err != nil {
		return false, fmt.Errorf("创建视频失败: %w", err)
	}

	return true, nil
}

// inferCategory 时长优先于调用方指定的分类
func inferCategory(durationSeconds int, fallback string) string {
	switch {
	case durationSeconds > 0 && durationSeconds < shortDramaMaxSeconds:
		return model.CategoryDramaPendek
	case durationSeconds > filmMinSeconds:
		return model.CategoryFilm
	case model.IsValidCategory(fallback):
		return fallback
	default:
		return model.CategoryDramaPendek
	}
}
