package repository

import (
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// ListOptions 视频列表查询条件
type ListOptions struct {
	Category string // 为空表示全部分类
	Search   string // 标题模糊搜索
	SortBy   string // latest / oldest / most_viewed / least_viewed
	Page     int
	Limit    int
}

// FindExisting 查找已存在的视频：标题完全一致或播放链接一致即视为同一条
func (r *VideoRepository) FindExisting(title, videoURL string) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("title = ? OR video_url = ?", title, videoURL).First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// FindByTelegramFile 按 Telegram 文件查找已有视频
// 文件 ID 一致，或标题里带文件 ID 前 8 位（同步生成的标题格式），都算同一条
func (r *VideoRepository) FindByTelegramFile(fileID string) (*model.Video, error) {
	prefix := fileID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}

	var video model.Video
	err := r.db.Where("telegram_file_id = ? OR title LIKE ?", fileID, "%"+prefix+"%").
		First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Create 创建视频
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// UpdateScraped 抓取更新：只刷新可变的元数据字段，不改标题和分类
func (r *VideoRepository) UpdateScraped(id uint, description, thumbnailURL, videoURL string, isActive bool) error {
	now := time.Now()
	return r.db.Model(&model.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"description":   description,
		"thumbnail_url": thumbnailURL,
		"video_url":     videoURL,
		"last_checked":  now,
		"is_active":     isActive,
	}).Error
}

// Update 按字段更新视频（管理后台编辑）
func (r *VideoRepository) Update(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).Updates(fields).Error
}

// List 查询已发布视频列表，支持分类筛选、标题搜索、排序和分页
func (r *VideoRepository) List(opts ListOptions) ([]*model.Video, int64, error) {
	query := r.db.Model(&model.Video{}).Where("status = ?", model.StatusPublish)

	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.Search != "" {
		query = query.Where("title ILIKE ?", "%"+opts.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch opts.SortBy {
	case "oldest":
		query = query.Order("created_at ASC")
	case "most_viewed":
		query = query.Order("view_count DESC")
	case "least_viewed":
		query = query.Order("view_count ASC")
	default: // latest
		query = query.Order("created_at DESC")
	}

	var videos []*model.Video
	err := query.Preload("SerialParts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_number ASC")
	}).
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit).
		Find(&videos).Error
	return videos, total, err
}

// ListAdmin 管理后台列表：不过滤状态
func (r *VideoRepository) ListAdmin(opts ListOptions) ([]*model.Video, int64, error) {
	query := r.db.Model(&model.Video{})

	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.Search != "" {
		query = query.Where("title ILIKE ?", "%"+opts.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []*model.Video
	err := query.Order("created_at DESC").
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit).
		Find(&videos).Error
	return videos, total, err
}

// FindByID 根据 ID 查找视频（带剧集）
func (r *VideoRepository) FindByID(id uint) (*model.Video, error) {
	var video model.Video
	err := r.db.Preload("SerialParts", func(db *gorm.DB) *gorm.DB {
		return db.Order("part_number ASC")
	}).First(&video, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// IncrementViewCount 播放量 +1
func (r *VideoRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Delete 删除视频（剧集由外键级联删除）
func (r *VideoRepository) Delete(id uint) error {
	return r.db.Delete(&model.Video{}, id).Error
}

// UpdateEmbedding 写入向量
func (r *VideoRepository) UpdateEmbedding(id uint, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	return r.db.Model(&model.Video{}).Where("id = ?", id).Update("embedding", &vec).Error
}

// FindSimilar 向量检索相似视频（余弦距离），排除自己且只取已发布的
func (r *VideoRepository) FindSimilar(id uint, embedding pgvector.Vector, limit int) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.Where("id != ? AND status = ? AND embedding IS NOT NULL", id, model.StatusPublish).
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{embedding}}}).
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// ListMissingEmbedding 查出还没生成向量的已发布视频
func (r *VideoRepository) ListMissingEmbedding(limit int) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.Where("status = ? AND embedding IS NULL", model.StatusPublish).
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// ScrapeStats 抓取统计
type ScrapeStats struct {
	TotalVideos     int64            `json:"totalVideos"`
	ActiveVideos    int64            `json:"activeVideos"`
	InactiveVideos  int64            `json:"inactiveVideos"`
	WebsiteVideos   int64            `json:"websiteVideos"`
	PublishedVideos int64            `json:"publishedVideos"`
	CategoryStats   map[string]int64 `json:"categoryStats"`
	RecentVideos    []*model.Video   `json:"recentVideos"`
}

// Stats 汇总抓取统计信息
func (r *VideoRepository) Stats() (*ScrapeStats, error) {
	stats := &ScrapeStats{CategoryStats: make(map[string]int64)}

	if err := r.db.Model(&model.Video{}).Count(&stats.TotalVideos).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Video{}).Where("is_active = ?", true).Count(&stats.ActiveVideos).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Video{}).Where("video_source = ?", model.SourceWebsite).Count(&stats.WebsiteVideos).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Video{}).Where("status = ?", model.StatusPublish).Count(&stats.PublishedVideos).Error; err != nil {
		return nil, err
	}
	stats.InactiveVideos = stats.TotalVideos - stats.ActiveVideos

	// 按分类统计已发布数量
	rows, err := r.db.Model(&model.Video{}).
		Select("category, COUNT(id) AS cnt").
		Where("status = ?", model.StatusPublish).
		Group("category").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var cnt int64
		if err := rows.Scan(&category, &cnt); err != nil {
			return nil, err
		}
		stats.CategoryStats[category] = cnt
	}

	// 最近抓取的 10 条
	err = r.db.Where("video_source = ? AND last_checked IS NOT NULL", model.SourceWebsite).
		Order("last_checked DESC").
		Limit(10).
		Find(&stats.RecentVideos).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// SyncStats 频道同步统计
type SyncStats struct {
	TotalVideos     int64 `json:"totalVideos"`
	TelegramVideos  int64 `json:"telegramVideos"`
	WebsiteVideos   int64 `json:"websiteVideos"`
	PublishedVideos int64 `json:"publishedVideos"`
	DraftVideos     int64 `json:"draftVideos"`
}

// StatsBySource 按来源和状态汇总视频数量
func (r *VideoRepository) StatsBySource() (*SyncStats, error) {
	stats := &SyncStats{}

	if err := r.db.Model(&model.Video{}).Count(&stats.TotalVideos).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Video{}).Where("video_source = ?", model.SourceTelegram).Count(&stats.TelegramVideos).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Video{}).Where("status = ?", model.StatusPublish).Count(&stats.PublishedVideos).Error; err != nil {
		return nil, err
	}
	stats.WebsiteVideos = stats.TotalVideos - stats.TelegramVideos
	stats.DraftVideos = stats.TotalVideos - stats.PublishedVideos

	return stats, nil
}

// ListForAvailabilityCheck 查出超过指定时间未探测的视频
func (r *VideoRepository) ListForAvailabilityCheck(before time.Time, limit int) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.Where("video_source = ? AND (last_checked IS NULL OR last_checked < ?)", model.SourceWebsite, before).
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// UpdateAvailability 更新探测结果
func (r *VideoRepository) UpdateAvailability(id uint, isActive bool) error {
	now := time.Now()
	return r.db.Model(&model.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":    isActive,
		"last_checked": now,
	}).Error
}
