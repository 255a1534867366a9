package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Upsert 写入观看历史
// (user_id, video_id, serial_part_id) 已有记录时只更新进度，不新增
// serial_part_id 可能为 NULL，ON CONFLICT 匹配不到，只能先查后写
func (r *HistoryRepository) Upsert(history *model.WatchHistory) error {
	history.WatchedAt = time.Now()
	history.MarkCompleted()

	query := r.db.Where("user_id = ? AND video_id = ?", history.UserID, history.VideoID)
	if history.SerialPartID == nil {
		query = query.Where("serial_part_id IS NULL")
	} else {
		query = query.Where("serial_part_id = ?", *history.SerialPartID)
	}

	var existing model.WatchHistory
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(history).Error
	}
	if err != nil {
		return err
	}

	history.ID = existing.ID
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"progress":   history.Progress,
		"duration":   history.Duration,
		"completed":  history.Completed,
		"watched_at": history.WatchedAt,
	}).Error
}

// ListByUser 获取用户观看历史，最近观看在前
func (r *HistoryRepository) ListByUser(userID uint, page, limit int) ([]*model.WatchHistory, int64, error) {
	query := r.db.Model(&model.WatchHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var histories []*model.WatchHistory
	err := query.
		Preload("Video").
		Preload("SerialPart").
		Order("watched_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&histories).Error
	return histories, total, err
}

// Delete 删除用户的一条观看历史
func (r *HistoryRepository) Delete(userID, historyID uint) error {
	return r.db.Where("id = ? AND user_id = ?", historyID, userID).
		Delete(&model.WatchHistory{}).Error
}

// Clear 清空用户的全部观看历史
func (r *HistoryRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.WatchHistory{}).Error
}

// DeleteOlderThan 清理过旧的历史记录，返回删除条数
func (r *HistoryRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("watched_at < ?", before).Delete(&model.WatchHistory{})
	return result.RowsAffected, result.Error
}
