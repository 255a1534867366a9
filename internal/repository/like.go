package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 点赞开关：已点赞则取消，未点赞则点上，返回最终状态
func (r *LikeRepository) Toggle(userID, videoID uint) (liked bool, err error) {
	var like model.VideoLike
	err = r.db.Where("user_id = ? AND video_id = ?", userID, videoID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		like = model.VideoLike{
			UserID:    userID,
			VideoID:   videoID,
			CreatedAt: time.Now(),
		}
		if err := r.db.Create(&like).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if err := r.db.Delete(&like).Error; err != nil {
		return true, err
	}
	return false, nil
}

// IsLiked 检查用户是否已点赞
func (r *LikeRepository) IsLiked(userID, videoID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.VideoLike{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

// Count 统计视频点赞数
func (r *LikeRepository) Count(videoID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.VideoLike{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
