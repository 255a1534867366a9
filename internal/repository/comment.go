package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// FindByID 根据 ID 查找评论（用于校验回复目标是否存在）
func (r *CommentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByVideo 获取视频的顶级评论，最新在前，回复按时间正序挂在下面
func (r *CommentRepository) ListByVideo(videoID uint, page, limit int) ([]*model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).
		Where("video_id = ? AND parent_id IS NULL", videoID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*model.Comment
	err := query.
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&comments).Error
	return comments, total, err
}

// CountByVideo 统计视频的评论总数（含回复）
func (r *CommentRepository) CountByVideo(videoID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
