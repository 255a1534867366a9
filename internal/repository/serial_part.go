package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type SerialPartRepository struct {
	db *gorm.DB
}

func NewSerialPartRepository(db *gorm.DB) *SerialPartRepository {
	return &SerialPartRepository{db: db}
}

// BulkCreate 批量创建剧集
func (r *SerialPartRepository) BulkCreate(parts []model.SerialPart) error {
	if len(parts) == 0 {
		return nil
	}
	return r.db.Create(&parts).Error
}

// ListBySerial 获取某个视频的全部剧集，按集数排序
func (r *SerialPartRepository) ListBySerial(serialID uint) ([]*model.SerialPart, error) {
	var parts []*model.SerialPart
	err := r.db.Where("serial_id = ?", serialID).
		Order("part_number ASC").
		Find(&parts).Error
	return parts, err
}

// FindByID 根据 ID 查找剧集
func (r *SerialPartRepository) FindByID(id uint) (*model.SerialPart, error) {
	var part model.SerialPart
	err := r.db.First(&part, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// Update 按字段更新剧集
func (r *SerialPartRepository) Update(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.SerialPart{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementViewCount 剧集播放量 +1
func (r *SerialPartRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&model.SerialPart{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// DeleteBySerial 删除某个视频的全部剧集
func (r *SerialPartRepository) DeleteBySerial(serialID uint) error {
	return r.db.Where("serial_id = ?", serialID).Delete(&model.SerialPart{}).Error
}
