package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get 获取用户偏好，没有记录时返回默认值
func (r *PreferenceRepository) Get(userID uint) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultPreference(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert 保存用户偏好，存在则整体覆盖
func (r *PreferenceRepository) Upsert(pref *model.UserPreference) error {
	pref.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"theme", "language", "quality", "autoplay", "notifications", "updated_at",
		}),
	}).Create(pref).Error
}
