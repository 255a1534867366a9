package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByTelegramID 根据 Telegram ID 查找用户
func (r *UserRepository) FindByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByTelegramID 按 Telegram ID 创建或更新用户资料
// 每次登录都同步一次 Telegram 侧的昵称和头像
func (r *UserRepository) UpsertByTelegramID(user *model.User) error {
	user.UpdatedAt = time.Now()
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"telegram_username", "telegram_first_name", "telegram_last_name",
			"telegram_is_bot", "telegram_language_code", "telegram_photo_url",
			"name", "updated_at",
		}),
	}).Create(user).Error; err != nil {
		return err
	}

	// OnConflict 更新时不回填主键，重新查一次拿到 ID
	if user.ID == 0 {
		existing, err := r.FindByTelegramID(user.TelegramID)
		if err != nil {
			return err
		}
		if existing != nil {
			user.ID = existing.ID
		}
	}
	return nil
}

// Count 获取用户总数
func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}
