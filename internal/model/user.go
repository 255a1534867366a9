package model

import (
	"time"
)

// User 用户模型（Telegram 登录）
type User struct {
	ID                   uint      `json:"id" db:"id"`
	TelegramID           int64     `json:"telegram_id" db:"telegram_id" gorm:"uniqueIndex"`
	TelegramUsername     string    `json:"telegram_username" db:"telegram_username"`
	TelegramFirstName    string    `json:"telegram_first_name" db:"telegram_first_name"`
	TelegramLastName     string    `json:"telegram_last_name" db:"telegram_last_name"`
	TelegramIsBot        bool      `json:"telegram_is_bot" db:"telegram_is_bot"`
	TelegramLanguageCode string    `json:"telegram_language_code" db:"telegram_language_code"`
	TelegramPhotoURL     string    `json:"telegram_photo_url" db:"telegram_photo_url"`
	Email                string    `json:"email" db:"email"`
	Name                 string    `json:"name" db:"name"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`

	Preference *UserPreference `json:"preferences,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID               uint
	TelegramID       int64
	TelegramUsername string
	Name             string
}

// UserPreference 用户偏好设置
type UserPreference struct {
	ID            uint      `json:"id" db:"id"`
	UserID        uint      `json:"user_id" db:"user_id" gorm:"uniqueIndex"`
	Theme         string    `json:"theme" db:"theme" gorm:"default:light"`
	Language      string    `json:"language" db:"language" gorm:"default:id"`
	Quality       string    `json:"quality" db:"quality" gorm:"default:auto"`
	Autoplay      bool      `json:"autoplay" db:"autoplay" gorm:"default:true"`
	Notifications bool      `json:"notifications" db:"notifications" gorm:"default:true"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPreference 未设置时返回的默认偏好
func DefaultPreference(userID uint) *UserPreference {
	return &UserPreference{
		UserID:        userID,
		Theme:         "light",
		Language:      "id",
		Quality:       "auto",
		Autoplay:      true,
		Notifications: true,
	}
}
