package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// 视频状态
const (
	StatusDraft   = "DRAFT"
	StatusPublish = "PUBLISH"
)

// 视频分类
const (
	CategoryDramaPendek = "DRAMA_PENDEK" // 短剧
	CategoryFilm        = "FILM"
	CategorySerial      = "SERIAL"
	CategoryKartun      = "KARTUN" // 动画
)

// 视频来源
const (
	SourceTelegram = "TELEGRAM"
	SourceWebsite  = "WEBSITE"
)

// Categories 所有合法分类
var Categories = []string{CategoryDramaPendek, CategoryFilm, CategorySerial, CategoryKartun}

// IsValidCategory 校验分类是否合法
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Video 视频模型（目录条目）
// VideoURL 和 TelegramFileID 按 VideoSource 二选一：
// WEBSITE 来源使用外链 VideoURL，TELEGRAM 来源使用 TelegramFileID
type Video struct {
	ID             uint             `json:"id" db:"id"`
	Title          string           `json:"title" db:"title" gorm:"index"`
	Description    string           `json:"description" db:"description"`
	ThumbnailID    string           `json:"thumbnail_id" db:"thumbnail_id"` // Telegram 封面文件引用
	ThumbnailURL   string           `json:"thumbnail_url" db:"thumbnail_url"`
	Status         string           `json:"status" db:"status" gorm:"index;default:DRAFT"`
	Category       string           `json:"category" db:"category" gorm:"index"`
	VideoSource    string           `json:"video_source" db:"video_source"`
	VideoURL       string           `json:"video_url" db:"video_url" gorm:"index"`
	TelegramFileID string           `json:"telegram_file_id" db:"telegram_file_id"`
	Duration       float64          `json:"duration" db:"duration"` // 秒，0 表示未知
	ViewCount      int              `json:"view_count" db:"view_count" gorm:"index"`
	IsActive       bool             `json:"is_active" db:"is_active"`
	LastChecked    *time.Time       `json:"last_checked" db:"last_checked" gorm:"index"`
	Embedding      *pgvector.Vector `json:"-" db:"embedding" gorm:"type:vector(768)"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at" gorm:"index"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`

	SerialParts []SerialPart `json:"serial_parts,omitempty" gorm:"foreignKey:SerialID;constraint:OnDelete:CASCADE"`
}

// IsSerial 是否为多集内容（连续剧/动画）
func (v *Video) IsSerial() bool {
	return v.Category == CategorySerial || v.Category == CategoryKartun
}

// SerialPart 剧集（连续剧的一集）
// PartNumber 从 1 开始，在所属视频内唯一，用于排序和上一集/下一集导航
type SerialPart struct {
	ID           uint      `json:"id" db:"id"`
	SerialID     uint      `json:"serial_id" db:"serial_id" gorm:"uniqueIndex:uniq_serial_part,priority:1"`
	VideoFileID  string    `json:"video_file_id" db:"video_file_id"` // 播放链接或 Telegram 文件ID
	PartNumber   int       `json:"part_number" db:"part_number" gorm:"uniqueIndex:uniq_serial_part,priority:2"`
	SeasonNumber int       `json:"season_number" db:"season_number" gorm:"default:1"`
	Title        string    `json:"title" db:"title"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	EpisodeLabel string    `json:"episode_label" db:"episode_label"` // 如 "1 - 3"，原样保存
	AirDate      string    `json:"air_date" db:"air_date"`           // 播出日期文本，原样保存
	ViewCount    int       `json:"view_count" db:"view_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
