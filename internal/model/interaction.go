package model

import (
	"time"
)

// VideoLike 点赞
// 存在即表示"已点赞"：创建 = 点赞，删除 = 取消，没有布尔开关
type VideoLike struct {
	ID        uint      `json:"id" db:"id"`
	UserID    uint      `json:"user_id" db:"user_id" gorm:"uniqueIndex:uniq_user_video_like,priority:1"`
	VideoID   uint      `json:"video_id" db:"video_id" gorm:"uniqueIndex:uniq_user_video_like,priority:2"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment 评论（支持一层回复）
type Comment struct {
	ID        uint      `json:"id" db:"id"`
	UserID    uint      `json:"user_id" db:"user_id"`
	VideoID   uint      `json:"video_id" db:"video_id" gorm:"index"`
	ParentID  *uint     `json:"parent_id" db:"parent_id" gorm:"index"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"index"`

	User    *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Replies []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID"`
}

// WatchHistory 观看历史
// (user_id, video_id, serial_part_id) 组合唯一，作为 Upsert 目标
type WatchHistory struct {
	ID           uint      `json:"id" db:"id"`
	UserID       uint      `json:"user_id" db:"user_id" gorm:"uniqueIndex:uniq_watch_history,priority:1"`
	VideoID      uint      `json:"video_id" db:"video_id" gorm:"uniqueIndex:uniq_watch_history,priority:2"`
	SerialPartID *uint     `json:"serial_part_id" db:"serial_part_id" gorm:"uniqueIndex:uniq_watch_history,priority:3"`
	Progress     float64   `json:"progress" db:"progress"` // 播放进度（秒）
	Duration     float64   `json:"duration" db:"duration"` // 已知总时长（秒）
	Completed    bool      `json:"completed" db:"completed"`
	WatchedAt    time.Time `json:"watched_at" db:"watched_at" gorm:"index"`

	Video      *Video      `json:"video,omitempty" gorm:"foreignKey:VideoID"`
	SerialPart *SerialPart `json:"serial_part,omitempty" gorm:"foreignKey:SerialPartID"`
}

// MarkCompleted 根据进度计算完成标记：进度达到时长的 95% 视为看完
func (h *WatchHistory) MarkCompleted() {
	if h.Duration > 0 && h.Progress >= h.Duration*0.95 {
		h.Completed = true
	}
}
