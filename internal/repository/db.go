package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 ORM 失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 同步表结构
func AutoMigrate(db *gorm.DB) error {
	// pgvector 扩展需要先创建，embedding 列才能建出来
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("创建 vector 扩展失败: %w", err)
	}
	return db.AutoMigrate(
		&model.User{},
		&model.UserPreference{},
		&model.Video{},
		&model.SerialPart{},
		&model.VideoLike{},
		&model.Comment{},
		&model.WatchHistory{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB         *gorm.DB
	User       *UserRepository
	Preference *PreferenceRepository
	Video      *VideoRepository
	SerialPart *SerialPartRepository
	Like       *LikeRepository
	Comment    *CommentRepository
	History    *HistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:         db,
		User:       NewUserRepository(db),
		Preference: NewPreferenceRepository(db),
		Video:      NewVideoRepository(db),
		SerialPart: NewSerialPartRepository(db),
		Like:       NewLikeRepository(db),
		Comment:    NewCommentRepository(db),
		History:    NewHistoryRepository(db),
	}
}
