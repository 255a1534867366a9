package service

import (
	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/repository"
)

// catalogStore CatalogStore 的数据库实现
type catalogStore struct {
	repos *repository.Repositories
}

// NewCatalogStore 包装仓库集合作为导入器的写入端
func NewCatalogStore(repos *repository.Repositories) CatalogStore {
	return &catalogStore{repos: repos}
}

func (s *catalogStore) FindExisting(title, videoURL string) (*model.Video, error) {
	return s.repos.Video.FindExisting(title, videoURL)
}

func (s *catalogStore) Create(video *model.Video) error {
	return s.repos.Video.Create(video)
}

func (s *catalogStore) UpdateScraped(id uint, description, thumbnailURL, videoURL string, isActive bool) error {
	return s.repos.Video.UpdateScraped(id, description, thumbnailURL, videoURL, isActive)
}

func (s *catalogStore) CreateParts(parts []model.SerialPart) error {
	return s.repos.SerialPart.BulkCreate(parts)
}
