package handler

import (
	"github.com/gunantos/miniapp-telegram/internal/config"
	"github.com/gunantos/miniapp-telegram/internal/repository"
	"github.com/gunantos/miniapp-telegram/internal/service"
)

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Fetcher  *service.Fetcher
	Importer *service.Importer
	Telegram *service.TelegramService
	Sync     *service.ChannelSync
	Similar  *service.SimilarService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	// 抓取和解析组件
	fetcher := service.NewFetcher()
	extractor := service.NewSiteExtractor()
	store := service.NewCatalogStore(repos)

	importer := service.NewImporter(cfg, fetcher, extractor, store)
	telegram := service.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramChannelID)
	sync := service.NewChannelSync(telegram, repos.Video)
	similar := service.NewSimilarService(repos.Video)

	return &Handler{
		Repos:    repos,
		Config:   cfg,
		Fetcher:  fetcher,
		Importer: importer,
		Telegram: telegram,
		Sync:     sync,
		Similar:  similar,
	}
}
