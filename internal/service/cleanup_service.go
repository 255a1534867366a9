package service

import (
	"log"
	"time"

	"github.com/gunantos/miniapp-telegram/internal/repository"
)

// 观看历史保留时长
const historyRetention = 180 * 24 * time.Hour

// CleanupService 后台维护任务：可用性复查、历史清理、向量补齐
type CleanupService struct {
	repos   *repository.Repositories
	fetcher *Fetcher
	similar *SimilarService
}

// NewCleanupService 创建清理服务
func NewCleanupService(repos *repository.Repositories, fetcher *Fetcher, similar *SimilarService) *CleanupService {
	return &CleanupService{
		repos:   repos,
		fetcher: fetcher,
		similar: similar,
	}
}

// Start 启动定时任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始后台维护任务...")

	// 1. 复查外链视频的可用性，7 天探测一轮
	s.recheckAvailability()

	// 2. 清理超过保留期的观看历史
	affected, err := s.repos.History.DeleteOlderThan(time.Now().Add(-historyRetention))
	if err != nil {
		log.Printf("[CleanupService] 清理观看历史失败: %v", err)
	} else if affected > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期观看历史", affected)
	}

	// 3. 补齐缺失的推荐向量
	s.similar.EnrichEmbeddings(50)
}

func (s *CleanupService) recheckAvailability() {
	videos, err := s.repos.Video.ListForAvailabilityCheck(time.Now().Add(-7*24*time.Hour), 100)
	if err != nil {
		log.Printf("[CleanupService] 查询待复查视频失败: %v", err)
		return
	}

	checked, down := 0, 0
	for _, video := range videos {
		available := s.fetcher.CheckAvailable(video.VideoURL)
		if err := s.repos.Video.UpdateAvailability(video.ID, available); err != nil {
			log.Printf("[CleanupService] 更新可用性失败: %s: %v", video.Title, err)
			continue
		}
		checked++
		if !available {
			down++
		}
		time.Sleep(100 * time.Millisecond)
	}

	if checked > 0 {
		log.Printf("[CleanupService] 可用性复查完成: 检查 %d 个, 失效 %d 个", checked, down)
	}
}
