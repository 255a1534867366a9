package service

import (
	"fmt"
	"log"

	"github.com/gunantos/miniapp-telegram/internal/model"
	"github.com/gunantos/miniapp-telegram/internal/repository"
	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// SimilarService 相关视频推荐
// 基于标题+简介的向量做近邻检索，向量由后台任务补齐
type SimilarService struct {
	videoRepo *repository.VideoRepository
}

func NewSimilarService(videoRepo *repository.VideoRepository) *SimilarService {
	return &SimilarService{videoRepo: videoRepo}
}

// FindRelated 查找相关视频
// 目标视频没有向量时退化为同分类最新视频
func (s *SimilarService) FindRelated(video *model.Video, limit int) ([]*model.Video, error) {
	if limit <= 0 {
		limit = 10
	}

	if video.Embedding != nil {
		related, err := s.videoRepo.FindSimilar(video.ID, *video.Embedding, limit)
		if err != nil {
			return nil, fmt.Errorf("向量检索失败: %w", err)
		}
		if len(related) > 0 {
			return related, nil
		}
	}

	// 兜底：同分类按时间取最新
	videos, _, err := s.videoRepo.List(repository.ListOptions{
		Category: video.Category,
		SortBy:   "latest",
		Page:     1,
		Limit:    limit + 1,
	})
	if err != nil {
		return nil, err
	}

	related := make([]*model.Video, 0, limit)
	for _, v := range videos {
		if v.ID == video.ID {
			continue
		}
		related = append(related, v)
		if len(related) >= limit {
			break
		}
	}
	return related, nil
}

// EnrichEmbeddings 给缺向量的视频补齐向量
// Ollama 不可用时静默跳过，不影响主流程
func (s *SimilarService) EnrichEmbeddings(batchSize int) {
	if batchSize <= 0 {
		batchSize = 20
	}

	videos, err := s.videoRepo.ListMissingEmbedding(batchSize)
	if err != nil {
		log.Printf("[推荐] 查询缺向量视频失败: %v", err)
		return
	}
	if len(videos) == 0 {
		return
	}

	enriched := 0
	for _, video := range videos {
		text := video.Title
		if video.Description != "" {
			text += "\n" + video.Description
		}

		embedding, err := utils.GenerateEmbedding(text)
		if err != nil {
			log.Printf("[推荐] 生成向量失败: %s: %v", video.Title, err)
			return // Ollama 挂了，这一批不用再试
		}

		if err := s.videoRepo.UpdateEmbedding(video.ID, embedding); err != nil {
			log.Printf("[推荐] 保存向量失败: %s: %v", video.Title, err)
			continue
		}
		enriched++
	}

	if enriched > 0 {
		log.Printf("[推荐] 本批补齐 %d 个视频向量", enriched)
	}
}
