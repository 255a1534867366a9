package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gunantos/miniapp-telegram/internal/config"
	"github.com/gunantos/miniapp-telegram/internal/model"
)

// 新条目的初始播放量随机上限，按分类区分
const (
	movieViewBound   = 10000
	seriesViewBound  = 50000
	animeViewBound   = 30000
	episodeViewBound = 1000
	animeEpViewBound = 800

	// 没有剧集数据时生成的占位集数
	fallbackSeriesParts = 3
	fallbackAnimeParts  = 12
)

// CatalogStore 导入器写入目录的接口，测试时可替换
type CatalogStore interface {
	FindExisting(title, videoURL string) (*model.Video, error)
	Create(video *model.Video) error
	UpdateScraped(id uint, description, thumbnailURL, videoURL string, isActive bool) error
	CreateParts(parts []model.SerialPart) error
}

// PageFetcher 导入器对抓取器的依赖
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, url string) (string, error)
	CheckAvailable(url string) bool
}

// Summary 一次导入的统计结果
type Summary struct {
	Processed int       `json:"processed"` // 新建条数
	Updated   int       `json:"updated"`   // 更新条数
	Skipped   int       `json:"skipped"`   // 处理失败跳过的条数
	Total     int       `json:"total"`     // 抓到的草稿总数
	Breakdown Breakdown `json:"breakdown"`
}

// Breakdown 各集合抓到的草稿数
type Breakdown struct {
	Movies int `json:"movies"`
	Series int `json:"series"`
	Anime  int `json:"anime"`
}

// Importer 目录导入器：抓取三个集合并合并进目录
type Importer struct {
	cfg       *config.Config
	fetcher   PageFetcher
	extractor MarkupExtractor
	store     CatalogStore

	// 限速间隔，测试时可以清零
	SeedDelay  time.Duration
	DraftDelay time.Duration
}

func NewImporter(cfg *config.Config, fetcher PageFetcher, extractor MarkupExtractor, store CatalogStore) *Importer {
	return &Importer{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		store:      store,
		SeedDelay:  time.Second,
		DraftDelay: 100 * time.Millisecond,
	}
}

// Run 执行一次完整导入：三个集合并发抓取，再逐条合并入库
func (s *Importer) Run(ctx context.Context) (*Summary, error) {
	log.Println("[导入] 开始抓取视频目录...")

	var movies, series, anime []*ItemDraft

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies = s.scrapeCollection(gctx, "电影", s.cfg.MovieSeedURLs, model.CategoryFilm)
		return nil
	})
	g.Go(func() error {
		series = s.scrapeCollection(gctx, "连续剧", s.cfg.SeriesSeedURLs, model.CategorySerial)
		return nil
	})
	g.Go(func() error {
		anime = s.scrapeCollection(gctx, "动画", s.cfg.AnimeSeedURLs, model.CategoryKartun)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[导入] 抓取完成: 电影 %d 部, 连续剧 %d 部, 动画 %d 部", len(movies), len(series), len(anime))

	summary := &Summary{
		Total: len(movies) + len(series) + len(anime),
		Breakdown: Breakdown{
			Movies: len(movies),
			Series: len(series),
			Anime:  len(anime),
		},
	}

	for _, collection := range [][]*ItemDraft{movies, series, anime} {
		for _, draft := range collection {
			created, err := s.processDraft(draft)
			switch {
			case err != nil:
				// 单条失败不影响其余条目
				log.Printf("[导入] 处理失败，跳过: %s: %v", draft.Title, err)
				summary.Skipped++
			case created:
				summary.Processed++
			default:
				summary.Updated++
			}
			s.sleep(ctx, s.DraftDelay)
		}
	}

	log.Printf("[导入] 完成: 新建 %d, 更新 %d, 跳过 %d, 共 %d",
		summary.Processed, summary.Updated, summary.Skipped, summary.Total)
	return summary, nil
}

// scrapeCollection 抓取一个集合的全部种子页
// 单个种子失败只记日志不中断；整体没抓到任何数据时用内置样例兜底
func (s *Importer) scrapeCollection(ctx context.Context, name string, seedURLs []string, category string) []*ItemDraft {
	var drafts []*ItemDraft

	for _, url := range seedURLs {
		html, err := s.fetcher.FetchWithRetry(ctx, url)
		if err != nil {
			log.Printf("[导入] 抓取%s页面失败: %s: %v", name, url, err)
			s.sleep(ctx, s.SeedDelay)
			continue
		}

		draft := s.extractor.ExtractItem(html)
		if draft == nil {
			log.Printf("[导入] 页面结构不匹配，未提取到%s数据: %s", name, url)
			s.sleep(ctx, s.SeedDelay)
			continue
		}
		draft.Category = category
		if draft.StreamURL == "" {
			draft.StreamURL = url
		}
		draft.Episodes = s.extractor.ExtractEpisodes(html)

		drafts = append(drafts, draft)
		s.sleep(ctx, s.SeedDelay)
	}

	if len(drafts) == 0 {
		log.Printf("[导入] %s集合无抓取结果，使用内置样例", name)
		drafts = fallbackDrafts(category)
	}

	return drafts
}

// processDraft 合并一条草稿：已存在则刷新元数据，否则新建（剧集一并写入）
// 返回值 created 表示是否新建
func (s *Importer) processDraft(draft *ItemDraft) (created bool, err error) {
	existing, err := s.store.FindExisting(draft.Title, draft.StreamURL)
	if err != nil {
		return false, fmt.Errorf("查询已有视频失败: %w", err)
	}

	isActive := s.fetcher.CheckAvailable(draft.StreamURL)

	if existing != nil {
		if err := s.store.UpdateScraped(existing.ID, draft.Description, draft.ThumbnailURL, draft.StreamURL, isActive); err != nil {
			return false, fmt.Errorf("更新视频失败: %w", err)
		}
		return false, nil
	}

	now := time.Now()
	video := &model.Video{
		Title:        draft.Title,
		Description:  draft.Description,
		ThumbnailURL: draft.ThumbnailURL,
		VideoURL:     draft.StreamURL,
		Category:     draft.Category,
		VideoSource:  model.SourceWebsite,
		Status:       model.StatusPublish,
		ViewCount:    rand.Intn(viewBound(draft.Category)),
		IsActive:     isActive,
		LastChecked:  &now,
	}
	if err := s.store.Create(video); err != nil {
		return false, fmt.Errorf("创建视频失败: %w", err)
	}

	if video.IsSerial() {
		if err := s.store.CreateParts(buildParts(video, draft)); err != nil {
			return false, fmt.Errorf("创建剧集失败: %w", err)
		}
	}

	return true, nil
}

// buildParts 生成剧集记录：有抓取数据按数据来，没有则生成占位集
func buildParts(video *model.Video, draft *ItemDraft) []model.SerialPart {
	epViewBound := episodeViewBound
	if draft.Category == model.CategoryKartun {
		epViewBound = animeEpViewBound
	}

	if len(draft.Episodes) > 0 {
		parts := make([]model.SerialPart, 0, len(draft.Episodes))
		for i, ep := range draft.Episodes {
			fileID := ep.StreamURL
			if fileID == "" {
				fileID = fmt.Sprintf("%s_episode%d", draft.StreamURL, i+1)
			}
			partNumber := ep.PartNumber
			if partNumber == 0 {
				partNumber = i + 1
			}
			title := ep.Title
			if title == "" {
				title = fmt.Sprintf("Episode %d", i+1)
			}
			seasonNumber := ep.SeasonNumber
			if seasonNumber == 0 {
				seasonNumber = 1
			}
			viewCount := ep.ViewCount
			if viewCount == 0 {
				viewCount = rand.Intn(epViewBound)
			}
			parts = append(parts, model.SerialPart{
				SerialID:     video.ID,
				VideoFileID:  fileID,
				PartNumber:   partNumber,
				SeasonNumber: seasonNumber,
				Title:        title,
				ThumbnailURL: ep.ThumbnailURL,
				EpisodeLabel: ep.EpisodeLabel,
				AirDate:      ep.AirDate,
				ViewCount:    viewCount,
			})
		}
		return parts
	}

	// 占位集：连续剧按季、动画按集
	total := fallbackSeriesParts
	fileSuffix := "season"
	if draft.Category == model.CategoryKartun {
		total = fallbackAnimeParts
		fileSuffix = "episode"
	}

	parts := make([]model.SerialPart, 0, total)
	for i := 1; i <= total; i++ {
		parts = append(parts, model.SerialPart{
			SerialID:     video.ID,
			VideoFileID:  fmt.Sprintf("%s_%s%d", draft.StreamURL, fileSuffix, i),
			PartNumber:   i,
			SeasonNumber: 1,
			ViewCount:    rand.Intn(epViewBound),
		})
	}
	return parts
}

// viewBound 新条目初始播放量的随机上限
func viewBound(category string) int {
	switch category {
	case model.CategorySerial:
		return seriesViewBound
	case model.CategoryKartun:
		return animeViewBound
	default:
		return movieViewBound
	}
}

// sleep 可被 ctx 取消的等待
func (s *Importer) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
