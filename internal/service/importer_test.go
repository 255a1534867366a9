package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunantos/miniapp-telegram/internal/config"
	"github.com/gunantos/miniapp-telegram/internal/model"
)

// fakeFetcher 固定返回预置页面
type fakeFetcher struct {
	pages     map[string]string
	available bool
}

func (f *fakeFetcher) FetchWithRetry(ctx context.Context, url string) (string, error) {
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "", ErrMaxRetriesExceeded
}

func (f *fakeFetcher) CheckAvailable(url string) bool {
	return f.available
}

// memoryStore 内存实现的目录存储
type memoryStore struct {
	videos    []*model.Video
	parts     map[uint][]model.SerialPart
	updated   []uint
	nextID    uint
	createErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{parts: make(map[uint][]model.SerialPart)}
}

func (s *memoryStore) FindExisting(title, videoURL string) (*model.Video, error) {
	for _, v := range s.videos {
		if v.Title == title || v.VideoURL == videoURL {
			return v, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) Create(video *model.Video) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	video.ID = s.nextID
	s.videos = append(s.videos, video)
	return nil
}

func (s *memoryStore) UpdateScraped(id uint, description, thumbnailURL, videoURL string, isActive bool) error {
	for _, v := range s.videos {
		if v.ID == id {
			v.Description = description
			v.ThumbnailURL = thumbnailURL
			v.VideoURL = videoURL
			v.IsActive = isActive
			s.updated = append(s.updated, id)
			return nil
		}
	}
	return fmt.Errorf("video %d not found", id)
}

func (s *memoryStore) CreateParts(parts []model.SerialPart) error {
	if len(parts) == 0 {
		return nil
	}
	s.parts[parts[0].SerialID] = append(s.parts[parts[0].SerialID], parts...)
	return nil
}

func (s *memoryStore) findByTitle(title string) *model.Video {
	for _, v := range s.videos {
		if v.Title == title {
			return v
		}
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MovieSeedURLs:  []string{"https://example.com/movie/one/"},
		SeriesSeedURLs: []string{"https://example.com/tvseries/two/"},
		AnimeSeedURLs:  nil,
	}
}

func newTestImporter(fetcher PageFetcher, store CatalogStore) *Importer {
	imp := NewImporter(testConfig(), fetcher, NewSiteExtractor(), store)
	imp.SeedDelay = 0
	imp.DraftDelay = 0
	return imp
}

func TestImporterFallbackOnFetchFailure(t *testing.T) {
	// 所有种子都抓不到，三个集合全部走内置样例
	store := newMemoryStore()
	imp := newTestImporter(&fakeFetcher{available: true}, store)

	summary, err := imp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, Breakdown{Movies: 1, Series: 1, Anime: 1}, summary.Breakdown)

	// 电影没有剧集，连续剧 16 集，动画 12 集
	movie := store.findByTitle("Paprika (2006)")
	require.NotNil(t, movie)
	assert.Equal(t, model.CategoryFilm, movie.Category)
	assert.Equal(t, model.StatusPublish, movie.Status)
	assert.Equal(t, model.SourceWebsite, movie.VideoSource)
	assert.Empty(t, store.parts[movie.ID])

	series := store.findByTitle("Gen V")
	require.NotNil(t, series)
	assert.Len(t, store.parts[series.ID], 16)
	assert.Equal(t, 2, store.parts[series.ID][15].SeasonNumber)

	anime := store.findByTitle("Demon Slayer: Kimetsu no Yaiba")
	require.NotNil(t, anime)
	assert.Len(t, store.parts[anime.ID], 12)
	for i, part := range store.parts[anime.ID] {
		assert.Equal(t, i+1, part.PartNumber)
	}
}

func TestImporterSecondRunUpdates(t *testing.T) {
	// 第二次导入应该只更新，不重复建条目
	store := newMemoryStore()

	first, err := newTestImporter(&fakeFetcher{available: true}, store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, first.Processed)

	second, err := newTestImporter(&fakeFetcher{available: true}, store).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 3, second.Updated)
	assert.Equal(t, 0, second.Skipped)
	assert.Len(t, store.videos, 3)

	// 剧集不会重复写入
	series := store.findByTitle("Gen V")
	assert.Len(t, store.parts[series.ID], 16)
}

func TestImporterScrapedPage(t *testing.T) {
	// 电影种子返回真实结构的页面，其余集合走样例
	fetcher := &fakeFetcher{
		available: true,
		pages: map[string]string{
			"https://example.com/movie/one/": sampleItemHTML,
		},
	}
	store := newMemoryStore()

	summary, err := newTestImporter(fetcher, store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)

	movie := store.findByTitle("Paprika")
	require.NotNil(t, movie)
	assert.Equal(t, "https://tv10.idlixku.com/movie/paprika-2006/", movie.VideoURL)
	assert.Equal(t, "Paprika (2006) - Rating: 7.7", movie.Description)
	assert.True(t, movie.IsActive)
}

func TestImporterSeriesPlaceholderParts(t *testing.T) {
	// 连续剧页面解析不出剧集时，生成 3 个占位集
	html := `<article class="item movies">
		<img src="https://cdn.example.com/s.jpg" alt="Some Show">
		<a href="https://example.com/tvseries/some-show/">x</a>
	</article>`
	fetcher := &fakeFetcher{
		available: true,
		pages: map[string]string{
			"https://example.com/tvseries/two/": html,
		},
	}
	store := newMemoryStore()

	_, err := newTestImporter(fetcher, store).Run(context.Background())
	require.NoError(t, err)

	show := store.findByTitle("Some Show")
	require.NotNil(t, show)
	parts := store.parts[show.ID]
	require.Len(t, parts, 3)
	assert.Equal(t, "https://example.com/tvseries/some-show/_season1", parts[0].VideoFileID)
}

func TestImporterSkipsFailedDrafts(t *testing.T) {
	// 入库失败的草稿计入 skipped，三个计数加起来等于总数
	store := newMemoryStore()
	store.createErr = errors.New("db down")

	summary, err := newTestImporter(&fakeFetcher{}, store).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, summary.Total, summary.Processed+summary.Updated+summary.Skipped)
}

func TestImporterUnavailableSourceStillImported(t *testing.T) {
	// 探测失败只影响 is_active 标记，不阻止导入
	store := newMemoryStore()

	summary, err := newTestImporter(&fakeFetcher{available: false}, store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)

	for _, v := range store.videos {
		assert.False(t, v.IsActive)
	}
}
