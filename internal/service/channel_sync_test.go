package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

// fakeChannelSource 返回固定的频道视频列表
type fakeChannelSource struct {
	videos []ChannelVideo
	err    error
}

func (f *fakeChannelSource) GetChannelVideos(limit int) ([]ChannelVideo, error) {
	return f.videos, f.err
}

// fakeChannelCatalog 内存目录
type fakeChannelCatalog struct {
	videos    []*model.Video
	updates   map[uint]map[string]interface{}
	createErr error
}

func newFakeChannelCatalog() *fakeChannelCatalog {
	return &fakeChannelCatalog{updates: make(map[uint]map[string]interface{})}
}

func (f *fakeChannelCatalog) FindByTelegramFile(fileID string) (*model.Video, error) {
	for _, v := range f.videos {
		if v.TelegramFileID == fileID {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeChannelCatalog) Create(video *model.Video) error {
	if f.createErr != nil {
		return f.createErr
	}
	video.ID = uint(len(f.videos) + 1)
	f.videos = append(f.videos, video)
	return nil
}

func (f *fakeChannelCatalog) Update(id uint, fields map[string]interface{}) error {
	f.updates[id] = fields
	return nil
}

func TestChannelSyncImportsNewVideos(t *testing.T) {
	source := &fakeChannelSource{videos: []ChannelVideo{
		{FileID: "BAACshort123", Duration: 120, FileSize: 2 * 1024 * 1024, Caption: "Kisah Singkat"},
		{FileID: "BAAClong456", Duration: 3600, FileSize: 700 * 1024 * 1024},
		{FileID: "BAACmid789", Duration: 900, FileSize: 50 * 1024 * 1024, ThumbFileID: "AAMthumb"},
	}}
	catalog := newFakeChannelCatalog()

	summary, err := NewChannelSync(source, catalog).Run(50, "")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, catalog.videos, 3)

	// 短于 5 分钟归短剧，标题来自 caption
	short := catalog.videos[0]
	assert.Equal(t, model.CategoryDramaPendek, short.Category)
	assert.Equal(t, "Kisah Singkat", short.Title)
	assert.Equal(t, model.SourceTelegram, short.VideoSource)
	assert.Equal(t, model.StatusPublish, short.Status)
	assert.Equal(t, "Duration: 120s, Size: 2.00MB", short.Description)

	// 长于 30 分钟归电影，没有 caption 时用文件 ID 前缀生成标题
	long := catalog.videos[1]
	assert.Equal(t, model.CategoryFilm, long.Category)
	assert.Equal(t, "Video BAAClong", long.Title)
	assert.Equal(t, float64(3600), long.Duration)

	// 中间时长落到默认分类，封面文件 ID 带过来
	mid := catalog.videos[2]
	assert.Equal(t, model.CategoryDramaPendek, mid.Category)
	assert.Equal(t, "AAMthumb", mid.ThumbnailID)
}

func TestChannelSyncCategoryFallback(t *testing.T) {
	source := &fakeChannelSource{videos: []ChannelVideo{
		{FileID: "BAACmid", Duration: 900, FileSize: 1024},
	}}
	catalog := newFakeChannelCatalog()

	// 中间时长时采用调用方指定的分类
	_, err := NewChannelSync(source, catalog).Run(50, model.CategorySerial)
	require.NoError(t, err)
	require.Len(t, catalog.videos, 1)
	assert.Equal(t, model.CategorySerial, catalog.videos[0].Category)
}

func TestChannelSyncUpdatesExisting(t *testing.T) {
	source := &fakeChannelSource{videos: []ChannelVideo{
		{FileID: "BAACknown", Duration: 120, FileSize: 1024},
	}}
	catalog := newFakeChannelCatalog()
	catalog.videos = append(catalog.videos, &model.Video{
		ID:             7,
		TelegramFileID: "BAACknown",
		Status:         model.StatusDraft,
	})

	summary, err := NewChannelSync(source, catalog).Run(50, "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Updated)

	// 已有记录被重新发布
	require.Contains(t, catalog.updates, uint(7))
	assert.Equal(t, model.StatusPublish, catalog.updates[7]["status"])
}

func TestChannelSyncCountsFailures(t *testing.T) {
	source := &fakeChannelSource{videos: []ChannelVideo{
		{FileID: "BAACa", Duration: 120, FileSize: 1024},
		{FileID: "BAACb", Duration: 120, FileSize: 1024},
	}}
	catalog := newFakeChannelCatalog()
	catalog.createErr = errors.New("数据库不可用")

	// 单条失败只计入 skipped，整体不报错
	summary, err := NewChannelSync(source, catalog).Run(50, "")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, summary.Total, summary.Imported+summary.Updated+summary.Skipped)
}

func TestChannelSyncSourceError(t *testing.T) {
	source := &fakeChannelSource{err: errors.New("getUpdates 超时")}
	_, err := NewChannelSync(source, newFakeChannelCatalog()).Run(50, "")
	assert.Error(t, err)
}
