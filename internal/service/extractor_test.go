package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleItemHTML = `
<html><body>
<article class="item movies">
  <div class="poster">
    <img src="https://cdn.example.com/poster.jpg" alt="Paprika">
    <div class="rating">7.7</div>
    <span class="quality">BLURAY</span>
    <a href="https://tv10.idlixku.com/movie/paprika-2006/">Tonton</a>
  </div>
  <div class="data">
    <span>25. Mei, 2006</span>
  </div>
</article>
</body></html>`

const sampleSeriesHTML = `
<html><body>
<article class="item movies">
  <img src="https://cdn.example.com/genv.jpg" alt="Gen V">
  <a href="https://tv10.idlixku.com/tvseries/gen-v/">Tonton</a>
</article>
<div id="serie_contenido">
  <div class="se-c">
    <span class="se-t">1</span>
    <ul>
      <li class="mark-1">
        <img src="https://cdn.example.com/ep1.jpg">
        <div class="numerando">1 - 1</div>
        <a href="https://tv10.idlixku.com/episode/gen-v-1x1/">Episode 1</a>
        <span class="date">Sep. 29, 2023</span>
      </li>
      <li class="mark-2">
        <div class="numerando">1 - 2</div>
        <a href="https://tv10.idlixku.com/episode/gen-v-1x2/">Episode 2</a>
        <span class="date">Sep. 29, 2023</span>
      </li>
    </ul>
  </div>
  <div class="se-c">
    <span class="se-t">2</span>
    <ul>
      <li class="mark-3">
        <div class="numerando">2 - 1</div>
        <a href="https://tv10.idlixku.com/episode/gen-v-2x1/">Episode 1</a>
        <span class="date">Okt. 10, 2024</span>
      </li>
    </ul>
  </div>
</div>
</body></html>`

func TestSiteExtractorExtractItem(t *testing.T) {
	e := NewSiteExtractor()

	draft := e.ExtractItem(sampleItemHTML)
	require.NotNil(t, draft)

	assert.Equal(t, "Paprika", draft.Title)
	assert.Equal(t, "https://cdn.example.com/poster.jpg", draft.ThumbnailURL)
	assert.Equal(t, "https://tv10.idlixku.com/movie/paprika-2006/", draft.StreamURL)
	assert.Equal(t, 7.7, draft.Rating)
	assert.Equal(t, "BLURAY", draft.Quality)
	assert.Equal(t, 2006, draft.Year)
	assert.Equal(t, "Paprika (2006) - Rating: 7.7", draft.Description)
}

func TestSiteExtractorExtractItemMissingArticle(t *testing.T) {
	e := NewSiteExtractor()

	// 没有条目区块时直接返回 nil，不报错
	assert.Nil(t, e.ExtractItem("<html><body><p>not found</p></body></html>"))
	assert.Nil(t, e.ExtractItem(""))
}

func TestSiteExtractorExtractItemDefaults(t *testing.T) {
	e := NewSiteExtractor()

	// 评分和日期都缺失：评分记 0，年份用当前年
	html := `<article class="item movies">
		<img src="https://cdn.example.com/x.jpg" alt="Unknown">
		<a href="https://example.com/movie/unknown/">x</a>
	</article>`

	draft := e.ExtractItem(html)
	require.NotNil(t, draft)
	assert.Equal(t, float64(0), draft.Rating)
	assert.Equal(t, time.Now().Year(), draft.Year)
	assert.Equal(t, fmt.Sprintf("Unknown (%d) - Rating: 0", time.Now().Year()), draft.Description)
}

func TestSiteExtractorExtractEpisodes(t *testing.T) {
	e := NewSiteExtractor()

	episodes := e.ExtractEpisodes(sampleSeriesHTML)
	require.Len(t, episodes, 3)

	// 集数跨季连续递增
	for i, ep := range episodes {
		assert.Equal(t, i+1, ep.PartNumber)
	}

	assert.Equal(t, "Episode 1", episodes[0].Title)
	assert.Equal(t, "https://tv10.idlixku.com/episode/gen-v-1x1/", episodes[0].StreamURL)
	assert.Equal(t, "https://cdn.example.com/ep1.jpg", episodes[0].ThumbnailURL)
	assert.Equal(t, "1 - 1", episodes[0].EpisodeLabel)
	assert.Equal(t, "Sep. 29, 2023", episodes[0].AirDate)
	assert.Equal(t, 1, episodes[0].SeasonNumber)

	// 第二季从第三条开始
	assert.Equal(t, 2, episodes[2].SeasonNumber)
	assert.Equal(t, "2 - 1", episodes[2].EpisodeLabel)
}

func TestSiteExtractorExtractEpisodesNotSeries(t *testing.T) {
	e := NewSiteExtractor()

	// 电影页没有剧集容器
	assert.Empty(t, e.ExtractEpisodes(sampleItemHTML))
}

func TestSiteExtractorExtractEpisodesSkipsIncomplete(t *testing.T) {
	e := NewSiteExtractor()

	// 缺链接或缺标题的条目要跳过
	html := `<div id="serie_contenido">
	  <div class="se-c">
	    <span class="se-t">1</span>
	    <li class="mark-1"><div class="numerando">1 - 1</div><a href="">Episode 1</a></li>
	    <li class="mark-2"><div class="numerando">1 - 2</div><a href="https://example.com/ep2/">Episode 2</a></li>
	  </div>
	</div>`

	episodes := e.ExtractEpisodes(html)
	require.Len(t, episodes, 1)
	assert.Equal(t, "Episode 2", episodes[0].Title)
	assert.Equal(t, 1, episodes[0].PartNumber)
}
