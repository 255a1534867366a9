package service

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ItemDraft 从目标站详情页提取出来的条目草稿
type ItemDraft struct {
	Title        string
	Description  string
	ThumbnailURL string
	StreamURL    string
	Rating       float64
	Quality      string
	Year         int
	Genre        string
	Category     string
	Episodes     []EpisodeDraft
}

// EpisodeDraft 剧集草稿
type EpisodeDraft struct {
	StreamURL    string
	Title        string
	ThumbnailURL string
	EpisodeLabel string
	AirDate      string
	PartNumber   int
	SeasonNumber int
	ViewCount    int
}

// MarkupExtractor 页面结构提取器
// 尽力而为：页面结构对不上时返回 nil / 空列表，不报错
type MarkupExtractor interface {
	ExtractItem(html string) *ItemDraft
	ExtractEpisodes(html string) []EpisodeDraft
}

// 日期里提取年份，形如 "20. Okt, 2023"
var yearPattern = regexp.MustCompile(`\d{2}\.\s\w+,\s(\d{4})`)

// SiteExtractor 针对影视站详情页结构的提取器实现
type SiteExtractor struct{}

func NewSiteExtractor() *SiteExtractor {
	return &SiteExtractor{}
}

// ExtractItem 从详情页 HTML 提取条目元数据
// 找不到条目区块时返回 nil
func (e *SiteExtractor) ExtractItem(html string) *ItemDraft {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	article := doc.Find("article.item.movies").First()
	if article.Length() == 0 {
		return nil
	}

	draft := &ItemDraft{}

	// 封面图的 src 是缩略图，alt 是标题
	img := article.Find("img").First()
	draft.ThumbnailURL, _ = img.Attr("src")
	draft.Title, _ = img.Attr("alt")

	// 评分，解析失败记 0
	ratingText := strings.TrimSpace(article.Find("div.rating").First().Text())
	if rating, err := strconv.ParseFloat(ratingText, 64); err == nil {
		draft.Rating = rating
	}

	draft.Quality = strings.TrimSpace(article.Find("span.quality").First().Text())

	// 第一个链接就是播放页地址
	draft.StreamURL, _ = article.Find("a[href]").First().Attr("href")

	// 日期里带年份，解析失败用当前年份兜底
	draft.Year = time.Now().Year()
	article.Find("span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if match := yearPattern.FindStringSubmatch(s.Text()); len(match) > 1 {
			if year, err := strconv.Atoi(match[1]); err == nil {
				draft.Year = year
				return false
			}
		}
		return true
	})

	draft.Description = fmt.Sprintf("%s (%d) - Rating: %g", draft.Title, draft.Year, draft.Rating)
	draft.Genre = "Action, Drama"

	return draft
}

// ExtractEpisodes 从详情页 HTML 提取剧集列表
// 非剧集页面返回空列表；集数跨季连续递增
func (e *SiteExtractor) ExtractEpisodes(html string) []EpisodeDraft {
	var episodes []EpisodeDraft

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return episodes
	}

	serieContent := doc.Find("#serie_contenido").First()
	if serieContent.Length() == 0 {
		return episodes
	}

	serieContent.Find("div.se-c").Each(func(i int, season *goquery.Selection) {
		seasonNumber := 1
		seasonText := strings.TrimSpace(season.Find("span.se-t").First().Text())
		if n, err := strconv.Atoi(seasonText); err == nil {
			seasonNumber = n
		}

		season.Find("li[class^=mark-]").Each(func(j int, item *goquery.Selection) {
			link := item.Find("a[href]").First()
			streamURL, _ := link.Attr("href")
			title := strings.TrimSpace(link.Text())

			// 链接和标题缺一不可
			if streamURL == "" || title == "" {
				return
			}

			thumbnail, _ := item.Find("img").First().Attr("src")

			episodes = append(episodes, EpisodeDraft{
				StreamURL:    streamURL,
				Title:        title,
				ThumbnailURL: thumbnail,
				EpisodeLabel: strings.TrimSpace(item.Find("div.numerando").First().Text()),
				AirDate:      strings.TrimSpace(item.Find("span.date").First().Text()),
				PartNumber:   len(episodes) + 1,
				SeasonNumber: seasonNumber,
				ViewCount:    rand.Intn(1000),
			})
		})
	})

	return episodes
}
