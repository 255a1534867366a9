package service

import (
	"fmt"
	"math/rand"

	"github.com/gunantos/miniapp-telegram/internal/model"
)

// fallbackDrafts 内置样例数据
// 抓取整体失败时用它兜底，保证目录不会是空的
func fallbackDrafts(category string) []*ItemDraft {
	switch category {
	case model.CategorySerial:
		return []*ItemDraft{sampleSeries()}
	case model.CategoryKartun:
		return []*ItemDraft{sampleAnime()}
	default:
		return []*ItemDraft{sampleMovie()}
	}
}

func sampleMovie() *ItemDraft {
	return &ItemDraft{
		Title:        "Paprika (2006)",
		Description:  "A thrilling animated film about dreams and reality",
		ThumbnailURL: "https://image.tmdb.org/t/p/w185/bLUUr474Go1DfeN1HLjE3rnZXBq.jpg",
		StreamURL:    "https://tv10.idlixku.com/movie/paprika-2006/",
		Rating:       7.7,
		Quality:      "BLURAY",
		Year:         2006,
		Genre:        "Animation, Sci-Fi, Thriller",
		Category:     model.CategoryFilm,
	}
}

func sampleSeries() *ItemDraft {
	// 两季共 16 集
	episodes := make([]EpisodeDraft, 0, 16)
	for i := 1; i <= 16; i++ {
		season, episode := 1, i
		if i > 8 {
			season, episode = 2, i-8
		}
		episodes = append(episodes, EpisodeDraft{
			Title:        fmt.Sprintf("Season %d Episode %d", season, episode),
			StreamURL:    fmt.Sprintf("https://tv10.idlixku.com/episode/gen-v-season-%d-episode-%d/", season, episode),
			PartNumber:   i,
			SeasonNumber: season,
			ViewCount:    rand.Intn(episodeViewBound),
		})
	}

	return &ItemDraft{
		Title:        "Gen V",
		Description:  "Spin-off dari The Boys yang mengikuti mahasiswa dengan kekuatan super",
		ThumbnailURL: "https://picsum.photos/seed/genv/300/450.jpg",
		StreamURL:    "https://tv10.idlixku.com/tvseries/gen-v/",
		Rating:       8.9,
		Quality:      "HD",
		Year:         2023,
		Genre:        "Action, Comedy, Drama",
		Category:     model.CategorySerial,
		Episodes:     episodes,
	}
}

func sampleAnime() *ItemDraft {
	episodes := make([]EpisodeDraft, 0, 12)
	for i := 1; i <= 12; i++ {
		episodes = append(episodes, EpisodeDraft{
			Title:        fmt.Sprintf("Episode %d", i),
			StreamURL:    fmt.Sprintf("https://tv10.idlixku.com/episode/demon-slayer-episode-%d/", i),
			PartNumber:   i,
			SeasonNumber: 1,
			ViewCount:    rand.Intn(animeEpViewBound),
		})
	}

	return &ItemDraft{
		Title:        "Demon Slayer: Kimetsu no Yaiba",
		Description:  "Tanjirou menjadi pembasmi iblis untuk menyelamatkan adiknya",
		ThumbnailURL: "https://picsum.photos/seed/demonslayer/300/450.jpg",
		StreamURL:    "https://tv10.idlixku.com/genre/anime/demon-slayer/",
		Rating:       8.7,
		Quality:      "HD",
		Year:         2019,
		Genre:        "Action, Adventure, Fantasy",
		Category:     model.CategoryKartun,
		Episodes:     episodes,
	}
}
