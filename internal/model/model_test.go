package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsValidCategory(c))
	}
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("MOVIE"))
	assert.False(t, IsValidCategory("film"))
}

func TestVideoIsSerial(t *testing.T) {
	assert.True(t, (&Video{Category: CategorySerial}).IsSerial())
	assert.True(t, (&Video{Category: CategoryKartun}).IsSerial())
	assert.False(t, (&Video{Category: CategoryFilm}).IsSerial())
	assert.False(t, (&Video{Category: CategoryDramaPendek}).IsSerial())
}

func TestMarkCompleted(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		duration float64
		want     bool
	}{
		{name: "看完", progress: 3600, duration: 3600, want: true},
		{name: "超过95%", progress: 3500, duration: 3600, want: true},
		{name: "刚过一半", progress: 1800, duration: 3600, want: false},
		{name: "时长未知", progress: 500, duration: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &WatchHistory{Progress: tt.progress, Duration: tt.duration}
			h.MarkCompleted()
			assert.Equal(t, tt.want, h.Completed)
		})
	}
}
