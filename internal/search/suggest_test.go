package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-grid/internal/catalog"
)

func TestSuggest(t *testing.T) {
	ix := NewIndex([]catalog.Entry{
		file("Holiday.mp4", "trips/Holiday.mp4"),
		file("Holidays 2020.mkv", "trips/Holidays 2020.mkv"),
		file("Birthday.mp4", "Birthday.mp4"),
		file("zzz.mp4", "zzz.mp4"),
	}, 1)

	got := Suggest(ix, "holday", 5, DefaultMinSimilarity)
	require.NotEmpty(t, got)
	assert.Equal(t, "Holiday.mp4", got[0].Name)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
	for _, s := range got {
		assert.NotEqual(t, "zzz.mp4", s.Name)
	}
}

func TestSuggestLimitAndEdgeCases(t *testing.T) {
	ix := NewIndex([]catalog.Entry{
		file("clip1.mp4", "clip1.mp4"),
		file("clip2.mp4", "clip2.mp4"),
		file("clip3.mp4", "clip3.mp4"),
	}, 1)

	assert.Len(t, Suggest(ix, "clip", 2, 0.5), 2)
	assert.Nil(t, Suggest(ix, "", 5, 0.5))
	assert.Nil(t, Suggest(ix, "clip", 0, 0.5))
	assert.Nil(t, Suggest(nil, "clip", 5, 0.5))
}
