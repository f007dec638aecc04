package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	return []Item{
		{ID: 19995, Title: "Avatar", Tags: "alien marine pandora", VoteAverage: 7.2, VoteCount: 11800},
		{ID: 27205, Title: "Inception", Tags: "dream heist", VoteAverage: 8.1, VoteCount: 13752},
		{ID: 603, Title: "The Matrix", Tags: "hacker simulation", VoteAverage: 7.9, VoteCount: 8907},
		{ID: 604, Title: "The Matrix Reloaded", Tags: "hacker sequel", VoteAverage: 6.7, VoteCount: 3443},
		{ID: 1, Title: "avatar", Tags: "duplicate row", VoteAverage: 1, VoteCount: 1},
	}
}

func TestNewRejectsEmptyInput(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrUninitialized)
}

func TestNewCopiesInput(t *testing.T) {
	items := sampleItems()
	c, err := New(items)
	require.NoError(t, err)

	items[0].Title = "changed"
	assert.Equal(t, "Avatar", c.At(0).Title)

	out := c.Items()
	out[1].Title = "changed"
	assert.Equal(t, "Inception", c.At(1).Title)
}

func TestFindIsCaseInsensitiveAndPrefersFirstRow(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	idx, item, ok := c.Find("AVATAR")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 19995, item.ID)

	_, _, ok = c.Find("Avatar 2")
	assert.False(t, ok)

	assert.Equal(t, []string{"avatar"}, c.Duplicates())
}

func TestFindPartial(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	idx, item, ok := c.FindPartial("matrix")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "The Matrix", item.Title)

	_, _, ok = c.FindPartial("")
	assert.False(t, ok)
}

func TestSearchKeepsCatalogOrderAndLimit(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	found := c.Search("THE", 10)
	require.Len(t, found, 2)
	assert.Equal(t, "The Matrix", found[0].Title)
	assert.Equal(t, "The Matrix Reloaded", found[1].Title)

	assert.Len(t, c.Search("the", 1), 1)
	assert.Empty(t, c.Search("", 10))
}

func TestTopRated(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	top := c.TopRated(3)
	require.Len(t, top, 3)
	assert.Equal(t, "Inception", top[0].Title)
	assert.Equal(t, "The Matrix", top[1].Title)
	assert.Equal(t, "Avatar", top[2].Title)

	assert.Len(t, c.TopRated(100), 5)
	assert.Empty(t, c.TopRated(0))
}

func TestNotFoundErrorCarriesExamples(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	nf := c.NotFound("Nope")
	assert.Equal(t, []string{"Avatar", "Inception", "The Matrix", "The Matrix Reloaded", "avatar"}, nf.Examples)
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Contains(t, nf.Error(), `"Nope"`)
}

func TestStats(t *testing.T) {
	c, err := New(sampleItems())
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 5, stats.TotalMovies)
	assert.Len(t, stats.SampleTitles, 5)
	assert.Equal(t, []string{"avatar"}, stats.Duplicates)
}

func TestItemYear(t *testing.T) {
	assert.Equal(t, "2010", Item{ReleaseDate: "2010-07-15"}.Year())
	assert.Equal(t, "", Item{}.Year())
}
