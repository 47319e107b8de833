package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-grid/internal/catalog"
	"video-grid/internal/mediatypes"
	"video-grid/internal/search"
)

type fakeLister struct {
	dirs  map[string][]catalog.Entry
	calls []string
}

func (f *fakeLister) List(_ context.Context, dir string) ([]catalog.Entry, error) {
	f.calls = append(f.calls, dir)
	entries, ok := f.dirs[dir]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return entries, nil
}

func folder(name, p string) catalog.Entry {
	return catalog.Entry{Name: name, Type: mediatypes.EntryTypeDirectory, Path: p}
}

func newTestCell(t *testing.T) (*Cell, *fakeLister) {
	t.Helper()

	entries := []catalog.Entry{
		folder("dir", "dir"),
		{Name: "a.mp4", Type: mediatypes.EntryTypeFile, Path: "dir/a.mp4"},
		{Name: "ab.mp4", Type: mediatypes.EntryTypeFile, Path: "dir/ab.mp4"},
		folder("empty", "dir/empty"),
		{Name: "b.mkv", Type: mediatypes.EntryTypeFile, Path: "b.mkv"},
	}
	lister := &fakeLister{dirs: map[string][]catalog.Entry{
		"": {folder("dir", "dir"), entries[4]},
		"dir": {
			folder("empty", "dir/empty"),
			entries[1],
			entries[2],
		},
		"dir/empty": {},
	}}

	shared := search.NewSharedCatalog(func(context.Context) ([]catalog.Entry, error) {
		return entries, nil
	})
	_, err := shared.Get(context.Background())
	require.NoError(t, err)

	c := NewCell(lister, shared, Options{Muted: true})
	require.NoError(t, c.Load(context.Background(), ""))
	return c, lister
}

func TestCellInitialListing(t *testing.T) {
	c, _ := newTestCell(t)

	v := c.View()
	assert.Equal(t, "/", v.Header)
	assert.False(t, v.CanGoUp)
	assert.Empty(t, v.Message)
	require.Len(t, v.Entries, 2)
	assert.Equal(t, "dir", v.Entries[0].Path)
}

func TestCellNavigateAndUp(t *testing.T) {
	c, lister := newTestCell(t)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, folder("dir", "dir")))
	v := c.View()
	assert.Equal(t, "dir", v.Header)
	assert.True(t, v.CanGoUp)
	assert.Len(t, v.Entries, 3)

	require.NoError(t, c.Open(ctx, folder("empty", "dir/empty")))
	assert.Equal(t, MsgEmpty, c.View().Message)

	require.NoError(t, c.Up(ctx))
	require.NoError(t, c.Up(ctx))
	assert.Equal(t, Listing{}, c.State())

	calls := len(lister.calls)
	require.NoError(t, c.Up(ctx))
	assert.Len(t, lister.calls, calls, "up at the root must not reload")
}

func TestCellLoadError(t *testing.T) {
	c, _ := newTestCell(t)

	err := c.Load(context.Background(), "missing")
	require.Error(t, err)

	v := c.View()
	assert.Equal(t, MsgLoadError, v.Message)
	assert.Empty(t, v.Entries)
	assert.Equal(t, "missing", v.Header)
}

func TestCellSearch(t *testing.T) {
	c, _ := newTestCell(t)

	c.Type("a")
	v := c.View()
	assert.True(t, v.Searching)
	assert.Len(t, v.Entries, 2, "short term shows the listing")

	c.Type("a.m")
	v = c.View()
	require.Len(t, v.Entries, 1)
	assert.Equal(t, "dir/a.mp4", v.Entries[0].Path)

	c.Type("zzzz")
	v = c.View()
	assert.Equal(t, MsgNoMatches, v.Message)
	assert.Empty(t, v.Entries)

	c.Type("")
	assert.Equal(t, Listing{}, c.State())
	assert.False(t, c.View().Searching)
}

func TestCellNoMatchesOffersSuggestions(t *testing.T) {
	c, _ := newTestCell(t)

	c.Type("abb")
	v := c.View()
	assert.Equal(t, MsgNoMatches, v.Message)
	require.NotEmpty(t, v.Suggestions)
	assert.Equal(t, "ab.mp4", v.Suggestions[0].Name)
}

func TestCellPlayAndBack(t *testing.T) {
	c, lister := newTestCell(t)
	ctx := context.Background()

	c.Type("mp4")
	require.NoError(t, c.Open(ctx, c.View().Entries[0]))

	v := c.View()
	assert.Equal(t, "dir/a.mp4", v.Video)
	assert.True(t, v.Muted)

	c.SetMuted(false)
	assert.False(t, c.View().Muted)

	c.Type("ignored")
	_, playing := c.State().(Playing)
	assert.True(t, playing)

	calls := len(lister.calls)
	require.NoError(t, c.Back(ctx))
	assert.Equal(t, Searching{Path: "", Term: "mp4"}, c.State())
	assert.Len(t, lister.calls, calls+1, "leaving the player reloads the listing")
	assert.Len(t, c.View().Entries, 2)

	require.NoError(t, c.Back(ctx))
	assert.Equal(t, Listing{}, c.State())
}

func TestCellTruncatesMatches(t *testing.T) {
	entries := make([]catalog.Entry, 0, 10)
	for _, n := range []string{"clip1", "clip2", "clip3", "clip4", "clip5"} {
		entries = append(entries, catalog.Entry{Name: n + ".mp4", Type: mediatypes.EntryTypeFile, Path: n + ".mp4"})
	}
	shared := search.NewSharedCatalog(func(context.Context) ([]catalog.Entry, error) { return entries, nil })
	_, err := shared.Get(context.Background())
	require.NoError(t, err)

	c := NewCell(&fakeLister{dirs: map[string][]catalog.Entry{"": entries}}, shared, Options{MaxResults: 2})
	require.NoError(t, c.Load(context.Background(), ""))

	c.Type("clip")
	v := c.View()
	assert.Len(t, v.Entries, 2)
	assert.Equal(t, 3, v.Hidden)
}

func TestMixerExclusive(t *testing.T) {
	m := NewMixer(true)

	assert.False(t, m.Play(0, false), "first video may play with sound")
	assert.True(t, m.Play(1, false), "second video starts muted while another is audible")
	assert.Equal(t, []int{0}, m.Audible())

	assert.Equal(t, []int{0}, m.Unmute(1))
	assert.Equal(t, []int{1}, m.Audible())

	m.Play(2, true)
	assert.Equal(t, []int{0, 2}, m.Fullscreen(1))
	assert.Equal(t, []int{1}, m.Audible())

	m.Stop(1)
	assert.Empty(t, m.Audible())
	assert.False(t, m.Play(3, false))
}

func TestMixerNonExclusive(t *testing.T) {
	m := NewMixer(false)

	assert.False(t, m.Play(0, false))
	assert.False(t, m.Play(1, false))
	assert.Nil(t, m.Unmute(1))
	assert.Equal(t, []int{0, 1}, m.Audible())

	m.Mute(0)
	assert.Equal(t, []int{1}, m.Audible())
}
