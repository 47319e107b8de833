package browser

import (
	"context"
	"path"
	"strings"

	"video-grid/internal/catalog"
	"video-grid/internal/logging"
	"video-grid/internal/search"
)

// Messages shown in place of entries.
const (
	MsgLoadError = "Error loading directory"
	MsgNoMatches = "No matches"
	MsgEmpty     = "Empty directory"
)

// DefaultMaxResults bounds how many search matches a view renders.
const DefaultMaxResults = 200

// Lister fetches one directory listing, sorted for display.
type Lister interface {
	List(ctx context.Context, dir string) ([]catalog.Entry, error)
}

// View is everything a renderer needs to draw a cell.
type View struct {
	// Header is the browsed directory, "/" at the root.
	Header  string
	CanGoUp bool

	// Searching is set while a search term is active, even if the term is
	// too short to filter.
	Searching bool
	Term      string

	Message     string
	Entries     []catalog.Entry
	Hidden      int
	Suggestions []search.Suggestion

	// Video is set while playing.
	Video string
	Muted bool
}

// Options configures a Cell.
type Options struct {
	// MaxResults bounds rendered search matches; <= 0 uses DefaultMaxResults.
	MaxResults int
	// Muted is the initial mute state of the player.
	Muted bool
}

// Cell is one grid cell. It is not safe for concurrent use.
type Cell struct {
	lister  Lister
	shared  *search.SharedCatalog
	session *search.Session
	opts    Options

	state   State
	listing []catalog.Entry
	loadErr error
	results search.Results
	muted   bool
}

// NewCell creates a cell at the root. Call Load before rendering.
func NewCell(lister Lister, shared *search.SharedCatalog, opts Options) *Cell {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Cell{
		lister:  lister,
		shared:  shared,
		session: search.NewSession(shared),
		opts:    opts,
		state:   Listing{},
		muted:   opts.Muted,
	}
}

// State returns the current state.
func (c *Cell) State() State {
	return c.state
}

// Session exposes the cell's search session, mostly for its Stats.
func (c *Cell) Session() *search.Session {
	return c.session
}

// Load lists dir and shows it, ending any search.
func (c *Cell) Load(ctx context.Context, dir string) error {
	return c.enter(ctx, Navigate(Back(c.state), dir))
}

// Open enters a directory entry or plays a file entry.
func (c *Cell) Open(ctx context.Context, e catalog.Entry) error {
	if e.IsDir() {
		return c.enter(ctx, Navigate(c.state, e.Path))
	}
	c.state = Play(c.state, e.Path)
	c.muted = c.opts.Muted
	return nil
}

// Up moves to the parent directory.
func (c *Cell) Up(ctx context.Context) error {
	next := Up(c.state)
	if next == c.state {
		return nil
	}
	return c.enter(ctx, next)
}

// Back leaves the player, reloading the directory it was started from, or
// clears the search.
func (c *Cell) Back(ctx context.Context) error {
	switch c.state.(type) {
	case Playing:
		return c.enter(ctx, Back(c.state))
	case Searching:
		c.state = Back(c.state)
		c.refresh()
	}
	return nil
}

// Type sets the search term.
func (c *Cell) Type(term string) {
	next := Type(c.state, term)
	if _, ok := next.(Playing); ok {
		return
	}
	c.state = next
	c.refresh()
}

// SetMuted changes the player's mute state.
func (c *Cell) SetMuted(muted bool) {
	c.muted = muted
}

func (c *Cell) enter(ctx context.Context, next State) error {
	dir := next.Dir()
	listing, err := c.lister.List(ctx, dir)
	if err != nil {
		logging.Warn("Failed to list %q: %v", dir, err)
		listing = nil
	}

	c.state = next
	c.listing = listing
	c.loadErr = err
	c.session.Navigate(dir, listing)
	c.refresh()
	return err
}

func (c *Cell) refresh() {
	term := ""
	if s, ok := c.state.(Searching); ok {
		term = s.Term
	}
	c.results = c.session.Search(term)
}

// View derives what to render from the current state.
func (c *Cell) View() View {
	dir := c.state.Dir()
	v := View{Header: header(dir), CanGoUp: dir != ""}

	switch st := c.state.(type) {
	case Playing:
		v.Video = st.Video
		v.Muted = c.muted
		return v
	case Searching:
		v.Searching = true
		v.Term = st.Term
	}

	if c.results.Mode == search.ModeMatches {
		if len(c.results.Matches) == 0 {
			v.Message = MsgNoMatches
			v.Suggestions = search.Suggest(c.shared.Peek(), c.results.Query, 5, search.DefaultMinSimilarity)
			return v
		}
		shown := search.Truncate(c.results.Matches, c.opts.MaxResults)
		v.Hidden = len(c.results.Matches) - len(shown)
		v.Entries = make([]catalog.Entry, len(shown))
		for i, it := range shown {
			v.Entries[i] = it.Entry
		}
		return v
	}

	switch {
	case c.loadErr != nil:
		v.Message = MsgLoadError
	case len(c.listing) == 0:
		v.Message = MsgEmpty
	default:
		v.Entries = c.listing
	}
	return v
}

func header(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}

// DisplayName strips the extension from a file name for display.
func DisplayName(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name || strings.Contains(ext, "/") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
