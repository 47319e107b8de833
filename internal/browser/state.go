package browser

import "strings"

// State is the mode of one cell.
type State interface {
	// Dir is the directory the cell returns to when leaving this state.
	Dir() string
	isState()
}

// Listing shows the contents of Path.
type Listing struct {
	Path string
}

// Searching filters the whole catalog by Term while browsing Path.
type Searching struct {
	Path string
	Term string
}

// Playing plays Video in place. Return is the state restored by Back.
type Playing struct {
	Video  string
	Return State
}

func (s Listing) Dir() string   { return s.Path }
func (s Searching) Dir() string { return s.Path }

func (s Playing) Dir() string {
	if s.Return == nil {
		return Parent(s.Video)
	}
	return s.Return.Dir()
}

func (Listing) isState()   {}
func (Searching) isState() {}
func (Playing) isState()   {}

// Parent drops the last segment of a slash-separated relative path. The
// parent of a top-level entry is the root, "".
func Parent(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// Navigate enters dir. A playing cell ignores navigation.
func Navigate(s State, dir string) State {
	if _, ok := s.(Playing); ok {
		return s
	}
	return Listing{Path: dir}
}

// Up moves to the parent directory, ending any search. A playing cell and
// a cell already at the root are left as they are.
func Up(s State) State {
	switch st := s.(type) {
	case Listing:
		if st.Path == "" {
			return st
		}
		return Listing{Path: Parent(st.Path)}
	case Searching:
		return Listing{Path: Parent(st.Path)}
	default:
		return s
	}
}

// Type applies a new search term. A blank term returns to the listing.
func Type(s State, term string) State {
	switch st := s.(type) {
	case Listing:
		if strings.TrimSpace(term) == "" {
			return st
		}
		return Searching{Path: st.Path, Term: term}
	case Searching:
		if strings.TrimSpace(term) == "" {
			return Listing{Path: st.Path}
		}
		return Searching{Path: st.Path, Term: term}
	default:
		return s
	}
}

// Play starts video. Playing another video from the player keeps the
// state it was started from.
func Play(s State, video string) State {
	if st, ok := s.(Playing); ok {
		return Playing{Video: video, Return: st.Return}
	}
	return Playing{Video: video, Return: s}
}

// Back leaves the player for the state it was started from, or clears an
// active search. Back on a plain listing is a no-op.
func Back(s State) State {
	switch st := s.(type) {
	case Playing:
		if st.Return == nil {
			return Listing{Path: st.Dir()}
		}
		return st.Return
	case Searching:
		return Listing{Path: st.Path}
	default:
		return s
	}
}
