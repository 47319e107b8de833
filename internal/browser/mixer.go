package browser

import (
	"sort"
	"sync"
)

type track struct {
	playing bool
	muted   bool
}

// Mixer tracks the players of a grid. In exclusive mode at most one playing
// video is audible: a video that starts while another is audible starts
// muted, and unmuting one video mutes all the others.
type Mixer struct {
	mu        sync.Mutex
	exclusive bool
	tracks    map[int]*track
}

// NewMixer creates a Mixer. exclusive enables the single-audio rule.
func NewMixer(exclusive bool) *Mixer {
	return &Mixer{exclusive: exclusive, tracks: make(map[int]*track)}
}

// Play records that cell id started playing and returns the mute state it
// must use.
func (m *Mixer) Play(id int, muted bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exclusive && !muted {
		for other, t := range m.tracks {
			if other != id && t.playing && !t.muted {
				muted = true
				break
			}
		}
	}
	m.tracks[id] = &track{playing: true, muted: muted}
	return muted
}

// Unmute makes cell id audible and returns the cells muted as a result, in
// ascending order.
func (m *Mixer) Unmute(id int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.track(id)
	t.muted = false

	if !m.exclusive {
		return nil
	}
	var muted []int
	for other, t := range m.tracks {
		if other != id && !t.muted {
			t.muted = true
			muted = append(muted, other)
		}
	}
	sort.Ints(muted)
	return muted
}

// Mute silences cell id.
func (m *Mixer) Mute(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.track(id).muted = true
}

// Stop forgets cell id's player.
func (m *Mixer) Stop(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, id)
}

// Fullscreen pauses every other playing cell and returns them in ascending
// order.
func (m *Mixer) Fullscreen(id int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var paused []int
	for other, t := range m.tracks {
		if other != id && t.playing {
			t.playing = false
			paused = append(paused, other)
		}
	}
	sort.Ints(paused)
	return paused
}

// Audible returns the cells currently playing with sound.
func (m *Mixer) Audible() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []int
	for id, t := range m.tracks {
		if t.playing && !t.muted {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

func (m *Mixer) track(id int) *track {
	t, ok := m.tracks[id]
	if !ok {
		t = &track{muted: true}
		m.tracks[id] = t
	}
	return t
}
