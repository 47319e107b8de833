package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"video-grid/internal/catalog"
	"video-grid/internal/mediatypes"
	"video-grid/internal/settings"
)

func dir(p, name string) catalog.Entry {
	return catalog.Entry{Name: name, Type: mediatypes.EntryTypeDirectory, Path: p}
}

func file(p, name string) catalog.Entry {
	return catalog.Entry{Name: name, Type: mediatypes.EntryTypeFile, Path: p}
}

// fakeServer serves a fixed tree: dir/{a.mp4,ab.mp4} and b.mkv.
type fakeServer struct {
	settings    settings.Settings
	settingsErr error
	catalogs    int
}

func (f *fakeServer) List(_ context.Context, d string) ([]catalog.Entry, error) {
	switch d {
	case "":
		return []catalog.Entry{dir("dir", "dir"), file("b.mkv", "b.mkv")}, nil
	case "dir":
		return []catalog.Entry{file("dir/a.mp4", "a.mp4"), file("dir/ab.mp4", "ab.mp4")}, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeServer) Catalog(context.Context) ([]catalog.Entry, error) {
	f.catalogs++
	return []catalog.Entry{
		dir("dir", "dir"),
		file("dir/a.mp4", "a.mp4"),
		file("dir/ab.mp4", "ab.mp4"),
		file("b.mkv", "b.mkv"),
	}, nil
}

func (f *fakeServer) Settings(context.Context) (settings.Settings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeServer) VideoURL(rel string) string {
	return "http://grid.test/videos/" + rel
}

func newTestApp(t *testing.T, s settings.Settings, rows, cols string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := newApp(context.Background(), &fakeServer{settings: s}, rows, cols, 50, &out)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if _, err := a.shared.Get(context.Background()); err != nil {
		t.Fatalf("catalog load: %v", err)
	}
	out.Reset()
	return a, &out
}

func run(t *testing.T, a *app, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if a.exec(context.Background(), line) {
		t.Fatalf("%q unexpectedly quit", line)
	}
	return out.String()
}

func TestNewAppGridSize(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols string
		want       int
	}{
		{"settings defaults", "", "", 4},
		{"explicit", "1", "3", 3},
		{"clamped", "20", "1", 8},
		{"garbage falls back", "x", "2", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, settings.Defaults(), tt.rows, tt.cols)
			if len(a.cells) != tt.want {
				t.Errorf("cells = %d, want %d", len(a.cells), tt.want)
			}
		})
	}
}

func TestNewAppSettingsError(t *testing.T) {
	var out bytes.Buffer
	srv := &fakeServer{settingsErr: errors.New("offline")}

	a, err := newApp(context.Background(), srv, "", "", 10, &out)
	if err != nil {
		t.Fatal(err)
	}
	if a.settings != settings.Defaults() {
		t.Errorf("Expected default settings, got %+v", a.settings)
	}
	if !strings.Contains(out.String(), "Using default settings") {
		t.Errorf("Expected a notice, got %q", out.String())
	}
}

func TestListAndSearch(t *testing.T) {
	a, out := newTestApp(t, settings.Defaults(), "1", "1")

	got := run(t, a, out, "ls")
	if !strings.Contains(got, "dir/") || !strings.Contains(got, "b\n") {
		t.Errorf("Root listing missing entries:\n%s", got)
	}

	got = run(t, a, out, "a.m")
	if !strings.Contains(got, "dir/a.mp4") || strings.Contains(got, "dir/ab.mp4") {
		t.Errorf("Search a.m should match only dir/a.mp4:\n%s", got)
	}

	got = run(t, a, out, "ab")
	if !strings.Contains(got, "search: ab") || !strings.Contains(got, "dir/") {
		t.Errorf("Short term should show the listing:\n%s", got)
	}

	got = run(t, a, out, "zzzz")
	if !strings.Contains(got, "No matches") {
		t.Errorf("Expected No matches:\n%s", got)
	}

	got = run(t, a, out, "back")
	if strings.Contains(got, "search:") {
		t.Errorf("back should clear the search:\n%s", got)
	}
}

func TestCatalogSharedBetweenCells(t *testing.T) {
	srv := &fakeServer{settings: settings.Defaults()}
	var out bytes.Buffer
	a, err := newApp(context.Background(), srv, "2", "2", 10, &out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.shared.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 4; i++ {
		a.exec(context.Background(), "cell "+string(rune('0'+i)))
		a.exec(context.Background(), "mp4")
	}

	if srv.catalogs != 1 {
		t.Errorf("Expected one catalog fetch for four cells, got %d", srv.catalogs)
	}
}

func TestOpenAndPlay(t *testing.T) {
	a, out := newTestApp(t, settings.Defaults(), "1", "1")

	got := run(t, a, out, "cd 1")
	if !strings.Contains(got, "Cell 1: dir  (up)") {
		t.Errorf("Expected to enter dir:\n%s", got)
	}

	got = run(t, a, out, "play a")
	if !strings.Contains(got, "playing a (muted)") {
		t.Errorf("Expected muted playback:\n%s", got)
	}
	if !strings.Contains(got, "http://grid.test/videos/dir/a.mp4") {
		t.Errorf("Expected video URL:\n%s", got)
	}

	got = run(t, a, out, "back")
	if !strings.Contains(got, "Cell 1: dir") || !strings.Contains(got, "ab") {
		t.Errorf("back should return to the listing:\n%s", got)
	}

	got = run(t, a, out, "up")
	if !strings.Contains(got, "Cell 1: /") {
		t.Errorf("up should return to the root:\n%s", got)
	}

	got = run(t, a, out, "cd nope")
	if !strings.Contains(got, `No entry "nope"`) {
		t.Errorf("Expected unknown entry message:\n%s", got)
	}
}

func TestSingleAudio(t *testing.T) {
	s := settings.Settings{DefaultRows: 1, DefaultCols: 2, DefaultMuted: false, SingleAudio: true}
	a, out := newTestApp(t, s, "", "")

	run(t, a, out, "play 2")
	if got := run(t, a, out, "ls"); strings.Contains(got, "(muted)") {
		t.Errorf("First video should be audible:\n%s", got)
	}

	run(t, a, out, "cell 2")
	if got := run(t, a, out, "play 2"); !strings.Contains(got, "(muted)") {
		t.Errorf("Second video should start muted:\n%s", got)
	}

	got := run(t, a, out, "unmute")
	if !strings.Contains(got, "Cell 1 muted") {
		t.Errorf("Unmuting cell 2 should mute cell 1:\n%s", got)
	}
	if v := a.cells[0].View(); !v.Muted {
		t.Error("Cell 1 view should be muted")
	}

	if got := run(t, a, out, "full"); !strings.Contains(got, "Cell 1 paused") {
		t.Errorf("Fullscreen should pause cell 1:\n%s", got)
	}
}

func TestAudioCommandsNeedPlayer(t *testing.T) {
	a, out := newTestApp(t, settings.Defaults(), "1", "1")

	if got := run(t, a, out, "unmute"); !strings.Contains(got, "is not playing") {
		t.Errorf("Expected not playing notice:\n%s", got)
	}
}

func TestSelectCell(t *testing.T) {
	a, out := newTestApp(t, settings.Defaults(), "", "")

	if got := run(t, a, out, "cell 9"); !strings.Contains(got, "No cell 9 (1-4)") {
		t.Errorf("Unexpected output:\n%s", got)
	}
	if got := run(t, a, out, "cell ../x"); !strings.Contains(got, "No cell ___x") {
		t.Errorf("Input should be sanitized:\n%s", got)
	}

	run(t, a, out, "cell 3")
	if a.active != 2 {
		t.Errorf("active = %d, want 2", a.active)
	}
	if got := run(t, a, out, "grid"); !strings.Contains(got, "*3") {
		t.Errorf("grid should mark the active cell:\n%s", got)
	}
}

func TestLoop(t *testing.T) {
	a, out := newTestApp(t, settings.Defaults(), "1", "1")

	if err := a.loop(context.Background(), strings.NewReader("help\nls\nquit\nls\n"), false); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("Expected help output:\n%s", out.String())
	}
	if strings.Count(out.String(), "Cell 1: /") != 1 {
		t.Errorf("Input after quit must be ignored:\n%s", out.String())
	}
}

func TestLoopCancelled(t *testing.T) {
	a, _ := newTestApp(t, settings.Defaults(), "1", "1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.loop(ctx, strings.NewReader("ls\n"), false); !errors.Is(err, context.Canceled) {
		t.Errorf("loop() error = %v, want context.Canceled", err)
	}
}

func TestPick(t *testing.T) {
	entries := []catalog.Entry{dir("dir", "dir"), file("b.mkv", "b.mkv")}

	tests := []struct {
		arg    string
		want   string
		wantOK bool
	}{
		{"1", "dir", true},
		{"2", "b.mkv", true},
		{"3", "", false},
		{"0", "", false},
		{"b", "b.mkv", true},
		{"b.mkv", "b.mkv", true},
		{"c", "", false},
	}

	for _, tt := range tests {
		got, ok := pick(entries, tt.arg)
		if ok != tt.wantOK || got.Path != tt.want {
			t.Errorf("pick(%q) = %q, %v; want %q, %v", tt.arg, got.Path, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSanitizeCommand(t *testing.T) {
	if got := sanitizeCommand("a b\n-c_1"); got != "a_b__c_1" {
		t.Errorf("sanitizeCommand() = %q", got)
	}
}
