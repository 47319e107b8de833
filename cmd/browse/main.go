package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"video-grid/internal/browser"
	"video-grid/internal/catalog"
	"video-grid/internal/client"
	"video-grid/internal/search"
	"video-grid/internal/settings"
)

const (
	// Default server address
	defaultServerURL = "http://localhost:8080"
	// Lines reserved around a rendered cell for header and prompt
	reservedLines = 6
	// Suggestions shown when a search has no matches
	maxSuggestions = 3
)

// server is the part of the API client the browser uses.
type server interface {
	browser.Lister
	Catalog(ctx context.Context) ([]catalog.Entry, error)
	Settings(ctx context.Context) (settings.Settings, error)
	VideoURL(rel string) string
}

type app struct {
	srv      server
	shared   *search.SharedCatalog
	cells    []*browser.Cell
	mixer    *browser.Mixer
	settings settings.Settings
	active   int
	out      io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fl := flag.NewFlagSet("browse", flag.ExitOnError)
	serverURL := fl.String("server", envOr("VIDEO_GRID_URL", defaultServerURL), "server URL")
	rows := fl.String("rows", "", "grid rows (default from server settings)")
	cols := fl.String("cols", "", "grid columns (default from server settings)")
	_ = fl.Parse(os.Args[1:])

	c, err := client.New(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(ctx, c, *rows, *cols, maxResults(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := a.loop(ctx, os.Stdin, term.IsTerminal(int(os.Stdin.Fd()))); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// maxResults sizes search output to the terminal height.
func maxResults() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= reservedLines {
		return browser.DefaultMaxResults
	}
	return height - reservedLines
}

// newApp builds a grid of rows x cols cells. Empty rows or cols fall back to
// the server's saved defaults.
func newApp(ctx context.Context, srv server, rows, cols string, limit int, out io.Writer) (*app, error) {
	s, err := srv.Settings(ctx)
	if err != nil {
		fmt.Fprintf(out, "Using default settings: %v\n", err)
		s = settings.Defaults()
	}
	if rows == "" {
		rows = strconv.Itoa(s.DefaultRows)
	}
	if cols == "" {
		cols = strconv.Itoa(s.DefaultCols)
	}
	r, c := browser.ParseGrid(rows, cols)

	a := &app{
		srv:      srv,
		shared:   search.NewSharedCatalog(srv.Catalog),
		mixer:    browser.NewMixer(s.SingleAudio),
		settings: s,
		out:      out,
	}
	// Every cell searches the same catalog; start fetching it now.
	a.shared.Prefetch()

	for i := 0; i < r*c; i++ {
		cell := browser.NewCell(srv, a.shared, browser.Options{MaxResults: limit, Muted: s.DefaultMuted})
		if err := cell.Load(ctx, ""); err != nil {
			fmt.Fprintf(out, "Cell %d: %v\n", i+1, err)
		}
		a.cells = append(a.cells, cell)
	}

	fmt.Fprintf(out, "Grid %dx%d, %d cells. Type help for commands.\n", r, c, len(a.cells))
	return a, nil
}

func (a *app) loop(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprintf(a.out, "[%d %s]> ", a.active+1, a.cell().View().Header)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := a.exec(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

func (a *app) cell() *browser.Cell {
	return a.cells[a.active]
}

// exec runs one input line and reports whether the user asked to quit.
func (a *app) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		printHelp(a.out)
	case "ls":
		a.render(a.active)
	case "grid":
		for i := range a.cells {
			a.summary(i)
		}
	case "cell":
		a.selectCell(arg)
	case "cd", "play":
		a.open(ctx, arg)
	case "up":
		a.report(a.cell().Up(ctx))
		a.render(a.active)
	case "back":
		if a.playing() {
			a.mixer.Stop(a.active)
		}
		a.report(a.cell().Back(ctx))
		a.render(a.active)
	case "mute", "unmute", "full":
		if !a.playing() {
			fmt.Fprintf(a.out, "Cell %d is not playing\n", a.active+1)
			return false
		}
		a.audio(cmd)
	case "reload":
		a.shared.Invalidate()
		a.shared.Prefetch()
		fmt.Fprintln(a.out, "Catalog reloading")
	default:
		a.cell().Type(strings.TrimSpace(line))
		a.render(a.active)
	}
	return false
}

func (a *app) playing() bool {
	_, ok := a.cell().State().(browser.Playing)
	return ok
}

func (a *app) audio(cmd string) {
	switch cmd {
	case "mute":
		a.mixer.Mute(a.active)
		a.cell().SetMuted(true)
		a.render(a.active)
	case "unmute":
		for _, id := range a.mixer.Unmute(a.active) {
			a.cells[id].SetMuted(true)
			fmt.Fprintf(a.out, "Cell %d muted\n", id+1)
		}
		a.cell().SetMuted(false)
		a.render(a.active)
	case "full":
		for _, id := range a.mixer.Fullscreen(a.active) {
			fmt.Fprintf(a.out, "Cell %d paused\n", id+1)
		}
	}
}

func (a *app) report(err error) {
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *app) selectCell(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.cells) {
		fmt.Fprintf(a.out, "No cell %s (1-%d)\n", sanitizeCommand(arg), len(a.cells))
		return
	}
	a.active = n - 1
	a.render(a.active)
}

// open resolves arg as a 1-based entry number or an entry name in the
// active cell's current view.
func (a *app) open(ctx context.Context, arg string) {
	entries := a.cell().View().Entries
	entry, ok := pick(entries, arg)
	if !ok {
		fmt.Fprintf(a.out, "No entry %q\n", arg)
		return
	}

	a.report(a.cell().Open(ctx, entry))
	if a.playing() {
		muted := a.mixer.Play(a.active, a.settings.DefaultMuted)
		a.cell().SetMuted(muted)
	}
	a.render(a.active)
}

func pick(entries []catalog.Entry, arg string) (catalog.Entry, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(entries) {
			return entries[n-1], true
		}
		return catalog.Entry{}, false
	}
	for _, e := range entries {
		if e.Name == arg || browser.DisplayName(e.Name) == arg {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

func (a *app) summary(i int) {
	v := a.cells[i].View()
	marker := " "
	if i == a.active {
		marker = "*"
	}
	switch {
	case v.Video != "":
		fmt.Fprintf(a.out, "%s%d  playing %s%s\n", marker, i+1, v.Video, muteLabel(v.Muted))
	case v.Searching:
		fmt.Fprintf(a.out, "%s%d  %s  search %q, %d shown\n", marker, i+1, v.Header, v.Term, len(v.Entries))
	default:
		fmt.Fprintf(a.out, "%s%d  %s  %d entries\n", marker, i+1, v.Header, len(v.Entries))
	}
}

func (a *app) render(i int) {
	v := a.cells[i].View()

	if v.Video != "" {
		fmt.Fprintf(a.out, "Cell %d playing %s%s\n", i+1, browser.DisplayName(path.Base(v.Video)), muteLabel(v.Muted))
		fmt.Fprintf(a.out, "  %s\n", a.srv.VideoURL(v.Video))
		return
	}

	title := v.Header
	if v.CanGoUp {
		title += "  (up)"
	}
	fmt.Fprintf(a.out, "Cell %d: %s\n", i+1, title)
	if v.Searching {
		fmt.Fprintf(a.out, "  search: %s\n", v.Term)
	}

	if v.Message != "" {
		fmt.Fprintf(a.out, "  %s\n", v.Message)
	}
	for n, e := range v.Entries {
		if e.IsDir() {
			fmt.Fprintf(a.out, "  %3d. %s/\n", n+1, e.Name)
			continue
		}
		label := browser.DisplayName(e.Name)
		if v.Searching {
			label = e.Path
		}
		fmt.Fprintf(a.out, "  %3d. %s\n", n+1, label)
	}
	if v.Hidden > 0 {
		fmt.Fprintf(a.out, "  ... %d more\n", v.Hidden)
	}
	for n, s := range v.Suggestions {
		if n == maxSuggestions {
			break
		}
		fmt.Fprintf(a.out, "  Did you mean %s?\n", s.Path)
	}
}

func muteLabel(muted bool) string {
	if muted {
		return " (muted)"
	}
	return ""
}

// sanitizeCommand returns a safe representation of user input for display.
// Any character that is not alphanumeric, a hyphen, or an underscore is
// replaced with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  ls            - Show the active cell")
	fmt.Fprintln(out, "  grid          - Show every cell")
	fmt.Fprintln(out, "  cell N        - Make cell N active")
	fmt.Fprintln(out, "  cd N|NAME     - Enter a directory or play a video")
	fmt.Fprintln(out, "  up            - Go to the parent directory")
	fmt.Fprintln(out, "  back          - Leave the player or clear the search")
	fmt.Fprintln(out, "  mute, unmute  - Change the player's audio")
	fmt.Fprintln(out, "  full          - Fullscreen the active cell")
	fmt.Fprintln(out, "  reload        - Fetch the catalog again")
	fmt.Fprintln(out, "  quit          - Exit")
	fmt.Fprintln(out, "Anything else searches the whole library from the active cell.")
}
