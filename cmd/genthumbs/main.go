package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"video-grid/internal/indexer"
	"video-grid/internal/logging"
	"video-grid/internal/media"
	"video-grid/internal/mediatypes"
)

const (
	// Default thumbnail root, relative to the working directory
	defaultThumbsDir = "thumbs"
	// How long a new file must be quiet before it is processed in watch mode
	defaultSettle = 2 * time.Second
)

type options struct {
	dir     string
	thumbs  string
	ffmpeg  string
	ffprobe string
	stale   bool
	watch   bool
	settle  time.Duration
	exts    mediatypes.ExtensionSet
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, afero.NewOsFs(), nil, os.Args[1:], os.Stdout, os.Stderr))
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fl := flag.NewFlagSet("genthumbs", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.StringVar(&opts.thumbs, "thumbs", envOr("THUMBS_DIR", defaultThumbsDir), "thumbnail root")
	fl.StringVar(&opts.ffmpeg, "ffmpeg", envOr("FFMPEG_PATH", "ffmpeg"), "ffmpeg binary")
	fl.StringVar(&opts.ffprobe, "ffprobe", envOr("FFPROBE_PATH", "ffprobe"), "ffprobe binary")
	fl.BoolVar(&opts.stale, "stale", false, "regenerate thumbnails older than their video")
	fl.BoolVar(&opts.watch, "watch", false, "keep running and process new videos")
	fl.Usage = func() {
		fmt.Fprintln(stderr, "Usage: genthumbs [flags] <directory>")
		fl.PrintDefaults()
	}

	if err := fl.Parse(args); err != nil {
		return opts, err
	}
	if fl.NArg() != 1 {
		fl.Usage()
		return opts, errors.New("expected exactly one directory")
	}

	opts.dir = fl.Arg(0)
	opts.settle = defaultSettle
	opts.exts = mediatypes.ParseExtensions(os.Getenv("VIDEO_EXTENSIONS"))

	if abs, err := filepath.Abs(opts.thumbs); err == nil {
		opts.thumbs = abs
	}
	return opts, nil
}

// run returns the process exit code. A nil runner executes the real tools.
func run(ctx context.Context, fs afero.Fs, runner media.Runner, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	info, err := fs.Stat(opts.dir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(stderr, "Error: %s is not a readable directory\n", opts.dir)
		return 1
	}

	policy := media.StaleNever
	if opts.stale {
		policy = media.StaleModTime
	}

	sampler := media.NewSampler(opts.ffprobe, 0, runner)
	materializer := media.NewMaterializer(fs, media.MaterializerConfig{
		ThumbsRoot: opts.thumbs,
		FFmpegPath: opts.ffmpeg,
		Policy:     policy,
	}, sampler, runner)
	walker := indexer.NewWalker(fs, opts.exts, indexer.Options{
		Exclude: []string{opts.thumbs},
		Label:   "thumbnails",
	})

	fmt.Fprintf(stdout, "Scanning %s for videos...\n", opts.dir)
	fmt.Fprintf(stdout, "Saving thumbnails to %s...\n", opts.thumbs)

	result, err := indexer.New(walker, materializer, opts.dir, 0).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Interrupted.")
			return 130
		}
		fmt.Fprintf(stderr, "Critical error during scan: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Generated %d, skipped %d, no duration %d, failed %d (%d videos in %d directories)\n",
		result.Generated, result.Skipped, result.NoDuration, result.Failed, result.Videos, result.Directories)

	if opts.watch {
		fmt.Fprintf(stdout, "Watching %s for new videos, press Ctrl+C to stop\n", opts.dir)
		watcher := indexer.NewWatcher(walker, materializer, opts.dir, opts.settle)
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Watch stopped: %v", err)
			return 1
		}
	}

	fmt.Fprintln(stdout, "Done.")
	return 0
}
