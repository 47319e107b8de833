package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

type call struct {
	name string
	args []string
}

// fakeRunner answers ffprobe with a fixed output and makes ffmpeg write a
// small JPEG (or garbage) to its last argument on the in-memory fs.
type fakeRunner struct {
	mu sync.Mutex
	fs afero.Fs

	probeOut    string
	probeErr    error
	extractErr  error
	extractData []byte

	calls []call
}

func newFakeRunner(fs afero.Fs, probeOut string) *fakeRunner {
	return &fakeRunner{fs: fs, probeOut: probeOut, extractData: tinyJPEG()}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})

	switch name {
	case "ffprobe":
		if f.probeErr != nil {
			return nil, f.probeErr
		}
		return []byte(f.probeOut), nil
	case "ffmpeg":
		out := args[len(args)-1]
		if f.extractErr != nil {
			// A failed ffmpeg may leave a truncated file behind.
			_ = afero.WriteFile(f.fs, out, []byte{0xff, 0xd8}, 0o644)
			return nil, f.extractErr
		}
		return nil, afero.WriteFile(f.fs, out, f.extractData, 0o644)
	}
	return nil, errors.New("unexpected tool " + name)
}

func (f *fakeRunner) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (f *fakeRunner) last(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].name == name {
			return f.calls[i].args
		}
	}
	return nil
}

func tinyJPEG() []byte {
	img := imaging.New(4, 4, color.NRGBA{R: 200, G: 20, B: 20, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, image.Image(img), imaging.JPEG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
