package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// TempSibling returns a hidden, uniquely named path next to target that keeps
// target's extension, e.g. "dir/.clip.mp4.3f2a....tmp.jpg" for "dir/clip.mp4.jpg".
// Hidden names keep half-written files out of listings and the catalog.
func TempSibling(target string) string {
	dir, base := filepath.Split(target)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp%s", base, uuid.NewString(), ext))
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	start := time.Now()
	tmp := TempSibling(path)

	err := afero.WriteFile(fs, tmp, data, perm)
	if err == nil {
		err = fs.Rename(tmp, path)
	}
	if err != nil {
		_ = fs.Remove(tmp)
	}

	if obs := observe(); obs != nil {
		obs.ObserveOperation(defaultResolver.Resolve(path), "write", time.Since(start).Seconds(), err)
	}

	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return nil
}
