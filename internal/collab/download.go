package collab

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirDownloader materializes downloads as files in a local directory.
type DirDownloader struct {
	Dir string
}

// Download writes data under the configured directory. The filename is
// flattened to its base to keep writes inside the directory.
func (d DirDownloader) Download(filename, _ string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write download %s: %w", path, err)
	}
	return nil
}
