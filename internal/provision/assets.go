package provision

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Assets is the bundled-asset source used to seed the cache without a
// network acquisition. Absence of an asset is ordinary, never fatal.
type Assets interface {
	// CopyAsset stages the named asset into the destination directory
	// and returns the staged path.
	CopyAsset(name string) (string, error)
}

// DirAssets copies bundled assets from a seed directory into the models
// directory.
type DirAssets struct {
	seedDir string
	destDir string
}

// NewDirAssets creates an asset source reading from seedDir and staging
// into destDir.
func NewDirAssets(seedDir, destDir string) *DirAssets {
	return &DirAssets{seedDir: seedDir, destDir: destDir}
}

func (a *DirAssets) CopyAsset(name string) (string, error) {
	src, err := os.Open(filepath.Join(a.seedDir, name))
	if err != nil {
		return "", fmt.Errorf("open bundled asset %q: %w", name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(a.destDir, 0o755); err != nil {
		return "", fmt.Errorf("create models dir: %w", err)
	}

	destPath := filepath.Join(a.destDir, name)
	tmp, err := os.CreateTemp(a.destDir, name+".*.seed")
	if err != nil {
		return "", fmt.Errorf("create temp seed: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("copy asset %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp seed: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", fmt.Errorf("stage asset %q: %w", name, err)
	}
	return destPath, nil
}
