package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Cache is the local artifact store for model files.
type Cache interface {
	// Exists reports whether the artifact for modelID is staged locally.
	Exists(modelID string) bool

	// Acquire downloads the artifact for modelID, reporting progress as
	// fractions in [0,1]. onProgress may be nil.
	Acquire(ctx context.Context, modelID string, onProgress func(float64)) error
}

// DirCache stores model artifacts as <dir>/<modelID>.gguf, acquired from
// <baseURL>/<modelID>.gguf. Downloads land in a temp file and are renamed
// into place only after completing, so a partial download never looks
// staged.
type DirCache struct {
	dir     string
	baseURL string
	client  *http.Client

	// Checksums maps modelID to the expected hex sha256 of its artifact.
	// Artifacts without an entry are not verified.
	Checksums map[string]string
}

// NewDirCache creates a cache rooted at dir, acquiring from baseURL.
func NewDirCache(dir, baseURL string) *DirCache {
	return &DirCache{
		dir:     dir,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Minute},
	}
}

// Path returns where the artifact for modelID lives (staged or not).
func (c *DirCache) Path(modelID string) string {
	return filepath.Join(c.dir, modelID+".gguf")
}

func (c *DirCache) Exists(modelID string) bool {
	info, err := os.Stat(c.Path(modelID))
	return err == nil && info.Size() > 0
}

func (c *DirCache) Acquire(ctx context.Context, modelID string, onProgress func(float64)) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	url := c.baseURL + "/" + modelID + ".gguf"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build acquisition request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", modelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("acquire %s: unexpected status %s", modelID, resp.Status)
	}

	tmp, err := os.CreateTemp(c.dir, modelID+".*.partial")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	writer := io.MultiWriter(tmp, hasher)

	var written int64
	total := resp.ContentLength
	buf := make([]byte, 256*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := writer.Write(buf[:n]); err != nil {
				return fmt.Errorf("write artifact: %w", err)
			}
			written += int64(n)
			if onProgress != nil && total > 0 {
				onProgress(float64(written) / float64(total))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read artifact: %w", readErr)
		}
	}

	if want, ok := c.Checksums[modelID]; ok {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != want {
			return fmt.Errorf("artifact %s checksum mismatch: got %s, want %s", modelID, got, want)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path(modelID)); err != nil {
		return fmt.Errorf("stage artifact: %w", err)
	}

	if onProgress != nil {
		onProgress(1.0)
	}
	return nil
}
