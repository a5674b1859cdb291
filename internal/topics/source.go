package topics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source loads the raw text for a topic.
type Source interface {
	Load(ctx context.Context, topic string) (string, error)
}

// FileSource reads topic text from <dir>/<topic>.txt.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Load(_ context.Context, topic string) (string, error) {
	name := filepath.Base(topic) // no path traversal via topic names
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", fmt.Errorf("load topic %q: %w", topic, err)
	}
	return string(data), nil
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, topic string) (string, error)

func (f SourceFunc) Load(ctx context.Context, topic string) (string, error) {
	return f(ctx, topic)
}

var _ Source = (*FileSource)(nil)
var _ Source = SourceFunc(nil)

func validTopic(topic string) bool {
	return strings.TrimSpace(topic) != ""
}
