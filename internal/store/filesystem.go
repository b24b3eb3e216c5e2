package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FilesystemAdapter implements Adapter over a local directory tree for
// FILESYSTEM.FILE_SEARCH. It is the one optional store this system
// names explicitly: a deployment without local file access simply never
// registers it, and the Planner drops FILESYSTEM from targetStores.
type FilesystemAdapter struct {
	root string
}

func NewFilesystemAdapter(root string) *FilesystemAdapter {
	return &FilesystemAdapter{root: root}
}

func (f *FilesystemAdapter) Name() Kind { return Filesystem }

func (f *FilesystemAdapter) Health(ctx context.Context) Health {
	info, err := os.Stat(f.root)
	if err != nil || !info.IsDir() {
		return Health{Healthy: false}
	}
	return Health{Healthy: true}
}

func (f *FilesystemAdapter) Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error) {
	if opKind != OpFileSearch {
		return Payload{}, fmt.Errorf("filesystem adapter does not support %s", opKind)
	}
	if err := params.Validate(); err != nil {
		return Payload{}, err
	}

	base := params.Path
	if base == "" {
		base = f.root
	}

	matches, err := doublestar.Glob(os.DirFS(base), params.FileGlob)
	if err != nil {
		return Payload{}, fmt.Errorf("glob %q: %w", params.FileGlob, err)
	}

	limit := params.Limit
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}

	files := make([]File, 0, limit)
	for _, m := range matches[:limit] {
		full := filepath.Join(base, m)
		content, _ := os.ReadFile(full)
		files = append(files, File{
			ID:      full,
			Name:    filepath.Base(m),
			Path:    full,
			Content: string(content),
		})
	}
	return Payload{Files: files}, nil
}
