package implementation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marimo-hub-be/internal/repository/contract"
)

const NotebookExt = ".py"

type NotebookFileRepositoryImpl struct {
	dir string
}

func NewNotebookFileRepository(dir string) (contract.NotebookFileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notebooks dir %s: %w", dir, err)
	}
	return &NotebookFileRepositoryImpl{dir: dir}, nil
}

// SanitizeFilename flattens path separators and forces the .py extension.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if !strings.HasSuffix(name, NotebookExt) {
		name += NotebookExt
	}
	return name
}

func (r *NotebookFileRepositoryImpl) Write(filename, content string) (string, error) {
	path := filepath.Join(r.dir, SanitizeFilename(filename))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write notebook %s: %w", path, err)
	}
	return path, nil
}

func (r *NotebookFileRepositoryImpl) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*"+NotebookExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

func (r *NotebookFileRepositoryImpl) Dir() string {
	return r.dir
}
