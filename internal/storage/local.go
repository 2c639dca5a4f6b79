package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes objects below a root directory served at baseURL.
type LocalUploader struct {
	root    string
	baseURL string
}

func NewLocalUploader(root, baseURL string) (*LocalUploader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalUploader{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalUploader) Name() string { return "local" }

func (l *LocalUploader) Root() string { return l.root }

// resolve maps key into the root, refusing keys that would escape it.
func (l *LocalUploader) resolve(key string) (string, error) {
	abs := filepath.Join(l.root, filepath.Clean("/"+key))
	if abs != l.root && !strings.HasPrefix(abs, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: key %q escapes upload dir", key)
	}
	return abs, nil
}

func (l *LocalUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	dst, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close file: %w", err)
	}

	rel, _ := filepath.Rel(l.root, dst)
	return l.baseURL + "/uploads/" + filepath.ToSlash(rel), nil
}
