package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Local writes files into a directory served by the HTTP server under URLPath.
type Local struct {
	Dir     string
	URLPath string
}

func NewLocal(dir, urlPath string) *Local {
	return &Local{Dir: dir, URLPath: urlPath}
}

var _ Store = (*Local)(nil)

func (l *Local) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := l.ensureDir(); err != nil {
		return "", err
	}

	dst := filepath.Join(l.Dir, filepath.Base(name))
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", ErrDirNotWritable
		}
		return "", fmt.Errorf("create %q: %w", dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %q: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", dst, err)
	}
	return path.Join(l.URLPath, filepath.Base(name)), nil
}

func (l *Local) ensureDir() error {
	info, err := os.Stat(l.Dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(l.Dir, 0o755); err != nil {
			return ErrCreateDir
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat upload dir: %w", err)
	case !info.IsDir():
		return ErrCreateDir
	}
	return nil
}
