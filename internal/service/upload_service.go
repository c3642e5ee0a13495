package service

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blogsite/internal/storage"
)

// ErrUnsupportedFileType is reported to the editor for non-image uploads.
var ErrUnsupportedFileType = errors.New("ERROR_FILE_TYPE")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".bmp":  true,
}

type UploadService struct {
	store storage.Store
	now   func() time.Time
	rand  func() int
}

func NewUploadService(store storage.Store) *UploadService {
	return &UploadService{
		store: store,
		now:   time.Now,
		rand:  func() int { return rand.IntN(9000) + 1000 },
	}
}

// SaveImage stores the file under a fresh timestamped name, keeping its extension.
func (s *UploadService) SaveImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedFileType
	}
	return s.store.Save(ctx, s.randomName(ext), r, size, contentType)
}

// randomName is YYYYMMDDHHMMSS + four random digits + ext.
func (s *UploadService) randomName(ext string) string {
	return s.now().Format("20060102150405") + strconv.Itoa(s.rand()) + ext
}
