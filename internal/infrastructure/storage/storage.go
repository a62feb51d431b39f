package storage

import (
	"context"
	"fmt"
	"io"

	"podcast-catalog/internal/config"
)

// ObjectStore là nơi lưu binary asset đã upload.
// Put trả về public URL mà client có thể dùng trực tiếp.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New chọn backend theo STORAGE_DRIVER
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Driver {
	case "local":
		return NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL+LocalURLPrefix)
	case "minio":
		return NewMinIOStorage(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
