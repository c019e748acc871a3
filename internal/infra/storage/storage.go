// Package storage は商品画像の保存先（ローカルディスク / S3互換）。
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
)

// Disk は usecase.Storage を満たす。
type Disk interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New は STORAGE_DRIVER に応じたディスクを返す。
func New(ctx context.Context, cfg config.StorageConfig) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.PublicURL)
	case "s3":
		return NewS3Disk(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
