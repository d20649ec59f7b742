package ports

import (
	"context"
	"time"
)

// S3Storage : хранилище вложений документов
type S3Storage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
