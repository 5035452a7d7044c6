package imagestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Skotchmaster/artesan_shop/internal/config"
)

const (
	TypeEmbedded = "embedded"
	TypeLocal    = "local"
	TypeS3       = "s3"
)

var ErrNotFound = errors.New("image not found")

// Store keeps product images outside the products table. A nil Store means
// images are embedded in the row as Base64.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ImageStore)) {
	case "", TypeEmbedded:
		return nil, nil
	case TypeLocal:
		return NewLocal(cfg.ImageLocalDir)
	case TypeS3:
		return NewS3(ctx, S3Options{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported image store: %s", cfg.ImageStore)
	}
}

// ProductKey is the object key for a product's image.
func ProductKey(productID string) string {
	return path.Join("products", sanitize(productID)+".jpg")
}

func sanitize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			b.WriteByte(ch + 32)
		}
	}
	return b.String()
}
