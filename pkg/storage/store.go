// Package storage persists uploaded images on local disk, S3 or GCS.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Triaksa-Space/youthspark-cms/config"
)

// Store writes one object and returns where it can be fetched from. Disk
// stores return a site-relative path ("/images/<key>"); bucket stores return
// an absolute URL.
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Name() string
}

// New selects the store named by cfg.Backend.
func New(ctx context.Context, cfg config.UploadConfig) (Store, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskStore(cfg.Dir, "/images")
	case "s3":
		return NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicURL)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPublicURL)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}
