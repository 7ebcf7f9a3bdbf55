package store

import (
	"context"
	"time"
)

type UploadParams struct {
	Key         string
	Data        []byte
	ContentType string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// Presigner hands out read-only URLs for objects the Uploader wrote.
type Presigner interface {
	Presign(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func ContentType(format string) string {
	return "image/" + format
}
