package storage

import (
	"context"
	"io"
)

// StoredObject describes an object after a successful upload.
type StoredObject struct {
	Key  string
	URL  string
	ETag string
}

type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*StoredObject, error)
}
