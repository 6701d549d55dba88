package provider

import (
	"context"
	"io"
)

// Optional provider capability interfaces.
//
// These interfaces are used for feature detection (type assertions). The core
// Provider interface remains intentionally small.

// ObjectGetter can download objects as a stream.
//
// The index download route streams objects through this interface.
// Callers must close the returned body.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (body io.ReadCloser, contentLength int64, err error)
}
