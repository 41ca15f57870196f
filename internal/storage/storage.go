package storage

import (
	"context"
	"io"
)

// Service stores the binary blobs behind card attachments and profile
// photos. The card/user row is the source of truth for which key, if
// any, is current; a dangling blob after a crash is tolerated.
type Service interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}
