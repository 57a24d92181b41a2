package ports

import (
	"context"
	"io"
)

// Meta describes an opened import file. Bucket and Key are set for s3
// sources only; Size is -1 when the source does not report it.
type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

type FileOpener interface {
	Open(ctx context.Context, filePath string) (io.ReadCloser, Meta, error)
}
