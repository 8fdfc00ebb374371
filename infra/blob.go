package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrBlobNotFound = errors.New("blob not found")

// maxNameAttempts bounds the search for a free object key.
const maxNameAttempts = 100

type BlobInfo struct {
	Ref         string
	Size        int64
	ETag        string
	ContentType string
}

// BlobStore is implemented by every storage backend the service can write to.
type BlobStore interface {
	Put(ctx context.Context, location string, r io.Reader, size int64, contentType string) (BlobInfo, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, BlobInfo, error)
	Delete(ctx context.Context, ref string) error
	Ping(ctx context.Context) (string, error)
}

// AvailableName returns key unchanged when nothing is stored there yet,
// otherwise key with a short random suffix inserted before the extension.
// Existing objects are never overwritten.
func AvailableName(ctx context.Context, key string, exists func(context.Context, string) (bool, error)) (string, error) {
	dir, file := path.Split(key)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	candidate := key
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
		candidate = dir + stem + "_" + suffix + ext
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", key, maxNameAttempts)
}
