package domain

import (
	"context"
	"io"
)

type AccessPolicy string

const (
	AccessPrivate    AccessPolicy = "private"
	AccessPublicRead AccessPolicy = "public-read"
)

// BlobStore is the object store every job operation runs against. Keys are
// slash separated regardless of the host OS. GetFile and GetStream return an
// error wrapping ErrNotFound when the key does not exist.
type BlobStore interface {
	EnsureContainer(ctx context.Context, policy AccessPolicy) (created bool, err error)
	PutFile(ctx context.Context, key string, localPath string) error
	GetFile(ctx context.Context, key string, localPath string) error
	GetStream(ctx context.Context, key string, w io.Writer) error
}
