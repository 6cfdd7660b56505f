// Package storage abstracts the object store holding uploaded file
// contents. Content goes in under a generated locator, the database
// only keeps the locator.
package storage

import (
	"context"
	"io"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// BlobStore is the capability the upload path writes through. The S3
// client implements it, tests swap in fakes.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

const locatorCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewLocator builds a collision-resistant storage key for a file. The
// random prefix keeps same-named uploads from different users apart.
func NewLocator(name string) (string, error) {
	prefix, err := gonanoid.Generate(locatorCharset, 10)
	if err != nil {
		return "", err
	}

	return prefix + "_" + name, nil
}
