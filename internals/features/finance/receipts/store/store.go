// Package store persists rendered receipt documents.
package store

import "context"

type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
}
