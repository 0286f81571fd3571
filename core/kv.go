package core

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by KVStore.Get for a slot that has never been
// written (or has been deleted). It is a normal condition, not a failure.
var ErrSlotNotFound = errors.New("storage slot not found")

// KVStore is the persistence port: a handful of named slots in a durable
// key-value store. Each slot holds one serialized blob and is overwritten
// as a whole; there are no transactions across slots and concurrent writers
// are last-writer-wins.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
