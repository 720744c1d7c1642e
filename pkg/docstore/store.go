// Package docstore is a small document-database abstraction shaped after Cloud Firestore:
// slash-separated collection paths, server-assigned ids, merge writes and live snapshots.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid collection path")
)

type sentinel int

// ServerTimestamp may be used as a field value; the store replaces it with its own clock on write.
const ServerTimestamp sentinel = 1

type Document struct {
	ID   string
	Data map[string]interface{}
}

// Store is the document store contract consumed by the repositories.
//
// Watch sequences are lazy: nothing is subscribed until the sequence is ranged over, each range
// opens a fresh listener, and breaking out of the loop (or cancelling ctx) unsubscribes.
type Store interface {
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Merge(ctx context.Context, collection, id string, data map[string]interface{}) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, limit int) ([]*Document, error)

	// WatchDocument yields nil when the document does not exist.
	WatchDocument(ctx context.Context, collection, id string) iter.Seq2[*Document, error]
	WatchCollection(ctx context.Context, collection string) iter.Seq2[[]*Document, error]
}

// Path joins collection and document ids, e.g. Path("clubs", id, "reviews").
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

func validCollection(collection string) bool {
	if collection == "" {
		return false
	}
	parts := strings.Split(collection, "/")
	if len(parts)%2 == 0 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// checkDocPath applies Firestore's document id rules so every backend accepts the same ids.
func checkDocPath(collection, id string) error {
	if !validCollection(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	if id == "" || id == "." || id == ".." || strings.Contains(id, "/") {
		return fmt.Errorf("%w: bad document id %q in %q", ErrInvalidPath, id, collection)
	}
	return nil
}
