package remote

import (
	"errors"
	"iter"

	"tabl/internal/repositories/interfaces"
	"tabl/pkg/docstore"
)

func decodeAll[T any](docs []*docstore.Document, decode func(*docstore.Document) T) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decode(doc))
	}
	return out
}

// watchAll decodes every snapshot of a collection subscription.
func watchAll[T any](seq iter.Seq2[[]*docstore.Document, error], decode func(*docstore.Document) T) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for docs, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(decodeAll(docs, decode), nil) {
				return
			}
		}
	}
}

func notFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return interfaces.ErrNotFound
	}
	return err
}
