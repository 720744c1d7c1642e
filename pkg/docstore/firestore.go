package docstore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (f *FirestoreStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	col, err := f.collection(collection)
	if err != nil {
		return "", err
	}

	ref, _, err := col.Add(ctx, toFirestore(data))
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}

	return ref.ID, nil
}

func (f *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	doc, err := f.doc(collection, id)
	if err != nil {
		return err
	}

	if _, err := doc.Set(ctx, toFirestore(data)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	return nil
}

func (f *FirestoreStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	doc, err := f.doc(collection, id)
	if err != nil {
		return err
	}

	if _, err := doc.Set(ctx, toFirestore(data), firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to merge %s/%s: %w", collection, id, err)
	}

	return nil
}

func (f *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := f.doc(collection, id)
	if err != nil {
		return nil, err
	}

	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return fromSnapshot(snap), nil
}

func (f *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	doc, err := f.doc(collection, id)
	if err != nil {
		return err
	}

	if _, err := doc.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	return nil
}

func (f *FirestoreStore) List(ctx context.Context, collection string, limit int) ([]*Document, error) {
	col, err := f.collection(collection)
	if err != nil {
		return nil, err
	}

	query := col.Query
	if limit > 0 {
		query = query.Limit(limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	docs := make([]*Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, fromSnapshot(snap))
	}

	return docs, nil
}

func (f *FirestoreStore) WatchDocument(ctx context.Context, collection, id string) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		doc, err := f.doc(collection, id)
		if err != nil {
			yield(nil, err)
			return
		}

		it := doc.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if !listenerClosed(ctx, err) {
					yield(nil, fmt.Errorf("listener on %s/%s failed: %w", collection, id, err))
				}
				return
			}

			var current *Document
			if snap != nil && snap.Exists() {
				current = fromSnapshot(snap)
			}
			if !yield(current, nil) {
				return
			}
		}
	}
}

func (f *FirestoreStore) WatchCollection(ctx context.Context, collection string) iter.Seq2[[]*Document, error] {
	return func(yield func([]*Document, error) bool) {
		col, err := f.collection(collection)
		if err != nil {
			yield(nil, err)
			return
		}

		it := col.Snapshots(ctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if !listenerClosed(ctx, err) {
					yield(nil, fmt.Errorf("listener on %s failed: %w", collection, err))
				}
				return
			}

			snaps, err := qs.Documents.GetAll()
			if err != nil {
				yield(nil, fmt.Errorf("failed to read snapshot of %s: %w", collection, err))
				return
			}

			docs := make([]*Document, 0, len(snaps))
			for _, snap := range snaps {
				docs = append(docs, fromSnapshot(snap))
			}
			if !yield(docs, nil) {
				return
			}
		}
	}
}

func (f *FirestoreStore) collection(path string) (*firestore.CollectionRef, error) {
	if !validCollection(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return f.client.Collection(path), nil
}

func (f *FirestoreStore) doc(collection, id string) (*firestore.DocumentRef, error) {
	if err := checkDocPath(collection, id); err != nil {
		return nil, err
	}
	return f.client.Collection(collection).Doc(id), nil
}

func listenerClosed(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled
}

func fromSnapshot(snap *firestore.DocumentSnapshot) *Document {
	return &Document{
		ID:   snap.Ref.ID,
		Data: snap.Data(),
	}
}

func toFirestore(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch value := v.(type) {
		case sentinel:
			if value == ServerTimestamp {
				out[k] = firestore.ServerTimestamp
				continue
			}
			out[k] = v
		case map[string]interface{}:
			out[k] = toFirestore(value)
		default:
			out[k] = v
		}
	}
	return out
}
