package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

// downloadTokenKey is the object metadata key the Firebase console and client SDKs use for
// token-authorized download links.
const downloadTokenKey = "firebaseStorageDownloadTokens"

type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStorage opens the named bucket of the app, or its default bucket when name is empty.
func NewFirebaseStorage(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStorage, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase storage client: %w", err)
	}

	var bucket *gcs.BucketHandle
	if bucketName != "" {
		bucket, err = client.Bucket(bucketName)
	} else {
		bucket, err = client.DefaultBucket()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage bucket: %w", err)
	}

	if bucketName == "" {
		attrs, err := bucket.Attrs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read default bucket: %w", err)
		}
		bucketName = attrs.Name
	}

	return &FirebaseStorage{
		bucket:     bucket,
		bucketName: bucketName,
	}, nil
}

func (f *FirebaseStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	writer := f.bucket.Object(request.Key).NewWriter(ctx)
	writer.ContentType = request.ContentType

	metadata := make(map[string]string, len(request.Metadata)+1)
	for k, v := range request.Metadata {
		metadata[k] = v
	}
	metadata[downloadTokenKey] = uuid.NewString()
	writer.Metadata = metadata

	if request.CacheControl != "" {
		writer.CacheControl = request.CacheControl
	}

	size, err := io.Copy(writer, request.Reader)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write to Firebase storage: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return &UploadResponse{
		Key:  request.Key,
		Size: size,
		ETag: writer.Attrs().Etag,
	}, nil
}

// GetURL returns the token download link of the object. The link does not expire.
func (f *FirebaseStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	attrs, err := f.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return "", fmt.Errorf("failed to get object attributes: %w", err)
	}

	// Several tokens may be stored comma separated; any of them authorizes the download.
	token, _, _ := strings.Cut(attrs.Metadata[downloadTokenKey], ",")
	if token == "" {
		return "", fmt.Errorf("object %s has no download token", key)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		f.bucketName, url.PathEscape(key), token), nil
}
