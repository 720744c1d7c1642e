package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage stores images as Cloudinary assets whose public id is the object key.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudinary client: %w", err)
	}

	return &CloudinaryStorage{
		cld:    cld,
		folder: folder,
	}, nil
}

func (c *CloudinaryStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	resp, err := c.cld.Upload.Upload(ctx, request.Reader, uploader.UploadParams{
		PublicID:  c.publicID(request.Key),
		Overwrite: api.Bool(true),
		Context:   api.CldAPIMap(request.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	return &UploadResponse{
		Key:  request.Key,
		Size: int64(resp.Bytes),
		ETag: resp.Etag,
	}, nil
}

func (c *CloudinaryStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	asset, err := c.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: c.publicID(key)})
	if err != nil {
		return "", fmt.Errorf("failed to look up asset: %w", err)
	}
	if asset.SecureURL == "" {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}

	return asset.SecureURL, nil
}

func (c *CloudinaryStorage) publicID(key string) string {
	if c.folder == "" {
		return key
	}
	return c.folder + "/" + key
}
