package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (c *CloudinaryUploader) Name() string { return "cloudinary" }

func (c *CloudinaryUploader) Upload(ctx context.Context, key, _ string, body io.Reader) (string, error) {
	dir, file := path.Split(key)
	publicID := strings.TrimSuffix(file, path.Ext(file))
	folder := strings.Trim(path.Join(c.folder, dir), "/")

	resp, err := c.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("storage: cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("storage: cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("storage: cloudinary returned no url for %s", key)
	}
	return resp.SecureURL, nil
}
