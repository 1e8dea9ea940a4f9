package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader stores images in a Cloudinary account.
type CloudinaryUploader struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
	folder       string
}

// NewCloudinaryUploader builds an uploader from a cloudinary:// URL.
func NewCloudinaryUploader(cloudinaryURL, uploadPreset, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryUploader{cld: cld, uploadPreset: uploadPreset, folder: folder}, nil
}

// Name implements Uploader.
func (u *CloudinaryUploader) Name() string { return "cloudinary" }

// Upload implements Uploader.
func (u *CloudinaryUploader) Upload(ctx context.Context, img *Image) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{
		UploadPreset: u.uploadPreset,
		Folder:       u.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary returned no secure url")
	}
	return res.SecureURL, nil
}
