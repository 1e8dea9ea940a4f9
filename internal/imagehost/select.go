package imagehost

import (
	"context"
	"fmt"

	"coliver/internal/config"
)

// NewUploader builds the Uploader named by IMAGE_HOST. It returns nil for "none".
func NewUploader(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.ImageHost {
	case config.ImageHostCloudinary:
		u, err := NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryUploadPreset, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		return u, nil
	case config.ImageHostS3:
		u, err := NewS3Uploader(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return u, nil
	case config.ImageHostNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown image host %q", cfg.ImageHost)
	}
}
