package imagehost

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coliver/internal/middleware"
	"coliver/internal/models"
	"coliver/internal/observability"
)

// Uploader stores a decoded image and returns its public URL.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, img *Image) (string, error)
}

var errNoHost = errors.New("no image host configured")

// Service validates photo payloads and hands them to the configured Uploader.
type Service struct {
	uploader Uploader
	maxBytes int64
}

// NewService returns a Service. A nil uploader makes every upload fail as upstream unavailable.
func NewService(uploader Uploader, maxUploadSizeMB int) *Service {
	return &Service{
		uploader: uploader,
		maxBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload decodes payload, downsizes oversized images and returns the hosted URL.
func (s *Service) Upload(ctx context.Context, payload string) (url string, err error) {
	img, err := Decode(payload, s.maxBytes)
	if err != nil {
		return "", err
	}
	img, err = Downscale(img)
	if err != nil {
		return "", models.NewFieldValidationError("image", "Invalid image file")
	}
	if s.uploader == nil {
		return "", models.NewUpstreamError("image host", errNoHost)
	}

	name := s.uploader.Name()
	ctx, span := observability.StartClientSpan(ctx, name, "upload")
	start := time.Now()
	defer func() {
		observability.UpstreamLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()

	url, err = s.uploader.Upload(ctx, img)
	if err != nil {
		observability.UpstreamFailures.WithLabelValues(name).Inc()
		middleware.Logger.ErrorContext(ctx, "image upload failed",
			slog.String("host", name),
			slog.String("error", err.Error()),
		)
		return "", models.NewUpstreamError("image host", err)
	}
	return url, nil
}
