// Package imagehost decodes listing photo payloads and uploads them to an asset host.
package imagehost

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"strings"

	"coliver/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxDimension is the longest edge kept on upload; larger images are scaled down.
const MaxDimension = 2048

const jpegQuality = 82

// Image is a decoded, sniffed upload payload.
type Image struct {
	Data        []byte
	Format      string
	ContentType string
	Width       int
	Height      int
}

// Ext returns the file extension for the image format.
func (i *Image) Ext() string {
	if i.Format == "jpeg" {
		return "jpg"
	}
	return i.Format
}

// Decode accepts a data URI or bare base64 string and returns the sniffed image.
// Payloads larger than maxBytes once decoded are rejected.
func Decode(payload string, maxBytes int64) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, models.NewFieldValidationError("image", "No image provided")
	}

	declared := ""
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, models.NewFieldValidationError("image", "Image must be a base64 data URI")
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(payload[:comma], "data:"), ";base64")
		payload = payload[comma+1:]
	}

	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, tooLarge(maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, models.NewFieldValidationError("image", "Image is not valid base64")
	}
	if int64(len(data)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewFieldValidationError("image", "Invalid image file")
	}
	contentType := formatToMime(format)
	if contentType == "" {
		return nil, models.NewFieldValidationError("image", "Unsupported image format")
	}
	if declared != "" && normalizeMime(declared) != contentType {
		return nil, models.NewFieldValidationError("image", "Image content type mismatch")
	}

	return &Image{
		Data:        data,
		Format:      format,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Downscale re-encodes img when either edge exceeds MaxDimension. PNG stays PNG;
// every other format becomes JPEG.
func Downscale(img *Image) (*Image, error) {
	if img.Width <= MaxDimension && img.Height <= MaxDimension {
		return img, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	dst := resizeToFit(src, MaxDimension, MaxDimension)

	var buf bytes.Buffer
	out := &Image{Width: dst.Bounds().Dx(), Height: dst.Bounds().Dy()}
	if img.Format == "png" {
		err = png.Encode(&buf, dst)
		out.Format, out.ContentType = "png", "image/png"
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
		out.Format, out.ContentType = "jpeg", "image/jpeg"
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func tooLarge(maxBytes int64) error {
	return models.NewFieldValidationError("image", fmt.Sprintf("Image too large (max %dMB)", maxBytes/(1024*1024)))
}

func normalizeMime(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

func formatToMime(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
