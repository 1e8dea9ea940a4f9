package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// putObjectAPI is the subset of the S3 client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images in an S3 bucket under listings/.
type S3Uploader struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Uploader loads the default AWS credential chain for region. Objects are
// served from publicBaseURL, or the bucket's virtual-hosted URL when empty.
func NewS3Uploader(ctx context.Context, bucket, region, publicBaseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3Uploader(s3.NewFromConfig(cfg), bucket, region, publicBaseURL), nil
}

func newS3Uploader(client putObjectAPI, bucket, region, publicBaseURL string) *S3Uploader {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Uploader{client: client, bucket: bucket, baseURL: base}
}

// Name implements Uploader.
func (u *S3Uploader) Name() string { return "s3" }

// Upload implements Uploader.
func (u *S3Uploader) Upload(ctx context.Context, img *Image) (string, error) {
	key := fmt.Sprintf("listings/%s.%s", uuid.NewString(), img.Ext())
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
		Body:          bytes.NewReader(img.Data),
	})
	if err != nil {
		return "", err
	}
	return u.baseURL + "/" + key, nil
}
