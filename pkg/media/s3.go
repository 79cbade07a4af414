// Package media uploads vendor documents (trade license, ID card) to
// S3-compatible object storage and hands back the public URLs that go into
// a vendor application. Works with AWS S3, MinIO, DigitalOcean Spaces and
// Cloudflare R2.
package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mestawet/gebeya/config"
)

// Uploader puts objects into a single bucket and resolves their URLs.
type Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewUploader builds an Uploader from S3_* config. S3_BUCKET is required;
// S3_ENDPOINT switches on path-style addressing for MinIO-style backends.
func NewUploader(ctx context.Context) (*Uploader, error) {
	bucket := config.StorageS3Bucket()
	region := config.StorageS3Region()
	key := config.StorageS3Key()
	secret := config.StorageS3Secret()
	endpoint := config.StorageS3Endpoint()
	baseURL := strings.TrimRight(config.StorageS3URL(), "/")

	if bucket == "" {
		return nil, fmt.Errorf("media: S3_BUCKET is not configured")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	if key != "" && secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &Uploader{
		client:  s3.NewFromConfig(cfg, clientOpts...),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores content under vendors/<userID>/<name> and returns the
// public URL for use as licenseUrl / idCardUrl.
func (u *Uploader) Upload(ctx context.Context, userID int64, name string, content []byte) (string, error) {
	key := DocumentKey(userID, name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", fmt.Errorf("media: put %s: %w", key, err)
	}
	return u.URL(key), nil
}

// URL resolves the public URL for an object key.
func (u *Uploader) URL(key string) string {
	return u.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Exists reports whether the object is present.
func (u *Uploader) Exists(ctx context.Context, key string) bool {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// Delete removes an uploaded document.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("media: delete %s: %w", key, err)
	}
	return nil
}

// DocumentKey builds the object key for a vendor document. Path
// separators in name are flattened.
func DocumentKey(userID int64, name string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return fmt.Sprintf("vendors/%d/%s", userID, safe)
}
