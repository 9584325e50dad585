// Package objectstore provides the narrow raw-snapshot backup capability
// used by the ingestion worker: the raw upstream snapshot is uploaded
// to object storage on a best-effort basis, and a failed upload never
// blocks ingestion.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the only capability the ingestion worker needs: put the raw
// snapshot bytes under a key. Any wider S3 surface is deliberately left out.
type Uploader interface {
	Upload(ctx context.Context, key string, payload []byte) error
}

// S3Uploader is the concrete Uploader backed by an aws-sdk-go-v2 S3 client.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader wraps an existing s3.Client for the given bucket.
func NewS3Uploader(client *s3.Client, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket}
}

// Upload puts payload at key in the configured bucket. Errors are returned
// to the caller, which treats this step as non-fatal: a
// failed backup never blocks a dataset from becoming active.
func (u *S3Uploader) Upload(ctx context.Context, key string, payload []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("object store upload %s/%s: %w", u.bucket, key, err)
	}
	return nil
}
