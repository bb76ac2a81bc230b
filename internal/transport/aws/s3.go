package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kailas-cloud/photodex/internal/domain"
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectStore reads object metadata and stores uploaded photos.
type ObjectStore struct {
	client S3API
}

// NewObjectStore wraps an S3 client.
func NewObjectStore(client S3API) *ObjectStore {
	return &ObjectStore{client: client}
}

// Metadata returns the user metadata of an object. Keys arrive lowercased from S3.
func (o *ObjectStore) Metadata(ctx context.Context, bucket, key string) (map[string]string, error) {
	out, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("head %s/%s: %w", bucket, key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("head %s/%s: %w: %w", bucket, key, domain.ErrStorage, err)
	}
	if out.Metadata == nil {
		return map[string]string{}, nil
	}
	return out.Metadata, nil
}

// Put stores an object with the given content type and user metadata.
func (o *ObjectStore) Put(
	ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string,
) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata:      metadata,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := o.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s/%s: %w: %w", bucket, key, domain.ErrStorage, err)
	}
	return nil
}
