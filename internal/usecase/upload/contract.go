package upload

import "context"

// ObjectWriter stores objects with user metadata.
type ObjectWriter interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error
}
