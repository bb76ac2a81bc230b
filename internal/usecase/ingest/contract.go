package ingest

import (
	"context"

	"github.com/kailas-cloud/photodex/internal/domain/label"
	"github.com/kailas-cloud/photodex/internal/domain/photo"
)

// MetadataReader reads user metadata of a stored object.
type MetadataReader interface {
	Metadata(ctx context.Context, bucket, key string) (map[string]string, error)
}

// LabelDetector returns visual labels of a stored image.
type LabelDetector interface {
	DetectLabels(ctx context.Context, bucket, key string) ([]label.Detected, error)
}

// Repository writes photo documents to the index.
type Repository interface {
	Save(ctx context.Context, doc *photo.Document) (photo.WriteResult, error)
}
