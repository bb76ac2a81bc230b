// Package upload stores photos in the bucket watched by the ingestion trigger.
package upload

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	"github.com/kailas-cloud/photodex/internal/logger"
)

// DefaultMaxBytes caps an upload body when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// Request is one photo upload.
type Request struct {
	ObjectKey    string
	ContentType  string
	CustomLabels string // raw comma-separated value, stored as-is
	Body         io.Reader
}

// Service writes uploads to the photo bucket.
type Service struct {
	store    ObjectWriter
	bucket   string
	maxBytes int64
}

// New creates an upload service. maxBytes <= 0 uses DefaultMaxBytes.
func New(store ObjectWriter, bucket string, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{store: store, bucket: bucket, maxBytes: maxBytes}
}

// Bucket returns the destination bucket.
func (s *Service) Bucket() string { return s.bucket }

// Upload reads the body up to the size limit and stores it with its custom labels.
func (s *Service) Upload(ctx context.Context, req Request) error {
	key := strings.TrimSpace(req.ObjectKey)
	if key == "" {
		return fmt.Errorf("object key is required: %w", domain.ErrInvalidRequest)
	}
	if req.Body == nil {
		return fmt.Errorf("body is required: %w", domain.ErrInvalidRequest)
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, s.maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w: %w", domain.ErrInvalidRequest, err)
	}
	if int64(len(body)) > s.maxBytes {
		return fmt.Errorf("upload exceeds %d bytes: %w", s.maxBytes, domain.ErrPayloadTooLarge)
	}

	var md map[string]string
	if strings.TrimSpace(req.CustomLabels) != "" {
		md = map[string]string{label.MetadataKey: req.CustomLabels}
	}

	if err := s.store.Put(ctx, s.bucket, key, body, req.ContentType, md); err != nil {
		return fmt.Errorf("store photo: %w", err)
	}

	logger.FromContext(ctx).Info("photo uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object_key", key),
		zap.Int("bytes", len(body)),
	)
	return nil
}
