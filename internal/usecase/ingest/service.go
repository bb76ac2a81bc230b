// Package ingest builds and indexes a photo document for each stored object.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	"github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
)

// Object identifies a stored photo as delivered by the trigger. Key is URL-encoded.
type Object struct {
	Bucket string
	Key    string
}

// ObjectsFromEvent extracts the objects of an S3 notification in record order.
func ObjectsFromEvent(e events.S3Event) []Object {
	objs := make([]Object, 0, len(e.Records))
	for _, r := range e.Records {
		objs = append(objs, Object{Bucket: r.S3.Bucket.Name, Key: r.S3.Object.Key})
	}
	return objs
}

// Result reports one indexed object.
type Result struct {
	ObjectKey string
	photo.WriteResult
}

// Service runs the ingestion pipeline: custom labels, detection, merge, write.
type Service struct {
	meta     MetadataReader
	detector LabelDetector
	repo     Repository
	now      func() time.Time
}

// New creates an ingestion service.
func New(meta MetadataReader, detector LabelDetector, repo Repository) *Service {
	return &Service{meta: meta, detector: detector, repo: repo, now: time.Now}
}

// IngestAll processes objects sequentially and stops at the first failure,
// returning the results gathered so far.
func (s *Service) IngestAll(ctx context.Context, objs []Object) ([]Result, error) {
	results := make([]Result, 0, len(objs))
	for _, o := range objs {
		res, err := s.Ingest(ctx, o.Bucket, o.Key)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Ingest indexes one object. A non-2xx index answer is returned together with
// ErrIndexWriteRejected so the trigger can retry.
func (s *Service) Ingest(ctx context.Context, bucket, rawKey string) (Result, error) {
	log := logger.FromContext(ctx).With(zap.String("bucket", bucket))

	key := photo.DecodeKey(rawKey)
	log = log.With(zap.String("object_key", key))

	custom := s.customLabels(ctx, log, bucket, key)

	detected, err := s.detector.DetectLabels(ctx, bucket, key)
	if err != nil {
		metrics.IngestedPhotosTotal.WithLabelValues("error").Inc()
		return Result{ObjectKey: key}, fmt.Errorf("detect labels: %w", err)
	}

	doc, err := photo.New(key, bucket, label.Merge(custom, label.Names(detected)), s.now())
	if err != nil {
		metrics.IngestedPhotosTotal.WithLabelValues("error").Inc()
		return Result{ObjectKey: key}, fmt.Errorf("build document: %w", err)
	}

	wr, err := s.repo.Save(ctx, &doc)
	if err != nil {
		metrics.IngestedPhotosTotal.WithLabelValues("error").Inc()
		return Result{ObjectKey: key}, fmt.Errorf("save document: %w", err)
	}
	res := Result{ObjectKey: key, WriteResult: wr}

	if !wr.OK() {
		metrics.IngestedPhotosTotal.WithLabelValues("rejected").Inc()
		log.Error("index rejected document",
			zap.String("document_id", wr.DocumentID),
			zap.Int("status", wr.Status),
			zap.String("body", wr.Body),
		)
		return res, fmt.Errorf("index %s: status %d: %w", wr.DocumentID, wr.Status, domain.ErrIndexWriteRejected)
	}

	metrics.IngestedPhotosTotal.WithLabelValues("indexed").Inc()
	log.Info("photo indexed",
		zap.String("document_id", wr.DocumentID),
		zap.Int("status", wr.Status),
		zap.Strings("labels", doc.Labels()),
		zap.String("body", wr.Body),
	)
	return res, nil
}

// customLabels never fails: unreadable metadata degrades to no labels.
func (s *Service) customLabels(ctx context.Context, log *zap.Logger, bucket, key string) []string {
	md, err := s.meta.Metadata(ctx, bucket, key)
	if err != nil {
		metrics.CustomLabelsDegradedTotal.Inc()
		log.Warn("custom labels unavailable, continuing without them", zap.Error(err))
		return []string{}
	}
	return label.FromMetadata(md)
}
