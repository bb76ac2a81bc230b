package ingest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	"github.com/kailas-cloud/photodex/internal/domain/photo"
)

// --- Mocks ---

type mockMeta struct {
	md  map[string]string
	err error
	key string
}

func (m *mockMeta) Metadata(_ context.Context, _, key string) (map[string]string, error) {
	m.key = key
	return m.md, m.err
}

type mockDetector struct {
	labels []label.Detected
	err    error
}

func (m *mockDetector) DetectLabels(_ context.Context, _, _ string) ([]label.Detected, error) {
	return m.labels, m.err
}

type mockRepo struct {
	status int
	body   string
	err    error
	saved  []photo.Document
}

func (m *mockRepo) Save(_ context.Context, doc *photo.Document) (photo.WriteResult, error) {
	if m.err != nil {
		return photo.WriteResult{}, m.err
	}
	m.saved = append(m.saved, *doc)
	status := m.status
	if status == 0 {
		status = 201
	}
	return photo.WriteResult{DocumentID: doc.ID(), Status: status, Body: m.body}, nil
}

func detected(names ...string) []label.Detected {
	out := make([]label.Detected, len(names))
	for i, n := range names {
		out[i] = label.Detected{Name: n, Confidence: 90}
	}
	return out
}

func newTestService(meta *mockMeta, det *mockDetector, repo *mockRepo) *Service {
	svc := New(meta, det, repo)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

// --- Tests ---

func TestIngest_EndToEnd(t *testing.T) {
	meta := &mockMeta{md: map[string]string{"customlabels": "Sunset,Beach"}}
	repo := &mockRepo{}
	svc := newTestService(meta, &mockDetector{labels: detected("Beach", "Ocean")}, repo)

	res, err := svc.Ingest(context.Background(), "photos-raw", "img%2F1.jpg")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if meta.key != "img/1.jpg" {
		t.Errorf("metadata read with key %q, want decoded key", meta.key)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved document, got %d", len(repo.saved))
	}
	doc := repo.saved[0]
	if doc.ObjectKey() != "img/1.jpg" || doc.Bucket() != "photos-raw" {
		t.Errorf("unexpected identity: %q %q", doc.Bucket(), doc.ObjectKey())
	}
	if want := []string{"Sunset", "Beach", "Ocean"}; !reflect.DeepEqual(doc.Labels(), want) {
		t.Errorf("labels = %v, want %v", doc.Labels(), want)
	}
	if doc.CreatedTimestamp() != "2026-05-01T10:00:00.000000Z" {
		t.Errorf("timestamp = %q", doc.CreatedTimestamp())
	}
	if res.ObjectKey != "img/1.jpg" || res.DocumentID != photo.DocumentID("photos-raw", "img/1.jpg") || res.Status != 201 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestIngest_MetadataErrorDegrades(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{err: domain.ErrObjectNotFound}, &mockDetector{labels: detected("Dog")}, repo)

	if _, err := svc.Ingest(context.Background(), "b", "dog.jpg"); err != nil {
		t.Fatalf("metadata failure must not fail ingestion: %v", err)
	}
	if got := repo.saved[0].Labels(); !reflect.DeepEqual(got, []string{"Dog"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestIngest_NoLabelsAnywhere(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{}, &mockDetector{}, repo)

	if _, err := svc.Ingest(context.Background(), "b", "blank.jpg"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := repo.saved[0].Labels(); got == nil || len(got) != 0 {
		t.Errorf("labels = %#v, want empty", got)
	}
}

func TestIngest_DetectionFailure(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{}, &mockDetector{err: domain.ErrDetectionFailed}, repo)

	_, err := svc.Ingest(context.Background(), "b", "k.jpg")
	if !errors.Is(err, domain.ErrDetectionFailed) {
		t.Fatalf("expected ErrDetectionFailed, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Error("nothing must be written when detection fails")
	}
}

func TestIngest_StrayPercentKeptInKey(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{}, &mockDetector{labels: detected("Chart")}, repo)

	res, err := svc.Ingest(context.Background(), "b", "100%.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ObjectKey != "100%.jpg" {
		t.Errorf("ObjectKey = %q, want raw key", res.ObjectKey)
	}
	if len(repo.saved) != 1 || repo.saved[0].ObjectKey() != "100%.jpg" {
		t.Errorf("saved = %+v", repo.saved)
	}
}

func TestIngest_WriteRejected(t *testing.T) {
	svc := newTestService(&mockMeta{}, &mockDetector{labels: detected("Cat")},
		&mockRepo{status: 403, body: `{"message":"forbidden"}`})

	res, err := svc.Ingest(context.Background(), "b", "cat.jpg")
	if !errors.Is(err, domain.ErrIndexWriteRejected) {
		t.Fatalf("expected ErrIndexWriteRejected, got %v", err)
	}
	if res.Status != 403 || res.Body != `{"message":"forbidden"}` {
		t.Errorf("write result must be returned for logging: %+v", res)
	}
}

func TestIngest_TransportError(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	svc := newTestService(&mockMeta{}, &mockDetector{}, &mockRepo{err: transport})

	_, err := svc.Ingest(context.Background(), "b", "k.jpg")
	if !errors.Is(err, transport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestIngest_ReindexSameSlot(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{}, &mockDetector{labels: detected("Tree")}, repo)

	first, err := svc.Ingest(context.Background(), "b", "tree.jpg")
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	second, err := svc.Ingest(context.Background(), "b", "tree.jpg")
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if first.DocumentID != second.DocumentID {
		t.Errorf("re-ingestion must target the same document id: %s vs %s", first.DocumentID, second.DocumentID)
	}
}

func TestIngestAll_StopsAtFirstFailure(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(&mockMeta{}, &mockDetector{labels: detected("Sky")}, repo)

	objs := []Object{{Bucket: "b", Key: "a.jpg"}, {Bucket: "", Key: "b.jpg"}, {Bucket: "b", Key: "c.jpg"}}
	results, err := svc.IngestAll(context.Background(), objs)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 1 || results[0].ObjectKey != "a.jpg" {
		t.Errorf("results = %+v", results)
	}
	if len(repo.saved) != 1 {
		t.Errorf("later objects must not be processed, saved %d", len(repo.saved))
	}
}

func TestObjectsFromEvent(t *testing.T) {
	var e events.S3Event
	e.Records = []events.S3EventRecord{
		{S3: events.S3Entity{Bucket: events.S3Bucket{Name: "b1"}, Object: events.S3Object{Key: "a%20b.jpg"}}},
		{S3: events.S3Entity{Bucket: events.S3Bucket{Name: "b2"}, Object: events.S3Object{Key: "c.jpg"}}},
	}

	got := ObjectsFromEvent(e)
	want := []Object{{Bucket: "b1", Key: "a%20b.jpg"}, {Bucket: "b2", Key: "c.jpg"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ObjectsFromEvent = %+v, want %+v", got, want)
	}
}
