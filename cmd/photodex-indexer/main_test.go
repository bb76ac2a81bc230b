package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	photorepo "github.com/kailas-cloud/photodex/internal/repository/photo"
	ingestuc "github.com/kailas-cloud/photodex/internal/usecase/ingest"
)

type staticMeta map[string]string

func (m staticMeta) Metadata(context.Context, string, string) (map[string]string, error) {
	return m, nil
}

type staticDetector []string

func (d staticDetector) DetectLabels(context.Context, string, string) ([]label.Detected, error) {
	out := make([]label.Detected, len(d))
	for i, n := range d {
		out[i] = label.Detected{Name: n}
	}
	return out, nil
}

// engine records document writes and answers with status.
type engine struct {
	mu     sync.Mutex
	status int
	paths  []string
	bodies []string
}

func (e *engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(r.Body)
	e.paths = append(e.paths, r.URL.Path)
	e.bodies = append(e.bodies, buf.String())
	w.WriteHeader(e.status)
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newTestHandler(t *testing.T, e *engine) *handler {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	client, err := opensearch.New(opensearch.Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("index client: %v", err)
	}
	svc := ingestuc.New(
		staticMeta{"customlabels": "Sunset,Beach"},
		staticDetector{"Beach", "Ocean"},
		photorepo.New(client, "photos"),
	)
	return &handler{ingest: svc, logger: zap.NewNop()}
}

func s3Event(bucket string, keys ...string) events.S3Event {
	var e events.S3Event
	for _, k := range keys {
		e.Records = append(e.Records, events.S3EventRecord{S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: k},
		}})
	}
	return e
}

func TestHandle_WritesDocuments(t *testing.T) {
	e := &engine{status: http.StatusCreated}
	h := newTestHandler(t, e)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	if err := h.Handle(ctx, s3Event("photos-raw", "img%2F1.jpg", "b.jpg")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(e.paths) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(e.paths))
	}
	if !strings.HasPrefix(e.paths[0], "/photos/_doc/") {
		t.Errorf("unexpected write path %q", e.paths[0])
	}
	if !strings.Contains(e.bodies[0], `"objectKey":"img/1.jpg"`) ||
		!strings.Contains(e.bodies[0], `"labels":["Sunset","Beach","Ocean"]`) {
		t.Errorf("unexpected document: %s", e.bodies[0])
	}
}

func TestHandle_RejectedWriteFailsInvocation(t *testing.T) {
	e := &engine{status: http.StatusForbidden}
	h := newTestHandler(t, e)

	if err := h.Handle(context.Background(), s3Event("photos-raw", "a.jpg")); err == nil {
		t.Fatal("expected error so Lambda retries the event")
	}
}
