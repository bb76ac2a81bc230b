package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/photodex/internal/domain"
)

// --- Mocks ---

type mockWriter struct {
	err         error
	called      bool
	bucket, key string
	body        []byte
	contentType string
	metadata    map[string]string
}

func (m *mockWriter) Put(
	_ context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string,
) error {
	m.called = true
	m.bucket, m.key, m.body, m.contentType, m.metadata = bucket, key, body, contentType, metadata
	return m.err
}

// --- Tests ---

func TestUpload_Success(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, "photos-raw", 0)

	err := svc.Upload(context.Background(), Request{
		ObjectKey:    "dog.jpg",
		ContentType:  "image/jpeg",
		CustomLabels: "Dog, Park",
		Body:         strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if w.bucket != "photos-raw" || w.key != "dog.jpg" || w.contentType != "image/jpeg" {
		t.Errorf("unexpected put: %s/%s %s", w.bucket, w.key, w.contentType)
	}
	if string(w.body) != "jpeg-bytes" {
		t.Errorf("body = %q", w.body)
	}
	if w.metadata["customLabels"] != "Dog, Park" {
		t.Errorf("metadata = %v", w.metadata)
	}
}

func TestUpload_NoCustomLabels(t *testing.T) {
	w := &mockWriter{}
	if err := New(w, "b", 0).Upload(context.Background(), Request{ObjectKey: "k", Body: strings.NewReader("x")}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if w.metadata != nil {
		t.Errorf("metadata must be omitted, got %v", w.metadata)
	}
}

func TestUpload_MissingKey(t *testing.T) {
	w := &mockWriter{}
	err := New(w, "b", 0).Upload(context.Background(), Request{ObjectKey: " ", Body: strings.NewReader("x")})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if w.called {
		t.Error("store must not be called")
	}
}

func TestUpload_TooLarge(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, "b", 4)

	err := svc.Upload(context.Background(), Request{ObjectKey: "k", Body: strings.NewReader("12345")})
	if !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
	if w.called {
		t.Error("store must not be called")
	}

	if err := svc.Upload(context.Background(), Request{ObjectKey: "k", Body: strings.NewReader("1234")}); err != nil {
		t.Errorf("body at the limit must pass: %v", err)
	}
}

func TestUpload_StoreError(t *testing.T) {
	svc := New(&mockWriter{err: domain.ErrStorage}, "b", 0)

	err := svc.Upload(context.Background(), Request{ObjectKey: "k", Body: strings.NewReader("x")})
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}
