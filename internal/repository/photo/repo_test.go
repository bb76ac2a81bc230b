package photo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/logger"
)

// memIndex is an in-memory engine that evaluates match_all and bool/must match queries on labels.
type memIndex struct {
	docs      map[string][]byte
	order     []string
	status    int
	writeErr  error
	searchErr error
	lastReq   *search.Request
}

func newMemIndex() *memIndex {
	return &memIndex{docs: map[string][]byte{}, status: 201}
}

func (m *memIndex) IndexDocument(_ context.Context, _, id string, body []byte) (opensearch.Response, error) {
	if m.writeErr != nil {
		return opensearch.Response{}, m.writeErr
	}
	if _, ok := m.docs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.docs[id] = body
	return opensearch.Response{Status: m.status, Body: []byte(`{"result":"created"}`)}, nil
}

func (m *memIndex) Search(_ context.Context, _ string, req *search.Request) (*search.Response, error) {
	m.lastReq = req
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	resp := search.NewResponse()
	for _, id := range m.order {
		var d photoDoc
		_ = json.Unmarshal(m.docs[id], &d)
		if matches(req.Query, d.Labels) {
			resp.Hits.Hits = append(resp.Hits.Hits, types.Hit{Source_: m.docs[id]})
		}
	}
	return resp, nil
}

func matches(q *types.Query, labels []string) bool {
	if q.MatchAll != nil {
		return true
	}
	for _, clause := range q.Bool.Must {
		kw := clause.Match[opensearch.LabelsField].Query
		found := false
		for _, l := range labels {
			if strings.EqualFold(l, kw) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func mustDoc(t *testing.T, key string, labels ...string) domphoto.Document {
	t.Helper()
	doc, err := domphoto.New(key, "photos-raw", labels, time.Now())
	if err != nil {
		t.Fatalf("new doc: %v", err)
	}
	return doc
}

func TestSave_WritesDocumentJSON(t *testing.T) {
	ix := newMemIndex()
	repo := New(ix, "photos")
	doc := mustDoc(t, "img/1.jpg", "Sunset", "Beach", "Ocean")

	res, err := repo.Save(context.Background(), &doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DocumentID != doc.ID() || res.Status != 201 || !res.OK() {
		t.Errorf("result = %+v", res)
	}

	var stored photoDoc
	if err := json.Unmarshal(ix.docs[doc.ID()], &stored); err != nil {
		t.Fatalf("stored body: %v", err)
	}
	if stored.ObjectKey != "img/1.jpg" || stored.Bucket != "photos-raw" {
		t.Errorf("stored = %+v", stored)
	}
	if strings.Join(stored.Labels, ",") != "Sunset,Beach,Ocean" {
		t.Errorf("labels = %v", stored.Labels)
	}
	if stored.CreatedTimestamp == "" {
		t.Error("createdTimestamp must be set")
	}
}

func TestSave_EmptyLabelsSerializeAsArray(t *testing.T) {
	ix := newMemIndex()
	doc := domphoto.Reconstruct("k", "b", "t", nil)

	if _, err := New(ix, "photos").Save(context.Background(), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(ix.docs[doc.ID()]), `"labels":[]`) {
		t.Errorf("body = %s", ix.docs[doc.ID()])
	}
}

func TestSave_SameKeyOverwrites(t *testing.T) {
	ix := newMemIndex()
	repo := New(ix, "photos")
	first := mustDoc(t, "img/1.jpg", "Dog")
	second := mustDoc(t, "img/1.jpg", "Cat")

	_, _ = repo.Save(context.Background(), &first)
	_, _ = repo.Save(context.Background(), &second)

	if len(ix.docs) != 1 {
		t.Fatalf("expected a single slot, got %d", len(ix.docs))
	}
	results, _ := repo.Search(context.Background(), nil)
	if len(results) != 1 || results[0].Labels()[0] != "Cat" {
		t.Errorf("results = %+v", results)
	}
}

func TestSave_NonSuccessStatusReturned(t *testing.T) {
	ix := newMemIndex()
	ix.status = 403
	doc := mustDoc(t, "k", "x")

	res, err := New(ix, "photos").Save(context.Background(), &doc)
	if err != nil {
		t.Fatalf("non-success status must not be an error: %v", err)
	}
	if res.OK() || res.Status != 403 {
		t.Errorf("result = %+v", res)
	}
}

func TestSave_TransportError(t *testing.T) {
	ix := newMemIndex()
	ix.writeErr = errors.New("connection refused")
	doc := mustDoc(t, "k", "x")

	if _, err := New(ix, "photos").Save(context.Background(), &doc); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_Conjunctive(t *testing.T) {
	ix := newMemIndex()
	repo := New(ix, "photos")
	both := mustDoc(t, "both.jpg", "dog", "cat")
	dogOnly := mustDoc(t, "dog.jpg", "dog")
	catOnly := mustDoc(t, "cat.jpg", "Cat", "Animal")
	for _, d := range []domphoto.Document{both, dogOnly, catOnly} {
		_, _ = repo.Save(context.Background(), &d)
	}

	results, err := repo.Search(context.Background(), []string{"dog", "cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ObjectKey() != "both.jpg" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_MatchAll(t *testing.T) {
	ix := newMemIndex()
	repo := New(ix, "photos").WithMaxResults(10)
	for _, k := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		d := mustDoc(t, k, "x")
		_, _ = repo.Save(context.Background(), &d)
	}

	results, err := repo.Search(context.Background(), []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len = %d", len(results))
	}
	if *ix.lastReq.Size != 10 {
		t.Errorf("size = %d", *ix.lastReq.Size)
	}
	// engine order is preserved
	if results[0].ObjectKey() != "a.jpg" || results[2].ObjectKey() != "c.jpg" {
		t.Errorf("order = %s, %s", results[0].ObjectKey(), results[2].ObjectKey())
	}
}

func TestSearch_EngineErrorPropagates(t *testing.T) {
	ix := newMemIndex()
	ix.searchErr = domain.NewEngineError(500, "boom")

	_, err := New(ix, "photos").Search(context.Background(), []string{"dog"})
	if !errors.Is(err, domain.ErrSearchEngine) {
		t.Errorf("expected ErrSearchEngine, got %v", err)
	}
}

func TestFormatHits_MissingFields(t *testing.T) {
	hits := []types.Hit{
		{Source_: json.RawMessage(`{"objectKey":"only-key.jpg"}`)},
		{},
		{Source_: json.RawMessage(`not json`)},
	}

	results := formatHits(context.Background(), hits)
	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].ObjectKey() != "only-key.jpg" || results[0].Bucket() != "" {
		t.Errorf("results[0] = %+v", results[0])
	}
	for i, r := range results {
		if r.Labels() == nil {
			t.Errorf("results[%d] labels = nil, want empty", i)
		}
	}
}

func TestFormatHits_MalformedSourceLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	id := "abc123"
	hits := []types.Hit{
		{Id_: &id, Source_: json.RawMessage(`{"objectKey": 42`)},
		{Source_: json.RawMessage(`{"objectKey":"ok.jpg","labels":["Dog"]}`)},
	}

	results := formatHits(ctx, hits)
	if len(results) != 2 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].ObjectKey() != "" || len(results[0].Labels()) != 0 {
		t.Errorf("malformed hit should hydrate empty, got %+v", results[0])
	}
	if results[1].ObjectKey() != "ok.jpg" {
		t.Errorf("results[1] = %+v", results[1])
	}

	entries := logs.FilterMessage("malformed hit source").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["doc_id"] != id {
		t.Errorf("doc_id = %v", entries[0].ContextMap()["doc_id"])
	}
}
