package photo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"

	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/domain/search/result"
)

// index is the consumer interface for the index engine (ISP).
type index interface {
	IndexDocument(ctx context.Context, index, id string, body []byte) (opensearch.Response, error)
	Search(ctx context.Context, index string, req *search.Request) (*search.Response, error)
}

// Repo writes and searches photo documents.
type Repo struct {
	index      index
	indexName  string
	maxResults int
}

// New creates a photo repository over the named index.
func New(ix index, indexName string) *Repo {
	return &Repo{index: ix, indexName: indexName, maxResults: opensearch.MaxResults}
}

// WithMaxResults overrides the search result cap.
func (r *Repo) WithMaxResults(n int) *Repo {
	if n > 0 {
		r.maxResults = n
	}
	return r
}

// Save writes the document under its deterministic id. The engine status is
// returned uninterpreted; only transport failures are errors. No retries.
func (r *Repo) Save(ctx context.Context, doc *domphoto.Document) (domphoto.WriteResult, error) {
	body, err := json.Marshal(buildPhotoDoc(doc))
	if err != nil {
		return domphoto.WriteResult{}, fmt.Errorf("marshal photo document: %w", err)
	}

	id := doc.ID()
	resp, err := r.index.IndexDocument(ctx, r.indexName, id, body)
	if err != nil {
		return domphoto.WriteResult{}, fmt.Errorf("index document %s: %w", id, err)
	}
	return domphoto.WriteResult{DocumentID: id, Status: resp.Status, Body: string(resp.Body)}, nil
}

// Search runs the keyword query and returns formatted results in engine order.
// Empty keywords match every photo.
func (r *Repo) Search(ctx context.Context, keywords []string) ([]result.Result, error) {
	req := opensearch.BuildQuery(keywords, r.maxResults)

	resp, err := r.index.Search(ctx, r.indexName, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.indexName, err)
	}
	return formatHits(ctx, resp.Hits.Hits), nil
}
