// Package opensearch talks to an OpenSearch/Elasticsearch-compatible index engine
// through the go-elasticsearch typed client.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"

	"github.com/kailas-cloud/photodex/internal/db"
	"github.com/kailas-cloud/photodex/internal/domain"
)

// Config holds index engine connection settings.
type Config struct {
	Endpoint string // host or URL; https is assumed when the scheme is missing
	// Transport sends the requests; request signing plugs in here.
	// Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Response is the raw engine answer to a document write.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Client is a thin wrapper over the typed client that keeps raw engine answers.
type Client struct {
	es   *elasticsearch.TypedClient
	base *url.URL
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	raw := cfg.Endpoint
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", cfg.Endpoint, err)
	}

	next := cfg.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	// Retries belong to the invoking trigger, not to the client.
	es, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses:    []string{base.String()},
		Transport:    &compatTransport{next: next, basePath: base.Path},
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create typed client: %w", err)
	}

	return &Client{es: es, base: base}, nil
}

// IndexDocument writes body under the given id, replacing any previous version.
// A non-2xx answer is returned as-is, not as an error.
func (c *Client) IndexDocument(ctx context.Context, index, id string, body []byte) (Response, error) {
	req := c.es.Index(index).Raw(bytes.NewReader(body))
	if id != "" {
		req = req.Id(id)
	}
	res, err := req.Perform(ctx)
	if err != nil {
		return Response{}, &db.Error{Op: db.OpIndexDoc, Err: err}
	}
	return readResponse(db.OpIndexDoc, res)
}

// Search runs a typed search request. A non-2xx answer yields domain.ErrSearchEngine
// carrying the engine status and body.
func (c *Client) Search(ctx context.Context, index string, req *search.Request) (*search.Response, error) {
	res, err := c.es.Search().Index(index).Request(req).Perform(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	resp, err := readResponse(db.OpSearch, res)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, domain.NewEngineError(resp.Status, string(resp.Body))
	}

	out := search.NewResponse()
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}

// Ping checks that the engine answers its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info().Perform(ctx)
	if err != nil {
		return &db.Error{Op: db.OpClusterInfo, Err: err}
	}
	resp, err := readResponse(db.OpClusterInfo, res)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &db.Error{Op: db.OpClusterInfo, Err: domain.NewEngineError(resp.Status, string(resp.Body))}
	}
	return nil
}

func readResponse(op string, res *http.Response) (Response, error) {
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, &db.Error{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return Response{Status: res.StatusCode, Body: data}, nil
}
