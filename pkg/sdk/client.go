package photodex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/domain/search/result"
	photorepo "github.com/kailas-cloud/photodex/internal/repository/photo"
	awsTransport "github.com/kailas-cloud/photodex/internal/transport/aws"
	healthuc "github.com/kailas-cloud/photodex/internal/usecase/health"
	keyworduc "github.com/kailas-cloud/photodex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/photodex/internal/usecase/search"
)

// Внутренние интерфейсы для подмены в тестах.
type searchUseCase interface {
	Search(ctx context.Context, text string) ([]result.Result, error)
}

type keywordUseCase interface {
	Extract(ctx context.Context, text string) []string
}

type photoRepository interface {
	Save(ctx context.Context, doc *domphoto.Document) (domphoto.WriteResult, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Photo is a single search hit.
type Photo struct {
	ObjectKey        string
	Bucket           string
	Labels           []string
	CreatedTimestamp string
}

// PhotoInput describes a stored object to index. Labels are merged
// custom first, exact duplicates dropped.
type PhotoInput struct {
	Bucket         string
	ObjectKey      string
	CustomLabels   []string
	DetectedLabels []string
}

// IndexResult is the index engine answer for a document write.
type IndexResult struct {
	DocumentID string
	Status     int
	Body       string
}

// Client is the photodex SDK entry point.
type Client struct {
	index     pinger
	photos    photoRepository
	searchSvc searchUseCase
	keywords  keywordUseCase
	healthSvc healthUseCase
	obs       *observer
	now       func() time.Time
}

// New creates a photodex Client.
// The provided context is used for AWS credential resolution and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.endpoint == "" || cfg.indexName == "" {
		return nil, errors.New("photodex: index endpoint and name required (use WithIndex)")
	}

	transport, err := resolveTransport(ctx, cfg)
	if err != nil {
		return nil, err
	}

	index, err := opensearch.New(opensearch.Config{
		Endpoint:  cfg.endpoint,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("photodex: create index client: %w", err)
	}

	if cfg.ensureIndex {
		if err := index.EnsureIndex(ctx, cfg.indexName, opensearch.PhotoMapping()); err != nil {
			return nil, fmt.Errorf("photodex: ensure index: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(index, cfg, obs), nil
}

func resolveTransport(ctx context.Context, cfg *clientConfig) (http.RoundTripper, error) {
	if cfg.sigRegion == "" {
		return cfg.transport, nil
	}
	awsCfg, err := awsTransport.LoadConfig(ctx, awsTransport.Config{Region: cfg.sigRegion})
	if err != nil {
		return nil, fmt.Errorf("photodex: load aws config: %w", err)
	}
	return awsTransport.NewSigningTransport(awsCfg, awsTransport.DefaultSigningService, cfg.transport), nil
}

func wireClient(index *opensearch.Client, cfg *clientConfig, obs *observer) *Client {
	photos := photorepo.New(index, cfg.indexName).WithMaxResults(cfg.maxResults)

	// Pass nil interface (not typed nil) when no extractor is set.
	var slots keyworduc.SlotExtractor
	if cfg.slots != nil {
		slots = cfg.slots
	}
	keywordSvc := keyworduc.New(slots, cfg.slotsProvider)

	return &Client{
		index:     index,
		photos:    photos,
		searchSvc: searchuc.New(photos, keywordSvc),
		keywords:  keywordSvc,
		healthSvc: healthuc.New(index, nil, nluChecker(cfg.slots)),
		obs:       obs,
		now:       time.Now,
	}
}

// Ping checks index engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.index.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Keywords returns the search terms extracted from text.
// An empty slice means the query matches every photo.
func (c *Client) Keywords(ctx context.Context, text string) []string {
	start := time.Now()
	defer func() { c.obs.observe("keywords", start, nil) }()

	return c.keywords.Extract(ctx, text)
}

// Search runs a natural-language photo search.
func (c *Client) Search(ctx context.Context, text string) (_ []Photo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	hits, err := c.searchSvc.Search(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	photos := make([]Photo, 0, len(hits))
	for i := range hits {
		photos = append(photos, Photo{
			ObjectKey:        hits[i].ObjectKey(),
			Bucket:           hits[i].Bucket(),
			Labels:           hits[i].Labels(),
			CreatedTimestamp: hits[i].CreatedTimestamp(),
		})
	}
	return photos, nil
}

// IndexPhoto writes a photo document, replacing any previous version of the
// same object. A non-2xx engine answer is returned with ErrIndexWriteRejected.
func (c *Client) IndexPhoto(ctx context.Context, in PhotoInput) (_ IndexResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_photo", start, err) }()

	doc, err := domphoto.New(in.ObjectKey, in.Bucket, label.Merge(in.CustomLabels, in.DetectedLabels), c.now())
	if err != nil {
		return IndexResult{}, fmt.Errorf("index photo: %w", err)
	}

	wr, err := c.photos.Save(ctx, &doc)
	if err != nil {
		return IndexResult{}, fmt.Errorf("index photo: %w", err)
	}

	res := IndexResult{DocumentID: wr.DocumentID, Status: wr.Status, Body: wr.Body}
	if !wr.OK() {
		return res, fmt.Errorf("index photo %s: status %d: %w", wr.DocumentID, wr.Status, domain.ErrIndexWriteRejected)
	}
	return res, nil
}
