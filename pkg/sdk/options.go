package photodex

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// SlotExtractor returns search terms found in free text. An error makes the
// client fall back to its built-in tokenizer.
type SlotExtractor interface {
	ExtractSlots(ctx context.Context, text string) ([]string, error)
}

type clientConfig struct {
	endpoint  string
	indexName string
	transport http.RoundTripper
	sigRegion string

	slots         SlotExtractor
	slotsProvider string

	maxResults  int
	ensureIndex bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithIndex sets the index engine endpoint and index name. Required.
func WithIndex(endpoint, name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = endpoint
		c.indexName = name
	})
}

// WithSigV4 signs index requests with the default AWS credential chain
// for the given region.
func WithSigV4(region string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sigRegion = region
	})
}

// WithTransport sets the round tripper for index requests.
// With WithSigV4 it becomes the transport underneath the signer.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithSlotExtractor enables the NLU tier of keyword extraction.
// provider is used as a metric label.
func WithSlotExtractor(provider string, e SlotExtractor) Option {
	return optionFunc(func(c *clientConfig) {
		c.slotsProvider = provider
		c.slots = e
	})
}

// WithMaxResults caps the number of search hits. Default: 100.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithEnsureIndex creates the index with the photo mapping on New
// when it does not exist yet.
func WithEnsureIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureIndex = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
