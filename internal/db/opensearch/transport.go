package opensearch

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/photodex/internal/db"
	"github.com/kailas-cloud/photodex/internal/metrics"
)

const (
	productHeader    = "X-Elastic-Product"
	productName      = "Elasticsearch"
	vendorMediaType  = "application/vnd.elasticsearch+json"
	genericMediaType = "application/json"
)

// compatTransport adapts typed client traffic to OpenSearch and records engine metrics.
// OpenSearch rejects the vendor media type and does not send the product header
// the client verifies on its first successful answer.
type compatTransport struct {
	next     http.RoundTripper
	basePath string
}

func (t *compatTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	op := operation(req, t.basePath)

	out := req.Clone(req.Context())
	for _, h := range []string{"Content-Type", "Accept"} {
		if strings.HasPrefix(out.Header.Get(h), vendorMediaType) {
			out.Header.Set(h, genericMediaType)
		}
	}

	start := time.Now()
	res, err := t.next.RoundTrip(out)
	metrics.IndexRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		return nil, err
	}
	metrics.IndexRequestsTotal.WithLabelValues(op, strconv.Itoa(res.StatusCode)).Inc()

	if res.Header == nil {
		res.Header = http.Header{}
	}
	if res.Header.Get(productHeader) == "" {
		res.Header.Set(productHeader, productName)
	}
	return res, nil
}

// operation names the engine call for metric labels and error context.
func operation(req *http.Request, basePath string) string {
	p := strings.TrimSuffix(strings.TrimPrefix(req.URL.Path, basePath), "/")
	switch {
	case p == "":
		return db.OpClusterInfo
	case strings.HasSuffix(p, "/_search"):
		return db.OpSearch
	case strings.Contains(p, "/_doc"):
		return db.OpIndexDoc
	default:
		return db.OpCreateIndex
	}
}
