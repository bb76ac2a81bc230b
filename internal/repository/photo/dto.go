package photo

import (
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"go.uber.org/zap"

	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/domain/search/result"
	"github.com/kailas-cloud/photodex/internal/logger"
)

// photoDoc is the JSON body stored in the index.
type photoDoc struct {
	ObjectKey        string   `json:"objectKey"`
	Bucket           string   `json:"bucket"`
	CreatedTimestamp string   `json:"createdTimestamp"`
	Labels           []string `json:"labels"`
}

func buildPhotoDoc(doc *domphoto.Document) photoDoc {
	labels := doc.Labels()
	if labels == nil {
		labels = []string{}
	}
	return photoDoc{
		ObjectKey:        doc.ObjectKey(),
		Bucket:           doc.Bucket(),
		CreatedTimestamp: doc.CreatedTimestamp(),
		Labels:           labels,
	}
}

// formatHits hydrates raw hits into results in engine order.
// Missing or malformed source fields fall back to empty values.
func formatHits(ctx context.Context, hits []types.Hit) []result.Result {
	results := make([]result.Result, 0, len(hits))
	for i := range hits {
		var src photoDoc
		if len(hits[i].Source_) > 0 {
			if err := json.Unmarshal(hits[i].Source_, &src); err != nil {
				logger.FromContext(ctx).Warn("malformed hit source",
					zap.String("doc_id", hitID(&hits[i])),
					zap.Error(err),
				)
				src = photoDoc{}
			}
		}
		doc := domphoto.Reconstruct(src.ObjectKey, src.Bucket, src.CreatedTimestamp, src.Labels)
		results = append(results, result.New(doc.ObjectKey(), doc.Bucket(), doc.Labels(), doc.CreatedTimestamp()))
	}
	return results
}

func hitID(h *types.Hit) string {
	if h.Id_ == nil {
		return ""
	}
	return *h.Id_
}
