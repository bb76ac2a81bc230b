package opensearch

import (
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// LabelsField is the document field keywords are matched against.
const LabelsField = "labels"

// MaxResults caps the number of hits a search returns.
const MaxResults = 100

// BuildQuery turns keywords into a search request.
// No keywords: match_all. Otherwise a bool query that must match every keyword on labels.
func BuildQuery(keywords []string, size int) *search.Request {
	if size <= 0 {
		size = MaxResults
	}
	req := &search.Request{Size: &size}

	if len(keywords) == 0 {
		req.Query = &types.Query{MatchAll: &types.MatchAllQuery{}}
		return req
	}

	must := make([]types.Query, 0, len(keywords))
	for _, kw := range keywords {
		must = append(must, types.Query{
			Match: map[string]types.MatchQuery{
				LabelsField: {Query: kw},
			},
		})
	}
	req.Query = &types.Query{Bool: &types.BoolQuery{Must: must}}
	return req
}
