package opensearch

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9/typedapi/indices/create"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"

	"github.com/kailas-cloud/photodex/internal/db"
	"github.com/kailas-cloud/photodex/internal/domain"
)

// PhotoMapping is the index mapping for photo documents.
// labels is analyzed text with an exact keyword subfield.
func PhotoMapping() *create.Request {
	labels := types.NewTextProperty()
	labels.Fields = map[string]types.Property{"raw": types.NewKeywordProperty()}

	return &create.Request{
		Mappings: &types.TypeMapping{
			Properties: map[string]types.Property{
				"objectKey":        types.NewKeywordProperty(),
				"bucket":           types.NewKeywordProperty(),
				"createdTimestamp": types.NewDateProperty(),
				LabelsField:        labels,
			},
		},
	}
}

// EnsureIndex creates the index with the given mapping unless it already exists.
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping *create.Request) error {
	res, err := c.es.Indices.Exists(index).Perform(ctx)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	head, err := readResponse(db.OpCreateIndex, res)
	if err != nil {
		return err
	}
	if head.OK() {
		return nil
	}
	if head.Status != http.StatusNotFound {
		return &db.Error{Op: db.OpCreateIndex, Err: domain.NewEngineError(head.Status, string(head.Body))}
	}

	res, err = c.es.Indices.Create(index).Request(mapping).Perform(ctx)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	resp, err := readResponse(db.OpCreateIndex, res)
	if err != nil {
		return err
	}
	switch {
	case resp.OK():
		return nil
	case resp.Status == http.StatusBadRequest && containsResourceExists(resp.Body):
		// created concurrently by another instance
		return nil
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: domain.NewEngineError(resp.Status, string(resp.Body))}
	}
}

func containsResourceExists(body []byte) bool {
	var parsed struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return false
	}
	return parsed.Error.Type == "resource_already_exists_exception"
}
