package chi

// ErrorCode is the machine-readable error code of an API error.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeNotFound           ErrorCode = "not_found"
	CodePayloadTooLarge    ErrorCode = "payload_too_large"
	CodeStorageError       ErrorCode = "storage_error"
	CodeDetectionFailed    ErrorCode = "detection_failed"
	CodeIndexWriteRejected ErrorCode = "index_write_rejected"
	CodeSearchEngineError  ErrorCode = "search_engine_error"
	CodeNotImplemented     ErrorCode = "not_implemented"
	CodeInternalError      ErrorCode = "internal_error"
)

// MissingQueryMessage is returned when GET /search has no q parameter.
const MissingQueryMessage = "Missing query param q"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PhotoResult is one search hit.
type PhotoResult struct {
	ObjectKey        string   `json:"objectKey"`
	Bucket           string   `json:"bucket"`
	Labels           []string `json:"labels"`
	CreatedTimestamp string   `json:"createdTimestamp"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Results []PhotoResult `json:"results"`
}

// UploadResponse is the body of PUT /photos.
type UploadResponse struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"objectKey"`
}

// IndexedObject reports one ingested object.
type IndexedObject struct {
	ObjectKey  string `json:"objectKey"`
	DocumentID string `json:"documentId"`
	Status     int    `json:"status"`
}

// IngestResponse is the body of POST /events/s3.
type IngestResponse struct {
	Indexed []IndexedObject `json:"indexed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
