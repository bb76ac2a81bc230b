package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
	"github.com/kailas-cloud/photodex/internal/domain/search/result"
	"github.com/kailas-cloud/photodex/internal/logger"
	healthuc "github.com/kailas-cloud/photodex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/photodex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/photodex/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/photodex/internal/usecase/upload"
)

// customLabelsHeader carries custom labels on upload, mirroring S3 user metadata.
const customLabelsHeader = "X-Amz-Meta-" + label.MetadataKey

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the photodex HTTP API.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	upload        *uploaduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. upload can be nil to disable uploads.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	upload *uploaduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		ingest: ingest,
		upload: upload,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge),
		sentinelHandler(domain.ErrObjectNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrStorage, http.StatusBadGateway, CodeStorageError),
		sentinelHandler(domain.ErrDetectionFailed, http.StatusBadGateway, CodeDetectionFailed),
		sentinelHandler(domain.ErrIndexWriteRejected, http.StatusBadGateway, CodeIndexWriteRejected),
		sentinelHandler(domain.ErrSearchEngine, http.StatusBadGateway, CodeSearchEngineError),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchPhotos)
	r.Put("/photos", s.UploadPhoto)
	r.Post("/events/s3", s.IngestS3Event)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchPhotos handles GET /search?q=.
func (s *Server) SearchPhotos(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var q *string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, MissingQueryMessage)
		return
	}
	if q == nil || strings.TrimSpace(*q) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, MissingQueryMessage)
		return
	}

	results, err := s.search.Search(r.Context(), *q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]PhotoResult, len(results))
	for i := range results {
		items[i] = resultToAPI(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: items})
}

// UploadPhoto handles PUT /photos?objectKey=.
func (s *Server) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if s.upload == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "uploads are not configured")
		return
	}

	var objectKey *string
	if err := runtime.BindQueryParameter("form", true, false, "objectKey", r.URL.Query(), &objectKey); err != nil ||
		objectKey == nil || strings.TrimSpace(*objectKey) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Missing query param objectKey")
		return
	}

	err := s.upload.Upload(r.Context(), uploaduc.Request{
		ObjectKey:    *objectKey,
		ContentType:  r.Header.Get("Content-Type"),
		CustomLabels: r.Header.Get(customLabelsHeader),
		Body:         r.Body,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Bucket: s.upload.Bucket(), ObjectKey: *objectKey})
}

// IngestS3Event handles POST /events/s3 with an S3 event notification body.
// Any failure answers 4xx/5xx so the sender retries the whole event.
func (s *Server) IngestS3Event(w http.ResponseWriter, r *http.Request) {
	var event events.S3Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.ingest.IngestAll(r.Context(), ingestuc.ObjectsFromEvent(event))
	if err != nil {
		logger.FromContext(r.Context()).Warn("ingestion aborted",
			zap.Int("indexed", len(results)),
			zap.Int("records", len(event.Records)),
		)
		s.handleDomainError(w, err)
		return
	}

	indexed := make([]IndexedObject, len(results))
	for i, res := range results {
		indexed[i] = IndexedObject{ObjectKey: res.ObjectKey, DocumentID: res.DocumentID, Status: res.Status}
	}
	writeJSON(w, http.StatusOK, IngestResponse{Indexed: indexed})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrPayloadTooLarge,
		domain.ErrObjectNotFound,
		domain.ErrStorage,
		domain.ErrDetectionFailed,
		domain.ErrIndexWriteRejected,
		domain.ErrSearchEngine,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func resultToAPI(r *result.Result) PhotoResult {
	return PhotoResult{
		ObjectKey:        r.ObjectKey(),
		Bucket:           r.Bucket(),
		Labels:           r.Labels(),
		CreatedTimestamp: r.CreatedTimestamp(),
	}
}
