package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/config"
	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	logpkg "github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
	photorepo "github.com/kailas-cloud/photodex/internal/repository/photo"
	awsTransport "github.com/kailas-cloud/photodex/internal/transport/aws"
	ingestuc "github.com/kailas-cloud/photodex/internal/usecase/ingest"
	"github.com/kailas-cloud/photodex/internal/version"
)

// handler ingests every record of an S3 notification. A returned error makes
// Lambda retry the whole event; document ids keep the retry idempotent.
type handler struct {
	ingest *ingestuc.Service
	logger *zap.Logger
}

func (h *handler) Handle(ctx context.Context, event events.S3Event) error {
	log := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(zap.String("request_id", lc.AwsRequestID))
	}
	ctx = logpkg.ContextWithLogger(ctx, log)

	results, err := h.ingest.IngestAll(ctx, ingestuc.ObjectsFromEvent(event))
	if err != nil {
		log.Error("ingestion failed",
			zap.Int("records", len(event.Records)),
			zap.Int("indexed", len(results)),
			zap.Error(err),
		)
		return fmt.Errorf("ingest event: %w", err)
	}

	log.Info("event ingested", zap.Int("records", len(event.Records)))
	return nil
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting photodex indexer",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("index_endpoint", cfg.Index.Endpoint),
		zap.String("index_name", cfg.Index.Name),
	)

	metrics.RegisterPipelineMetrics()

	awsCfg, err := awsTransport.LoadConfig(context.Background(), awsTransport.Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		S3Endpoint:      cfg.AWS.S3Endpoint,
		S3PathStyle:     cfg.AWS.S3PathStyle,
	})
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	var transport http.RoundTripper
	if cfg.Index.SignRequests {
		transport = awsTransport.NewSigningTransport(awsCfg, cfg.AWS.SigningService, nil)
	}
	index, err := opensearch.New(opensearch.Config{Endpoint: cfg.Index.Endpoint, Transport: transport})
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}

	s3Client := awsTransport.NewS3Client(awsCfg, awsTransport.Config{
		S3Endpoint:  cfg.AWS.S3Endpoint,
		S3PathStyle: cfg.AWS.S3PathStyle,
	})
	ingest := ingestuc.New(
		awsTransport.NewObjectStore(s3Client),
		awsTransport.NewDetector(rekognition.NewFromConfig(awsCfg), cfg.Detection.MaxLabels, cfg.Detection.MinConfidence),
		photorepo.New(index, cfg.Index.Name),
	)

	h := &handler{ingest: ingest, logger: logger}
	lambda.Start(h.Handle)
}
