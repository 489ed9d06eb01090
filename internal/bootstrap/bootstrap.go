package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/resume-classifier/internal/config"
	"github.com/kirillkom/resume-classifier/internal/core/ports"
	"github.com/kirillkom/resume-classifier/internal/core/usecase"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/extractor/document"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/ml"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/resume-classifier/internal/observability/metrics"
)

const ServiceName = "resume-api"

type App struct {
	Config config.Config

	Analyzer ports.ResumeAnalyzer
	Model    ml.Summary
	Metrics  *metrics.HTTPServerMetrics
}

// New loads the model artifacts and wires the pipeline. Any artifact problem
// is returned so the caller can refuse to start.
func New(cfg config.Config) (*App, error) {
	artifacts, err := ml.LoadArtifacts(ModelPaths(cfg))
	if err != nil {
		return nil, fmt.Errorf("load model artifacts: %w", err)
	}

	storage, err := localfs.New(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.ModelBreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.ModelBreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.ModelBreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.ModelBreakerOpenTimeoutMS) * time.Millisecond,
	})
	model := ml.NewGuardedModel(artifacts, artifacts, executor)

	httpMetrics := metrics.NewHTTPServerMetrics(ServiceName)
	analyzer := usecase.NewAnalyzeResumeUseCase(
		storage,
		document.NewExtractor(),
		model,
		model,
		usecase.AnalyzeOptions{
			AllowedExtensions: cfg.AllowedExtensions,
			KeepUploads:       cfg.KeepUploads,
			Observer:          httpMetrics,
		},
	)

	summary := artifacts.Summary()
	slog.Info("model_loaded",
		"vectorizer", cfg.ModelVectorizerPath,
		"classifier", cfg.ModelClassifierPath,
		"classifier_kind", summary.ClassifierKind,
		"features", summary.VectorizerDim,
		"categories", len(summary.Categories),
	)

	return &App{
		Config:   cfg,
		Analyzer: analyzer,
		Model:    summary,
		Metrics:  httpMetrics,
	}, nil
}

func ModelPaths(cfg config.Config) ml.Paths {
	return ml.Paths{
		Vectorizer:   cfg.ModelVectorizerPath,
		Classifier:   cfg.ModelClassifierPath,
		LabelEncoder: cfg.ModelLabelEncoderPath,
	}
}
