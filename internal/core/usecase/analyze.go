package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
	"github.com/kirillkom/resume-classifier/internal/core/ports"
)

const (
	StageValidate  = "validate"
	StageStore     = "store"
	StageExtract   = "extract"
	StageVectorize = "vectorize"
	StageClassify  = "classify"
)

type AnalyzeOptions struct {
	AllowedExtensions []string
	KeepUploads       bool
	Observer          ports.AnalysisObserver
}

// AnalyzeResumeUseCase runs validate, store, extract, vectorize and classify
// for one upload. It holds no per-request state.
type AnalyzeResumeUseCase struct {
	store      ports.DocumentStore
	extractor  ports.TextExtractor
	vectorizer ports.Vectorizer
	classifier ports.Classifier
	allowed    []string
	keep       bool
	observer   ports.AnalysisObserver
}

func NewAnalyzeResumeUseCase(
	store ports.DocumentStore,
	extractor ports.TextExtractor,
	vectorizer ports.Vectorizer,
	classifier ports.Classifier,
	opts AnalyzeOptions,
) *AnalyzeResumeUseCase {
	allowed := opts.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	return &AnalyzeResumeUseCase{
		store:      store,
		extractor:  extractor,
		vectorizer: vectorizer,
		classifier: classifier,
		allowed:    allowed,
		keep:       opts.KeepUploads,
		observer:   observer,
	}
}

func (uc *AnalyzeResumeUseCase) Analyze(ctx context.Context, filename string, body io.Reader) (*domain.Prediction, error) {
	safeName, err := uc.validate(filename)
	if err != nil {
		return nil, err
	}

	doc, err := uc.save(ctx, safeName, body)
	if err != nil {
		return nil, err
	}
	if !uc.keep {
		defer uc.discard(doc)
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, err
	}

	category, err := uc.classify(text)
	if err != nil {
		return nil, err
	}

	uc.observer.ObservePrediction(category)
	slog.Info("resume_analyzed",
		"filename", filename,
		"stored_name", doc.Name,
		"format", doc.Format.String(),
		"category", category,
	)
	return &domain.Prediction{
		Filename:   filename,
		StoredName: doc.Name,
		Category:   category,
	}, nil
}

func (uc *AnalyzeResumeUseCase) validate(filename string) (string, error) {
	safeName, err := ValidateFilename(filename, uc.allowed)
	if err != nil {
		uc.observer.ObserveFailure(StageValidate)
		return "", err
	}
	return safeName, nil
}

func (uc *AnalyzeResumeUseCase) save(ctx context.Context, name string, body io.Reader) (*domain.StoredDocument, error) {
	started := time.Now()
	doc, err := uc.store.Save(ctx, name, body)
	uc.observer.ObserveStage(StageStore, time.Since(started))
	if err != nil {
		uc.observer.ObserveFailure(StageStore)
		if errors.Is(err, domain.ErrStorage) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrStorage, "save upload", err)
	}
	if doc.Format == domain.FormatUnknown {
		ext, _ := fileExtension(doc.Name)
		doc.Format = domain.ParseFormat(ext)
	}
	return doc, nil
}

func (uc *AnalyzeResumeUseCase) extractText(ctx context.Context, doc *domain.StoredDocument) (string, error) {
	started := time.Now()
	text, err := uc.extractor.Extract(ctx, doc)
	uc.observer.ObserveStage(StageExtract, time.Since(started))
	if err != nil {
		uc.observer.ObserveFailure(StageExtract)
		slog.Warn("resume_extraction_failed", "stored_name", doc.Name, "error", err.Error())
		if errors.Is(err, domain.ErrExtraction) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract "+doc.Name, err)
	}
	if text == "" {
		uc.observer.ObserveFailure(StageExtract)
		return "", domain.WrapError(domain.ErrEmptyContent, "extract "+doc.Name, errors.New("no text in document"))
	}
	uc.observer.ObserveExtractedText(utf8.RuneCountInString(text))
	return text, nil
}

func (uc *AnalyzeResumeUseCase) classify(text string) (string, error) {
	started := time.Now()
	vec, err := uc.vectorizer.Transform(text)
	uc.observer.ObserveStage(StageVectorize, time.Since(started))
	if err != nil {
		uc.observer.ObserveFailure(StageVectorize)
		return "", modelError("vectorize", err)
	}

	started = time.Now()
	category, err := uc.classifier.Predict(vec)
	uc.observer.ObserveStage(StageClassify, time.Since(started))
	if err != nil {
		uc.observer.ObserveFailure(StageClassify)
		return "", modelError("predict", err)
	}
	if category == "" {
		uc.observer.ObserveFailure(StageClassify)
		return "", domain.WrapError(domain.ErrModel, "predict", errors.New("classifier returned an empty label"))
	}
	return category, nil
}

func (uc *AnalyzeResumeUseCase) discard(doc *domain.StoredDocument) {
	if err := uc.store.Remove(context.Background(), doc.Name); err != nil {
		slog.Warn("upload_cleanup_failed", "stored_name", doc.Name, "error", err.Error())
	}
}

func modelError(op string, err error) error {
	if errors.Is(err, domain.ErrModel) || errors.Is(err, domain.ErrTemporary) {
		return err
	}
	return domain.WrapError(domain.ErrModel, op, err)
}

type noopObserver struct{}

func (noopObserver) ObservePrediction(string)           {}
func (noopObserver) ObserveFailure(string)              {}
func (noopObserver) ObserveExtractedText(int)           {}
func (noopObserver) ObserveStage(string, time.Duration) {}
