package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-classifier/internal/config"
	"github.com/kirillkom/resume-classifier/internal/observability/logging"
)

const app = "resumectl"

type rootOptions struct {
	modelDir     string
	vectorizer   string
	classifier   string
	labelEncoder string
	logLevel     string
	jsonOutput   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          app,
		Short:        "resumectl classifies resumes offline with the same model artifacts as the API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.NewTextLogger(cmd.ErrOrStderr(), opts.logLevel))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.modelDir, "model-dir", "", "directory holding vectorizer.json, classifier.json and label_encoder.json (default $MODEL_DIR or ./models)")
	flags.StringVar(&opts.vectorizer, "vectorizer", "", "vectorizer artifact path, overrides --model-dir")
	flags.StringVar(&opts.classifier, "classifier", "", "classifier artifact path, overrides --model-dir")
	flags.StringVar(&opts.labelEncoder, "label-encoder", "", "label encoder artifact path, overrides --model-dir")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVarP(&opts.jsonOutput, "json", "j", false, "print results as JSON")

	cmd.AddCommand(newClassifyCmd(opts), newInspectCmd(opts))
	return cmd
}

// config starts from the environment and applies the flag overrides.
func (o *rootOptions) config() config.Config {
	cfg := config.Load()
	if o.modelDir != "" {
		cfg.ModelDir = o.modelDir
		cfg.ModelVectorizerPath = filepath.Join(o.modelDir, "vectorizer.json")
		cfg.ModelClassifierPath = filepath.Join(o.modelDir, "classifier.json")
		cfg.ModelLabelEncoderPath = filepath.Join(o.modelDir, "label_encoder.json")
	}
	if o.vectorizer != "" {
		cfg.ModelVectorizerPath = o.vectorizer
	}
	if o.classifier != "" {
		cfg.ModelClassifierPath = o.classifier
	}
	if o.labelEncoder != "" {
		cfg.ModelLabelEncoderPath = o.labelEncoder
	}
	return cfg
}
