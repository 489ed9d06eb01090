package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-classifier/internal/bootstrap"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/ml"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load and check the model artifacts, then print what they contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.config()
			artifacts, err := ml.LoadArtifacts(bootstrap.ModelPaths(cfg))
			if err != nil {
				return err
			}
			summary := artifacts.Summary()

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Fprintf(out, "vectorizer:      %s\n", cfg.ModelVectorizerPath)
			fmt.Fprintf(out, "classifier:      %s (%s)\n", cfg.ModelClassifierPath, summary.ClassifierKind)
			fmt.Fprintf(out, "features:        %d (vocabulary %d)\n", summary.VectorizerDim, summary.VocabularySize)
			fmt.Fprintf(out, "encoded labels:  %t\n", summary.EncodedLabels)
			fmt.Fprintf(out, "categories:      %s\n", strings.Join(summary.Categories, ", "))
			return nil
		},
	}
}
