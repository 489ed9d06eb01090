package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-classifier/internal/bootstrap"
)

type classifyResult struct {
	File     string `json:"file"`
	Category string `json:"category"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "Predict the job category of a resume file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := os.MkdirTemp("", "resumectl-*")
			if err != nil {
				return fmt.Errorf("create work dir: %w", err)
			}
			defer os.RemoveAll(workDir)

			cfg := opts.config()
			cfg.UploadDir = workDir
			cfg.KeepUploads = false

			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}

			path := args[0]
			category, err := classifyFile(cmd, app, path)
			if err != nil {
				return fmt.Errorf("classify %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(classifyResult{File: path, Category: category})
			}
			_, err = fmt.Fprintf(out, "%s\t%s\n", path, category)
			return err
		},
	}
}

func classifyFile(cmd *cobra.Command, app *bootstrap.App, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pred, err := app.Analyzer.Analyze(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return "", err
	}
	return pred.Category, nil
}
