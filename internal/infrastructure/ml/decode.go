package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// decodeArtifact reads a JSON or YAML artifact, chosen by file extension.
func decodeArtifact(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode json %s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decode yaml %s: %w", filepath.Base(path), err)
		}
	default:
		return fmt.Errorf("unsupported artifact encoding %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}
