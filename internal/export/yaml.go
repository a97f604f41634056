package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docassist/internal/models"
)

// YAMLExporter exports transcripts in YAML format
type YAMLExporter struct{}

// Export writes t as one YAML document
func (e *YAMLExporter) Export(t *models.Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(t)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
