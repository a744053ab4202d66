package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/iksnae/knowledge-console/internal"
)

// YAMLExporter writes the transcript as YAML; structured answers become
// native YAML mappings and sequences
type YAMLExporter struct{}

// Export writes t as YAML
func (e *YAMLExporter) Export(t *internal.Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(t)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
