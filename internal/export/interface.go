package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
)

// Exporter writes a transcript in one file format
type Exporter interface {
	Export(t *internal.Transcript, w io.Writer) error
	Extension() string
}

// Formats lists the canonical format names accepted by NewExporter.
var Formats = []string{"md", "jsonl", "json", "yaml"}

// NewExporter returns the exporter for format. Names are matched
// case-insensitively and "markdown"/"yml" are accepted as aliases.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(Formats, ", "))
}
