package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/knowledge-console/internal"
)

// JSONLExporter writes one {role, content} object per line, the same shape
// save_chat receives
type JSONLExporter struct{}

// Export writes each entry of t on its own line
func (e *JSONLExporter) Export(t *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, entry := range t.Entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i+1, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
