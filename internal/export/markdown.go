package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
)

// MarkdownExporter renders a transcript for reading
type MarkdownExporter struct{}

// Export writes t as Markdown. Structured answers are fenced JSON blocks.
func (e *MarkdownExporter) Export(t *internal.Transcript, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", t.Name)
	_, _ = fmt.Fprintf(w, "**Source:** %s  \n", t.Source)
	if t.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", t.ExportedAt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Entries))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, entry := range t.Entries {
		var body string
		if text, ok := entry.Content.Text(); ok {
			body = escapeMarkdown(text)
		} else {
			body = "```json\n" + entry.Content.Render() + "\n```"
		}

		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", entry.Role, body)

		if i < len(t.Entries)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
