package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/knowledge-console/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	structuredContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Padding(0, 2).
				MarginBottom(1)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

func renderHeader(w io.Writer, title string, meta ...string) {
	_, _ = fmt.Fprintln(w, headerStyle.Render(title))
	if len(meta) > 0 {
		_, _ = fmt.Fprintln(w, metaStyle.Render(strings.Join(meta, " • ")))
	}
	_, _ = fmt.Fprintln(w)
}

// renderEntry prints one entry; index is 1-based.
func renderEntry(w io.Writer, index, total int, entry internal.MessageEntry) {
	var label string
	var style lipgloss.Style
	switch entry.Role {
	case internal.RoleUser:
		style = userMessageStyle
		label = "You"
	default:
		style = assistantMessageStyle
		label = "Assistant"
	}

	header := style.Render(label)
	if total > 0 {
		header += " " + indexStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	}
	_, _ = fmt.Fprintln(w, header)

	if text, ok := entry.Content.Text(); ok {
		text = strings.TrimSpace(text)
		if text == "" {
			_, _ = fmt.Fprintln(w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
			return
		}
		_, _ = fmt.Fprintln(w, messageContentStyle.Render(wrapText(text, 80)))
		return
	}
	// structured answers keep their JSON layout
	_, _ = fmt.Fprintln(w, structuredContentStyle.Render(entry.Content.Render()))
}

func renderConversation(w io.Writer, entries internal.Conversation) {
	for i, entry := range entries {
		renderEntry(w, i+1, len(entries), entry)
	}
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
				}
				currentLine = word
			} else if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

// previewOf shortens the first user entry for list views.
func previewOf(entries internal.Conversation, width int) string {
	for _, e := range entries {
		if e.Role != internal.RoleUser {
			continue
		}
		text := strings.Join(strings.Fields(e.Content.Render()), " ")
		if len(text) > width {
			return text[:width-3] + "..."
		}
		return text
	}
	return "(no question)"
}
