package internal

import (
	"encoding/json"
	"fmt"
)

// Role identifies who produced a message entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalJSON rejects unknown roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	role := Role(s)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = role
	return nil
}

// MessageEntry is one turn of a conversation
type MessageEntry struct {
	Role    Role    `json:"role" yaml:"role"`
	Content Content `json:"content" yaml:"content"`
}

// UserEntry builds a user turn carrying raw input text.
func UserEntry(text string) MessageEntry {
	return MessageEntry{Role: RoleUser, Content: TextContent(text)}
}

// AssistantEntry builds an assistant turn.
func AssistantEntry(c Content) MessageEntry {
	return MessageEntry{Role: RoleAssistant, Content: c}
}

// Equal compares role and content.
func (m MessageEntry) Equal(o MessageEntry) bool {
	return m.Role == o.Role && m.Content.Equal(o.Content)
}

// Conversation is an ordered entry log
type Conversation []MessageEntry

// Last returns the most recent entry.
func (c Conversation) Last() (MessageEntry, bool) {
	if len(c) == 0 {
		return MessageEntry{}, false
	}
	return c[len(c)-1], true
}

// Settled reports whether the most recent entry is an assistant response.
func (c Conversation) Settled() bool {
	last, ok := c.Last()
	return ok && last.Role == RoleAssistant
}

// Equal compares two conversations entry by entry.
func (c Conversation) Equal(o Conversation) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// HistorySummary describes one stored conversation
type HistorySummary struct {
	Ordinal int          `json:"ordinal" yaml:"ordinal"` // 1-based position in the fetched list
	Count   int          `json:"count" yaml:"count"`
	Entries Conversation `json:"messages" yaml:"messages"`
}

// Title is the display label used by list views.
func (h HistorySummary) Title() string {
	return fmt.Sprintf("Chat #%d", h.Ordinal)
}

// StoredChat is one element of the get_chats payload
type StoredChat struct {
	Username string       `json:"username,omitempty"`
	Messages Conversation `json:"messages"`
}

// HistoryResponse is the get_chats payload
type HistoryResponse struct {
	Chats []StoredChat `json:"chats"`
}

// QueryResponse is the query payload
type QueryResponse struct {
	Result *Content `json:"result,omitempty"`
}

// NL2SQLResponse is the nl2sql payload
type NL2SQLResponse struct {
	SQL    *Content `json:"sql,omitempty"`
	Result *Content `json:"result,omitempty"`
}

// LoginResponse is the login payload
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IngestResponse is the ingest payload
type IngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks,omitempty"`
}

// Transcript sources
const (
	SourceHistory = "history"
	SourceSession = "session"
)

// Transcript is an exportable view of a conversation
type Transcript struct {
	Name       string       `json:"name" yaml:"name"`
	Source     string       `json:"source" yaml:"source"`
	ExportedAt string       `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	Entries    Conversation `json:"messages" yaml:"messages"`
}

// TranscriptFromSummary wraps a stored conversation.
func TranscriptFromSummary(h HistorySummary) *Transcript {
	return &Transcript{
		Name:    h.Title(),
		Source:  SourceHistory,
		Entries: h.Entries.Clone(),
	}
}
