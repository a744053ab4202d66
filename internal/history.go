package internal

import (
	"context"
	"fmt"
	"sync"
)

// HistoryFetcher retrieves stored conversations for a credential
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, credential string) (*HistoryResponse, error)
}

// Directory is the client-held list of past conversations. It is fetched
// once per credential and never refreshed on its own.
type Directory struct {
	fetcher HistoryFetcher

	mu         sync.RWMutex
	credential string
	loaded     bool
	summaries  []HistorySummary
}

// NewDirectory creates an empty directory
func NewDirectory(fetcher HistoryFetcher) *Directory {
	return &Directory{fetcher: fetcher}
}

// Load fetches the list for credential. An empty credential clears the list
// without a fetch; the credential already loaded is not fetched again.
// Failures leave the list empty and are only logged.
func (d *Directory) Load(ctx context.Context, credential string) {
	d.mu.Lock()
	if credential == "" {
		d.credential = ""
		d.loaded = false
		d.summaries = nil
		d.mu.Unlock()
		return
	}
	if d.loaded && d.credential == credential {
		d.mu.Unlock()
		return
	}
	d.credential = credential
	d.loaded = true
	d.summaries = nil
	d.mu.Unlock()

	resp, err := d.fetcher.FetchHistory(ctx, credential)
	if err != nil {
		LogWarn("history unavailable: %v", err)
		return
	}

	summaries := make([]HistorySummary, 0, len(resp.Chats))
	for i, chat := range resp.Chats {
		summaries = append(summaries, HistorySummary{
			Ordinal: i + 1,
			Count:   len(chat.Messages),
			Entries: chat.Messages.Clone(),
		})
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// a newer Load may have replaced the credential meanwhile
	if d.credential != credential {
		return
	}
	d.summaries = summaries
	LogDebug("loaded %d stored conversation(s)", len(summaries))
}

// Follow loads for the current credential of auth and again on every
// credential change. The returned func stops following.
func (d *Directory) Follow(ctx context.Context, auth *AuthContext) func() {
	stop := auth.OnChange(func(token string) {
		d.Load(ctx, token)
	})
	d.Load(ctx, auth.Token())
	return stop
}

// Summaries returns a copy of the list.
func (d *Directory) Summaries() []HistorySummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]HistorySummary, len(d.summaries))
	for i, s := range d.summaries {
		s.Entries = s.Entries.Clone()
		out[i] = s
	}
	return out
}

// Len returns the number of stored conversations.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.summaries)
}

// Select returns the entries of the conversation at 0-based position i.
func (d *Directory) Select(i int) (Conversation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.summaries) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrNoSuchConversation, i+1, len(d.summaries))
	}
	return d.summaries[i].Entries.Clone(), nil
}
