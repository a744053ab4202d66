package internal

import (
	"context"
	"errors"
	"sync"
)

var errNetwork = errors.New("connection refused")

// fakeBackend records calls and answers from canned values
type fakeBackend struct {
	mu sync.Mutex

	history    *HistoryResponse
	historyErr error
	fetches    []string

	result     *Content
	queryErr   error
	queries    []string
	queryCreds []string
	// block, when set, holds SubmitQuery until it is closed
	block chan struct{}
	// entered receives once SubmitQuery has started
	entered chan struct{}

	sql, sqlResult *Content
	sqlErr         error

	persistErr   error
	persisted    []Conversation
	persistCreds []string
}

func (f *fakeBackend) FetchHistory(ctx context.Context, credential string) (*HistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, credential)
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if f.history == nil {
		return &HistoryResponse{}, nil
	}
	return f.history, nil
}

func (f *fakeBackend) SubmitQuery(ctx context.Context, text, credential string) (*QueryResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	f.queryCreds = append(f.queryCreds, credential)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &QueryResponse{Result: f.result}, nil
}

func (f *fakeBackend) SubmitNL2SQL(ctx context.Context, text, credential string) (*NL2SQLResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sqlErr != nil {
		return nil, f.sqlErr
	}
	return &NL2SQLResponse{SQL: f.sql, Result: f.sqlResult}, nil
}

func (f *fakeBackend) PersistConversation(ctx context.Context, entries Conversation, credential string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persisted = append(f.persisted, entries.Clone())
	f.persistCreds = append(f.persistCreds, credential)
	return f.persistErr
}

func (f *fakeBackend) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeBackend) persistedCopy() []Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Conversation(nil), f.persisted...)
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func contentPtr(c Content) *Content { return &c }

// authedContext returns an in-memory context holding token
func authedContext(token string) *AuthContext {
	a := NewAuthContext(nil)
	if token != "" {
		_ = a.Login(token)
	}
	return a
}
