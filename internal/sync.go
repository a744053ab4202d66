package internal

import (
	"context"
	"sync"
)

// Persister stores a settled conversation on the backend
type Persister interface {
	PersistConversation(ctx context.Context, entries Conversation, credential string) error
}

// DropFunc receives conversations whose persist failed
type DropFunc func(entries Conversation, err error)

// Agent pushes the active conversation to the backend every time an
// assistant entry is appended. Persists are fire-and-forget: nothing is
// retried and failures never reach the store.
type Agent struct {
	persister Persister
	auth      *AuthContext
	onDrop    DropFunc

	wg sync.WaitGroup
}

// AgentOption customizes an Agent
type AgentOption func(*Agent)

// WithDropHook is called, from the persist goroutine, for each failed persist.
func WithDropHook(fn DropFunc) AgentOption {
	return func(a *Agent) { a.onDrop = fn }
}

// NewAgent creates a sync agent
func NewAgent(persister Persister, auth *AuthContext, opts ...AgentOption) *Agent {
	a := &Agent{persister: persister, auth: auth}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ShouldPersist is the settle trigger: an append that leaves a non-empty log
// ending in an assistant entry, with a credential present.
func ShouldPersist(ev StoreEvent, credential string) bool {
	return ev.Kind == EventAppended && ev.Settled() && credential != ""
}

// Attach subscribes the agent to s. The returned func detaches it.
func (a *Agent) Attach(s *Store) func() {
	return s.Subscribe(a.handle)
}

func (a *Agent) handle(ev StoreEvent) {
	credential := a.auth.Token()
	if !ShouldPersist(ev, credential) {
		return
	}

	entries := ev.Entries
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.persister.PersistConversation(context.Background(), entries, credential); err != nil {
			LogWarn("conversation not saved (%d entries): %v", len(entries), err)
			if a.onDrop != nil {
				a.onDrop(entries, err)
			}
			return
		}
		LogDebug("conversation saved (%d entries)", len(entries))
	}()
}

// Wait blocks until every in-flight persist has finished.
func (a *Agent) Wait() {
	a.wg.Wait()
}
