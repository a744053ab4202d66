package internal

import "context"

// Backend is everything the chat view needs from the server
type Backend interface {
	HistoryFetcher
	Persister
	Answerer
}

// ChatSession wires the store, history, sync agent and dispatcher behind one
// chat view. It starts empty and lives until Close.
type ChatSession struct {
	Auth       *AuthContext
	Store      *Store
	History    *Directory
	Sync       *Agent
	Dispatcher *Dispatcher

	stops []func()
}

// NewChatSession assembles the components; call Start before use.
func NewChatSession(backend Backend, auth *AuthContext, opts ...AgentOption) *ChatSession {
	store := NewStore()
	return &ChatSession{
		Auth:       auth,
		Store:      store,
		History:    NewDirectory(backend),
		Sync:       NewAgent(backend, auth, opts...),
		Dispatcher: NewDispatcher(store, backend, auth),
	}
}

// Start attaches the sync agent and loads history for the credential, then
// keeps history following credential changes.
func (cs *ChatSession) Start(ctx context.Context) {
	cs.stops = append(cs.stops, cs.Sync.Attach(cs.Store))
	cs.stops = append(cs.stops, cs.History.Follow(ctx, cs.Auth))
}

// Submit forwards to the dispatcher.
func (cs *ChatSession) Submit(ctx context.Context, text string) Outcome {
	return cs.Dispatcher.Submit(ctx, text)
}

// Open replaces the active conversation with history item i (0-based).
// It is refused while a query is in flight.
func (cs *ChatSession) Open(i int) error {
	if cs.Dispatcher.Busy() {
		return ErrBusy
	}
	entries, err := cs.History.Select(i)
	if err != nil {
		return err
	}
	cs.Store.ReplaceAll(entries)
	LogDebug("opened Chat #%d with %d entries", i+1, len(entries))
	return nil
}

// Reset starts a new, empty conversation.
func (cs *ChatSession) Reset() error {
	if cs.Dispatcher.Busy() {
		return ErrBusy
	}
	cs.Store.ReplaceAll(nil)
	return nil
}

// Close detaches listeners and waits for pending persists.
func (cs *ChatSession) Close() {
	for i := len(cs.stops) - 1; i >= 0; i-- {
		cs.stops[i]()
	}
	cs.stops = nil
	cs.Sync.Wait()
}
