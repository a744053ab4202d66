package internal

import (
	"sort"
	"sync"
)

// StoreEventKind distinguishes the two ways the store can change
type StoreEventKind int

const (
	EventAppended StoreEventKind = iota
	EventReplaced
)

// StoreEvent is delivered to listeners after every mutation
type StoreEvent struct {
	Kind     StoreEventKind
	LastRole Role // empty when the store is empty
	Entries  Conversation
}

// Settled reports whether the event leaves an assistant entry last.
func (e StoreEvent) Settled() bool {
	return len(e.Entries) > 0 && e.LastRole == RoleAssistant
}

// StoreListener observes store mutations. Listeners run synchronously on
// the mutating goroutine and must not mutate the store.
type StoreListener func(StoreEvent)

// Store holds the entry log of the conversation on screen
type Store struct {
	mu      sync.RWMutex
	entries Conversation

	// emitMu spans mutation and delivery so events arrive in mutation order.
	emitMu    sync.Mutex
	listenMu  sync.Mutex
	listeners map[int]StoreListener
	nextID    int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{listeners: make(map[int]StoreListener)}
}

// Append adds entry at the end of the log.
func (s *Store) Append(entry MessageEntry) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	snapshot := s.entries.Clone()
	s.mu.Unlock()

	s.emit(StoreEvent{Kind: EventAppended, LastRole: entry.Role, Entries: snapshot})
}

// ReplaceAll discards the current log and substitutes entries.
func (s *Store) ReplaceAll(entries Conversation) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.entries = entries.Clone()
	snapshot := s.entries.Clone()
	s.mu.Unlock()

	var last Role
	if l, ok := snapshot.Last(); ok {
		last = l.Role
	}
	s.emit(StoreEvent{Kind: EventReplaced, LastRole: last, Entries: snapshot})
}

// Entries returns a snapshot of the log.
func (s *Store) Entries() Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Clone()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Last returns the most recent entry.
func (s *Store) Last() (MessageEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Last()
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l StoreListener) func() {
	s.listenMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenMu.Unlock()

	return func() {
		s.listenMu.Lock()
		delete(s.listeners, id)
		s.listenMu.Unlock()
	}
}

func (s *Store) emit(ev StoreEvent) {
	s.listenMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.listenMu.Unlock()

	// registration order
	sort.Ints(ids)
	for _, id := range ids {
		s.listenMu.Lock()
		l, ok := s.listeners[id]
		s.listenMu.Unlock()
		if ok {
			l(ev)
		}
	}
}
