package internal

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Fallback texts shown as assistant entries
const (
	FallbackNoAnswer  = "No answer."
	FallbackNoSQL     = "No SQL generated."
	FallbackTransport = "Error contacting server."
)

// Outcome reports what a submission did
type Outcome int

const (
	// OutcomeRejectedEmpty: blank input, nothing happened.
	OutcomeRejectedEmpty Outcome = iota
	// OutcomeRejectedBusy: a request was already in flight, nothing happened.
	OutcomeRejectedBusy
	// OutcomeAnswered: the backend returned a result.
	OutcomeAnswered
	// OutcomeNoAnswer: the backend responded without a usable result.
	OutcomeNoAnswer
	// OutcomeFailed: transport or decode failure, fallback text shown.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejectedEmpty:
		return "rejected-empty"
	case OutcomeRejectedBusy:
		return "rejected-busy"
	case OutcomeAnswered:
		return "answered"
	case OutcomeNoAnswer:
		return "no-answer"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatched reports whether a request was issued.
func (o Outcome) Dispatched() bool {
	return o >= OutcomeAnswered
}

// busyGate admits one request at a time without queueing
type busyGate struct {
	busy atomic.Bool
}

func (g *busyGate) enter() bool { return g.busy.CompareAndSwap(false, true) }
func (g *busyGate) leave() { g.busy.Store(false) }

// Busy reports whether a request is in flight.
func (g *busyGate) Busy() bool { return g.busy.Load() }

// Answerer is the remote answer-producing service
type Answerer interface {
	SubmitQuery(ctx context.Context, text, credential string) (*QueryResponse, error)
}

// Dispatcher runs one request/response cycle per submission and records
// both sides in the store.
type Dispatcher struct {
	busyGate
	store    *Store
	answerer Answerer
	auth     *AuthContext

	mu    sync.Mutex
	input string
}

// NewDispatcher creates a query dispatcher writing into store
func NewDispatcher(store *Store, answerer Answerer, auth *AuthContext) *Dispatcher {
	return &Dispatcher{store: store, answerer: answerer, auth: auth}
}

// SetInput replaces the input buffer.
func (d *Dispatcher) SetInput(s string) {
	d.mu.Lock()
	d.input = s
	d.mu.Unlock()
}

// Input returns the input buffer.
func (d *Dispatcher) Input() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Submit sets the input buffer to text and sends it.
func (d *Dispatcher) Submit(ctx context.Context, text string) Outcome {
	d.SetInput(text)
	return d.Send(ctx)
}

// Send submits the input buffer. Blank input and submissions while busy
// are ignored. Otherwise the call blocks until the backend responds or
// ctx ends, and always leaves the input cleared and the dispatcher idle.
func (d *Dispatcher) Send(ctx context.Context) Outcome {
	text := d.Input()
	if strings.TrimSpace(text) == "" {
		return OutcomeRejectedEmpty
	}
	if !d.enter() {
		LogDebug("submission ignored: query in flight")
		return OutcomeRejectedBusy
	}
	defer d.leave()

	d.store.Append(UserEntry(text))

	outcome := OutcomeAnswered
	resp, err := d.answerer.SubmitQuery(ctx, text, d.auth.Token())
	switch {
	case err != nil:
		LogWarn("query failed: %v", err)
		outcome = OutcomeFailed
		d.store.Append(AssistantEntry(TextContent(FallbackTransport)))
	case resp.Result == nil || resp.Result.Falsy():
		outcome = OutcomeNoAnswer
		d.store.Append(AssistantEntry(TextContent(FallbackNoAnswer)))
	default:
		d.store.Append(AssistantEntry(*resp.Result))
	}

	d.SetInput("")
	return outcome
}
