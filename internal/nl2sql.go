package internal

import (
	"context"
	"strings"
	"sync"
)

// SQLAnswerer is the remote NL2SQL service
type SQLAnswerer interface {
	SubmitNL2SQL(ctx context.Context, text, credential string) (*NL2SQLResponse, error)
}

// SQLAnswer is the settled state of the NL2SQL surface
type SQLAnswer struct {
	Question string
	SQL      Content
	Result   *Content // nil when the backend returned none
}

// SQLDispatcher is the NL2SQL counterpart of Dispatcher: same busy guard and
// input rules, but it settles into a single SQLAnswer instead of appending
// to a conversation.
type SQLDispatcher struct {
	busyGate
	answerer SQLAnswerer
	auth     *AuthContext

	mu     sync.RWMutex
	answer *SQLAnswer
}

// NewSQLDispatcher creates an NL2SQL dispatcher
func NewSQLDispatcher(answerer SQLAnswerer, auth *AuthContext) *SQLDispatcher {
	return &SQLDispatcher{answerer: answerer, auth: auth}
}

// Answer returns the last settled answer, nil before the first one and
// while a request is in flight.
func (d *SQLDispatcher) Answer() *SQLAnswer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.answer == nil {
		return nil
	}
	a := *d.answer
	return &a
}

// Submit asks the backend to translate question. The previous answer is
// cleared as soon as the request is issued.
func (d *SQLDispatcher) Submit(ctx context.Context, question string) Outcome {
	if strings.TrimSpace(question) == "" {
		return OutcomeRejectedEmpty
	}
	if !d.enter() {
		return OutcomeRejectedBusy
	}
	defer d.leave()

	d.setAnswer(nil)

	answer := &SQLAnswer{Question: question}
	outcome := OutcomeAnswered
	resp, err := d.answerer.SubmitNL2SQL(ctx, question, d.auth.Token())
	switch {
	case err != nil:
		LogWarn("nl2sql failed: %v", err)
		outcome = OutcomeFailed
		answer.SQL = TextContent(FallbackTransport)
	default:
		if resp.SQL == nil || resp.SQL.Falsy() {
			outcome = OutcomeNoAnswer
			answer.SQL = TextContent(FallbackNoSQL)
		} else {
			answer.SQL = *resp.SQL
		}
		if resp.Result != nil && !resp.Result.Falsy() {
			r := *resp.Result
			answer.Result = &r
		}
	}

	d.setAnswer(answer)
	return outcome
}

func (d *SQLDispatcher) setAnswer(a *SQLAnswer) {
	d.mu.Lock()
	d.answer = a
	d.mu.Unlock()
}
