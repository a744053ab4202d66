package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one request seen by a recording server
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   string
	Header http.Header
}

// RequestLog collects requests in arrival order
type RequestLog struct {
	mu   sync.Mutex
	reqs []Request
}

func (l *RequestLog) add(r Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

// Count returns how many requests arrived.
func (l *RequestLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reqs)
}

// At returns the i-th request.
func (l *RequestLog) At(i int) Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reqs[i]
}

// NewRecordingServer starts a server that answers every request with status
// and body and records what it received. It is closed when the test ends.
func NewRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *RequestLog) {
	t.Helper()
	reqs := &RequestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		reqs.add(Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(data),
			Header: r.Header.Clone(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, reqs
}
