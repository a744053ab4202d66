package internal

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/knowledge-console/testutil"
)

func startSession(t *testing.T, backend *fakeBackend, token string) *ChatSession {
	t.Helper()
	cs := NewChatSession(backend, authedContext(token))
	cs.Start(context.Background())
	t.Cleanup(cs.Close)
	return cs
}

func TestChatSession_AskAndPersist(t *testing.T) {
	backend := &fakeBackend{result: contentPtr(TextContent("4.2M"))}
	cs := startSession(t, backend, "tok")

	outcome := cs.Submit(context.Background(), "What is our Q3 revenue?")
	cs.Sync.Wait()

	assert.Equal(t, OutcomeAnswered, outcome)
	assert.True(t, cs.Store.Entries().Equal(CreateTestConversation()))

	persisted := backend.persistedCopy()
	require.Len(t, persisted, 1)
	assert.True(t, persisted[0].Equal(CreateTestConversation()))
}

func TestChatSession_FailedQueryIsStillPersisted(t *testing.T) {
	backend := &fakeBackend{queryErr: errNetwork}
	cs := startSession(t, backend, "tok")

	cs.Submit(context.Background(), "q")
	cs.Sync.Wait()

	persisted := backend.persistedCopy()
	require.Len(t, persisted, 1)
	last, _ := persisted[0].Last()
	assert.Equal(t, FallbackTransport, last.Content.Render())
}

func TestChatSession_AnonymousDoesNotPersist(t *testing.T) {
	backend := &fakeBackend{result: contentPtr(TextContent("hi"))}
	cs := startSession(t, backend, "")

	cs.Submit(context.Background(), "hello")
	cs.Sync.Wait()

	assert.Equal(t, 2, cs.Store.Len())
	assert.Empty(t, backend.persistedCopy())
	assert.Equal(t, 0, backend.fetchCount())
}

func TestChatSession_OpenHistory(t *testing.T) {
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(testutil.HistoryFixture), &resp))
	backend := &fakeBackend{history: &resp, result: contentPtr(TextContent("more"))}
	cs := startSession(t, backend, "tok")
	require.Equal(t, 2, cs.History.Len())

	require.NoError(t, cs.Open(0))
	cs.Sync.Wait()
	assert.True(t, cs.Store.Entries().Equal(CreateTestConversation()))
	assert.Empty(t, backend.persistedCopy(), "opening a stored conversation does not save it")

	cs.Submit(context.Background(), "and Q4?")
	cs.Sync.Wait()
	persisted := backend.persistedCopy()
	require.Len(t, persisted, 1)
	assert.Len(t, persisted[0], 4, "continuing a stored conversation saves the whole log")

	assert.ErrorIs(t, cs.Open(5), ErrNoSuchConversation)
	assert.Equal(t, 4, cs.Store.Len(), "failed open leaves the store alone")
}

func TestChatSession_Reset(t *testing.T) {
	backend := &fakeBackend{result: contentPtr(TextContent("a"))}
	cs := startSession(t, backend, "tok")
	cs.Submit(context.Background(), "q")

	require.NoError(t, cs.Reset())
	assert.Equal(t, 0, cs.Store.Len())
}

func TestChatSession_RefusesSelectionWhileBusy(t *testing.T) {
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(testutil.HistoryFixture), &resp))
	backend := &fakeBackend{
		history: &resp,
		result:  contentPtr(TextContent("late answer")),
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	cs := startSession(t, backend, "tok")

	done := make(chan Outcome)
	go func() { done <- cs.Submit(context.Background(), "slow question") }()
	<-backend.entered

	assert.ErrorIs(t, cs.Open(0), ErrBusy)
	assert.ErrorIs(t, cs.Reset(), ErrBusy)

	close(backend.block)
	<-done
	entries := cs.Store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "slow question", entries[0].Content.Render())
	assert.Equal(t, "late answer", entries[1].Content.Render())
}

func TestChatSession_LoginLoadsHistory(t *testing.T) {
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(testutil.HistoryFixture), &resp))
	backend := &fakeBackend{history: &resp}
	cs := startSession(t, backend, "")
	assert.Equal(t, 0, cs.History.Len())

	require.NoError(t, cs.Auth.Login("tok"))
	assert.Equal(t, 2, cs.History.Len())

	require.NoError(t, cs.Auth.Logout())
	assert.Equal(t, 0, cs.History.Len())
}
