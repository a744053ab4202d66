package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/knowledge-console/internal"
)

func newBackend(t *testing.T, opts ...Option) (*Server, *internal.Client) {
	t.Helper()
	s := New(opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, internal.NewClient(srv.URL)
}

func TestStub_SignupAndLogin(t *testing.T) {
	s, client := newBackend(t)

	body := bytes.NewBufferString(`{"username":"alice","password":"pw"}`)
	resp, err := http.Post(client.BaseURL()+"/signup", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Error(t, s.AddUser("alice", "again"), "duplicate user")

	login, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bearer", login.TokenType)

	auth := internal.NewAuthContext(nil)
	require.NoError(t, auth.Login(login.AccessToken))
	claims, err := auth.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	_, err = client.Login(context.Background(), "alice", "wrong")
	var apiErr *internal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
}

func TestStub_RequiresBearer(t *testing.T) {
	_, client := newBackend(t)

	_, err := client.FetchHistory(context.Background(), "")
	require.NoError(t, err, "a 401 body still decodes")

	err = client.PersistConversation(context.Background(), internal.CreateTestConversation(), "garbage")
	var apiErr *internal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestStub_RejectsForeignSignature(t *testing.T) {
	s, client := newBackend(t)
	other := New(WithSecret("other-secret"))
	token, err := other.IssueToken("mallory")
	require.NoError(t, err)

	err = client.PersistConversation(context.Background(), internal.CreateTestConversation(), token)
	assert.Error(t, err)
	assert.Equal(t, 0, s.Saves())
}

func TestStub_SaveAndList(t *testing.T) {
	s, client := newBackend(t)
	alice, _ := s.IssueToken("alice")
	bob, _ := s.IssueToken("bob")

	ctx := context.Background()
	require.NoError(t, client.PersistConversation(ctx, internal.CreateTestConversation(), alice))
	require.NoError(t, client.PersistConversation(ctx, internal.CreateTestStructuredConversation(), alice))
	require.NoError(t, client.PersistConversation(ctx, internal.CreateTestConversation(), bob))

	assert.Equal(t, 3, s.Saves())
	assert.Equal(t, 2, s.ChatCount("alice"))

	history, err := client.FetchHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history.Chats, 2)
	assert.Equal(t, "alice", history.Chats[0].Username)
	assert.True(t, history.Chats[1].Messages.Equal(internal.CreateTestStructuredConversation()))
}

func TestStub_Query(t *testing.T) {
	s, client := newBackend(t, WithAnswer(func(q string) interface{} {
		if strings.Contains(q, "revenue") {
			return "4.2M"
		}
		return nil
	}))
	token, _ := s.IssueToken("alice")

	resp, err := client.SubmitQuery(context.Background(), "What is our Q3 revenue?", token)
	require.NoError(t, err)
	assert.Equal(t, "4.2M", resp.Result.Render())

	resp, err = client.SubmitQuery(context.Background(), "unrelated", token)
	require.NoError(t, err)
	assert.Nil(t, resp.Result)
}

func TestStub_NL2SQL(t *testing.T) {
	s, client := newBackend(t)
	token, _ := s.IssueToken("alice")

	resp, err := client.SubmitNL2SQL(context.Background(), "count users", token)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", resp.SQL.Render())
	assert.Equal(t, "[MOCKED] DB results would appear here.", resp.Result.Render())
}

func TestStub_Ingest(t *testing.T) {
	s, client := newBackend(t)
	token, _ := s.IssueToken("alice")
	ctx := context.Background()

	resp, err := client.Ingest(ctx, "notes.txt", strings.NewReader(strings.Repeat("a", 1200)), "text", token)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.Chunks)

	resp, err = client.Ingest(ctx, "deck.pptx", strings.NewReader("slides"), "pptx", token)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "not supported")

	resp, err = client.Ingest(ctx, "blank.txt", strings.NewReader("   "), "text", token)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
}

func TestChunkCount(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 1},
		{500, 1},
		{501, 2},
		{950, 2},
		{951, 3},
		{1200, 3},
	}
	for _, tt := range tests {
		if got := chunkCount(tt.n, 500, 50); got != tt.want {
			t.Errorf("chunkCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestStub_Health(t *testing.T) {
	_, client := newBackend(t)
	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestStub_ChatSessionRoundTrip(t *testing.T) {
	s, client := newBackend(t, WithAnswer(func(string) interface{} {
		return map[string]interface{}{"revenue": 4.2, "unit": "M"}
	}))
	token, _ := s.IssueToken("alice")

	auth := internal.NewAuthContext(nil)
	cs := internal.NewChatSession(client, auth)
	cs.Start(context.Background())
	defer cs.Close()

	require.NoError(t, auth.Login(token))
	assert.Equal(t, 0, cs.History.Len())

	outcome := cs.Submit(context.Background(), "What is our Q3 revenue?")
	require.Equal(t, internal.OutcomeAnswered, outcome)
	cs.Sync.Wait()
	assert.Equal(t, 1, s.Saves())

	// history is fetched once per credential, so a fresh session sees the save
	next := internal.NewChatSession(client, auth)
	next.Start(context.Background())
	defer next.Close()
	require.Equal(t, 1, next.History.Len())

	require.NoError(t, next.Open(0))
	entries := next.Store.Entries()
	require.Len(t, entries, 2)

	var answer struct {
		Revenue float64 `json:"revenue"`
		Unit    string  `json:"unit"`
	}
	require.NoError(t, entries[1].Content.Decode(&answer))
	assert.Equal(t, 4.2, answer.Revenue)
	next.Sync.Wait()
	assert.Equal(t, 1, s.Saves(), "opening history does not save again")
}

func TestStub_SaveChatValidation(t *testing.T) {
	s, client := newBackend(t)
	token, _ := s.IssueToken("alice")

	req, _ := http.NewRequest(http.MethodPost, client.BaseURL()+"/save_chat", strings.NewReader(`{"messages":"nope"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["detail"])
}
