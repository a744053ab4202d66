package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_UnmarshalJSON(t *testing.T) {
	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"assistant"`), &r))
	assert.Equal(t, RoleAssistant, r)

	assert.Error(t, json.Unmarshal([]byte(`"system"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`1`), &r))
}

func TestMessageEntry_JSONShape(t *testing.T) {
	data, err := json.Marshal(CreateTestConversation())
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"role":"user","content":"What is our Q3 revenue?"},{"role":"assistant","content":"4.2M"}]`,
		string(data))

	var back Conversation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(CreateTestConversation()))
}

func TestConversation_Settled(t *testing.T) {
	tests := []struct {
		name string
		conv Conversation
		want bool
	}{
		{"empty", nil, false},
		{"user last", Conversation{UserEntry("q")}, false},
		{"assistant last", CreateTestConversation(), true},
		{"lone assistant", Conversation{AssistantEntry(TextContent("hi"))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conv.Settled())
		})
	}
}

func TestConversation_Clone(t *testing.T) {
	assert.Nil(t, Conversation(nil).Clone())

	orig := CreateTestConversation()
	clone := orig.Clone()
	clone[0] = UserEntry("changed")
	assert.Equal(t, "What is our Q3 revenue?", orig[0].Content.Render())
}

func TestHistoryResponse_Decode(t *testing.T) {
	payload := `{"chats":[{"username":"alice","messages":[{"role":"user","content":"q"},{"role":"assistant","content":[1,2]}]}]}`
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Chats, 1)
	assert.Equal(t, "alice", resp.Chats[0].Username)
	require.Len(t, resp.Chats[0].Messages, 2)
	assert.Equal(t, ContentStructured, resp.Chats[0].Messages[1].Content.Kind())
}

func TestQueryResponse_AbsentAndNullResult(t *testing.T) {
	for _, payload := range []string{`{}`, `{"result":null}`} {
		var resp QueryResponse
		require.NoError(t, json.Unmarshal([]byte(payload), &resp))
		assert.Nil(t, resp.Result, payload)
	}

	var resp QueryResponse
	require.NoError(t, json.Unmarshal([]byte(`{"result":{"rows":[]}}`), &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, ContentStructured, resp.Result.Kind())
}

func TestTranscriptFromSummary(t *testing.T) {
	h := HistorySummary{Ordinal: 3, Count: 2, Entries: CreateTestConversation()}
	assert.Equal(t, "Chat #3", h.Title())

	tr := TranscriptFromSummary(h)
	assert.Equal(t, "Chat #3", tr.Name)
	assert.Equal(t, SourceHistory, tr.Source)
	assert.True(t, tr.Entries.Equal(h.Entries))
}
