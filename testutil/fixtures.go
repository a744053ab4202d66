package testutil

import "fmt"

// HistoryFixture is a get_chats payload with two stored conversations, the
// second carrying a structured answer
const HistoryFixture = `{
  "chats": [
    {
      "username": "alice",
      "messages": [
        {"role": "user", "content": "What is our Q3 revenue?"},
        {"role": "assistant", "content": "4.2M"}
      ]
    },
    {
      "username": "alice",
      "messages": [
        {"role": "user", "content": "Revenue by region"},
        {"role": "assistant", "content": {"region": "EMEA", "revenue": [1.1, 2.3]}},
        {"role": "user", "content": "Thanks"},
        {"role": "assistant", "content": "You're welcome."}
      ]
    }
  ]
}`

// EmptyHistoryFixture is a get_chats payload with no conversations
const EmptyHistoryFixture = `{"chats": []}`

// QueryFixture is a query payload answering with text
func QueryFixture(answer string) string {
	return fmt.Sprintf(`{"result": %q}`, answer)
}

// NL2SQLFixture is an nl2sql payload with the mocked result line
func NL2SQLFixture(sql string) string {
	return fmt.Sprintf(`{"sql": %q, "result": "[MOCKED] DB results would appear here."}`, sql)
}
