package internal

// CreateTestConversation creates a settled two-turn conversation
func CreateTestConversation() Conversation {
	return Conversation{
		UserEntry("What is our Q3 revenue?"),
		AssistantEntry(TextContent("4.2M")),
	}
}

// CreateTestStructuredConversation creates a conversation whose answer is a
// structured value
func CreateTestStructuredConversation() Conversation {
	answer, _ := RawContent([]byte(`{"region":"EMEA","revenue":[1.1,2.3]}`))
	return Conversation{
		UserEntry("Revenue by region"),
		AssistantEntry(answer),
	}
}

// CreateTestTranscript wraps a conversation in an exportable transcript
func CreateTestTranscript(name string, entries Conversation) *Transcript {
	return &Transcript{
		Name:    name,
		Source:  SourceHistory,
		Entries: entries,
	}
}
