package core

// Speaker identifies the party that produced a message. Only user and
// assistant are valid; any other label in generated output is a structural
// defect, not a warning.
type Speaker string

const (
	// SpeakerUser marks a message authored by the simulated user.
	SpeakerUser Speaker = "user"
	// SpeakerAssistant marks a message authored by the assistant.
	SpeakerAssistant Speaker = "assistant"
)

// Valid reports whether the speaker is one of the two allowed values.
func (s Speaker) Valid() bool {
	return s == SpeakerUser || s == SpeakerAssistant
}

// Message is a single utterance inside a conversation.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Conversation is an ordered sequence of messages. Conversations are
// immutable once produced; downstream consumers must copy before mutating.
type Conversation struct {
	ID               string    `json:"id,omitempty"`
	Messages         []Message `json:"messages"`
	ContainsEvidence bool      `json:"contains_evidence,omitempty"`
}

// Speakers returns the distinct speaker labels used in the conversation,
// in first-seen order.
func (c Conversation) Speakers() []Speaker {
	seen := make(map[Speaker]struct{}, 2)
	var out []Speaker
	for _, m := range c.Messages {
		if _, ok := seen[m.Speaker]; ok {
			continue
		}
		seen[m.Speaker] = struct{}{}
		out = append(out, m.Speaker)
	}
	return out
}
