package testutil

import (
	"fmt"

	"github.com/probelab/recallbench/core"
)

// ConversationBuilder provides a fluent helper for constructing conversations
// in tests. Example:
//
//	conv := NewConversationBuilder().User("My cat is called Miso.").Assistant("Noted!").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type ConversationBuilder struct {
	id       string
	messages []core.Message
	evidence bool
}

// NewConversationBuilder creates a builder with an auto-assigned id.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// ID overrides the auto-assigned conversation id (chainable).
func (b *ConversationBuilder) ID(id string) *ConversationBuilder { b.id = id; return b }

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.messages = append(b.messages, core.Message{Speaker: core.SpeakerUser, Text: text})
	return b
}

// Assistant appends an assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.messages = append(b.messages, core.Message{Speaker: core.SpeakerAssistant, Text: text})
	return b
}

// Speaker appends a message with an arbitrary speaker, for invalid-speaker
// test cases (chainable).
func (b *ConversationBuilder) Speaker(speaker, text string) *ConversationBuilder {
	b.messages = append(b.messages, core.Message{Speaker: core.Speaker(speaker), Text: text})
	return b
}

// WithEvidence marks the conversation as evidence-bearing (chainable).
func (b *ConversationBuilder) WithEvidence() *ConversationBuilder { b.evidence = true; return b }

// Build assembles the conversation.
func (b *ConversationBuilder) Build() core.Conversation {
	id := b.id
	if id == "" {
		id = fmt.Sprintf("conv-%d", len(b.messages))
	}
	return core.Conversation{ID: id, Messages: b.messages, ContainsEvidence: b.evidence}
}

// ItemBuilder provides a fluent helper for constructing evidence items in
// tests.
type ItemBuilder struct {
	item core.EvidenceItem
}

// NewItemBuilder creates a builder with deterministic defaults.
func NewItemBuilder() *ItemBuilder {
	return &ItemBuilder{item: core.EvidenceItem{
		ID:        "item-1",
		Category:  "single",
		PersonaID: "p1",
	}}
}

// ID sets the item id (chainable).
func (b *ItemBuilder) ID(id string) *ItemBuilder { b.item.ID = id; return b }

// Category sets the scenario category (chainable).
func (b *ItemBuilder) Category(c string) *ItemBuilder { b.item.Category = c; return b }

// Persona sets the persona id (chainable).
func (b *ItemBuilder) Persona(id string) *ItemBuilder { b.item.PersonaID = id; return b }

// QA sets the recall question and its reference answer (chainable).
func (b *ItemBuilder) QA(question, answer string) *ItemBuilder {
	b.item.Question = question
	b.item.Answer = answer
	return b
}

// Evidence appends an evidence message spoken by the user (chainable).
func (b *ItemBuilder) Evidence(text string) *ItemBuilder {
	b.item.EvidenceMessages = append(b.item.EvidenceMessages,
		core.Message{Speaker: core.SpeakerUser, Text: text})
	return b
}

// Intermediate appends a per-prefix intermediate answer (chainable).
func (b *ItemBuilder) Intermediate(answer string) *ItemBuilder {
	b.item.IntermediateAnswers = append(b.item.IntermediateAnswers, answer)
	return b
}

// Conversation appends a conversation (chainable).
func (b *ItemBuilder) Conversation(c core.Conversation) *ItemBuilder {
	b.item.Conversations = append(b.item.Conversations, c)
	return b
}

// Build assembles the evidence item.
func (b *ItemBuilder) Build() core.EvidenceItem { return b.item }
