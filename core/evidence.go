package core

import "context"

// EvidenceCore is the atomic unit of "what must be remembered": a question,
// its reference answer and the ordered evidence messages that must be planted
// into conversations before the item can be certified. The number of evidence
// messages equals the configured evidence count for the scenario category
// (zero for abstention scenarios).
type EvidenceCore struct {
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	EvidenceMessages []Message `json:"message_evidences"`

	// IntermediateAnswers holds per-prefix sub-answers for chained scenarios:
	// IntermediateAnswers[j] must be derivable from conversations [0..j].
	IntermediateAnswers []string `json:"intermediate_answers,omitempty"`
}

// EvidenceItem is a validated and verified evidence core together with the
// conversations its evidence messages were embedded into. Invariant:
// len(Conversations) == len(EvidenceMessages), evidence message i embedded in
// conversation i. Abstention items carry zero evidence messages and may carry
// distractor-only conversations instead.
type EvidenceItem struct {
	ID string `json:"id"`
	EvidenceCore
	Conversations       []Conversation `json:"conversations"`
	Category            string         `json:"category"`
	ScenarioDescription string         `json:"scenario_description"`
	PersonaID           string         `json:"person_id"`
}

// UseCase is a proposed scenario: the precursor to an evidence core. A use
// case is consumed once a core has been derived from it.
type UseCase struct {
	ID                  string `json:"id"`
	Category            string `json:"category"`
	ScenarioDescription string `json:"scenario_description"`
}

// Persona describes the simulated user a scenario belongs to.
type Persona struct {
	ID          string `json:"id" yaml:"id"`
	RoleName    string `json:"role_name" yaml:"role_name"`
	Description string `json:"description" yaml:"description"`
	Background  string `json:"background" yaml:"background"`
}

// CollectionKey identifies one persisted evidence collection: items are
// grouped per (scenario category, evidence count, persona).
type CollectionKey struct {
	Category      string
	EvidenceCount int
	PersonaID     string
}

// ItemStore persists accepted evidence items. Append semantics: re-running
// generation for an already populated key adds items rather than replacing
// them. Implementations must serialize concurrent appends so partial records
// never interleave.
type ItemStore interface {
	// Append persists one accepted item under its collection key.
	Append(ctx context.Context, key CollectionKey, item EvidenceItem) error

	// Count returns the number of items already persisted under key.
	Count(ctx context.Context, key CollectionKey) (int, error)

	// Load returns all items persisted under key, in append order.
	Load(ctx context.Context, key CollectionKey) ([]EvidenceItem, error)
}
