package placement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/probelab/recallbench/core"
)

// FailureCategory classifies a structural validation failure.
type FailureCategory string

const (
	// CategoryConversationCountMismatch is recorded when the number of
	// conversations differs from the number of evidence messages.
	CategoryConversationCountMismatch FailureCategory = "CONVERSATION_COUNT_MISMATCH"
	// CategoryEvidenceNotFound is recorded when an evidence message matched
	// no conversation message.
	CategoryEvidenceNotFound FailureCategory = "EVIDENCE_NOT_FOUND"
	// CategoryEvidenceInMultipleConversations is recorded when an evidence
	// message matched more than once, within or across conversations.
	CategoryEvidenceInMultipleConversations FailureCategory = "EVIDENCE_IN_MULTIPLE_CONVERSATIONS"
	// CategoryInvalidSpeakers is recorded when a conversation uses a speaker
	// label outside the allowed set.
	CategoryInvalidSpeakers FailureCategory = "INVALID_SPEAKERS"
)

// Matching thresholds. These are fixed constants: validation must stay
// deterministic given its inputs.
const (
	// reversePartialRatio is the minimum share of the evidence text a
	// message prefix must cover to count as a truncated embedding.
	reversePartialRatio = 0.8
	// editDistanceRatio bounds the normalized Levenshtein distance relative
	// to the evidence text length.
	editDistanceRatio = 0.15
)

// Result reports the outcome of a placement validation.
type Result struct {
	Valid      bool              `json:"is_valid"`
	Errors     []string          `json:"errors,omitempty"`
	Categories []FailureCategory `json:"failure_categories,omitempty"`
}

// HasCategory reports whether the result contains the given failure category.
func (r Result) HasCategory(c FailureCategory) bool {
	for _, got := range r.Categories {
		if got == c {
			return true
		}
	}
	return false
}

func (r *Result) record(c FailureCategory, msg string) {
	r.Errors = append(r.Errors, msg)
	if !r.HasCategory(c) {
		r.Categories = append(r.Categories, c)
	}
}

// Validate checks that every evidence message of the core is embedded exactly
// once in the conversation set, attributed to the right speaker. Pure and
// deterministic; safe for concurrent use.
//
// A zero-evidence core (abstention) skips count and location checks entirely:
// its conversations, if any, are distractors and only need valid speakers.
func Validate(ec core.EvidenceCore, conversations []core.Conversation) Result {
	var res Result

	for ci, conv := range conversations {
		if invalid := invalidSpeakers(conv); len(invalid) > 0 {
			res.record(CategoryInvalidSpeakers,
				fmt.Sprintf("Conversation %d contains invalid speakers: %s", ci, strings.Join(invalid, ", ")))
		}
	}

	k := len(ec.EvidenceMessages)
	if k == 0 {
		res.Valid = len(res.Errors) == 0
		return res
	}

	if len(conversations) != k {
		res.record(CategoryConversationCountMismatch,
			fmt.Sprintf("Number of conversations (%d) doesn't match number of evidence messages (%d)",
				len(conversations), k))
		res.Valid = false
		return res
	}

	for i, ev := range ec.EvidenceMessages {
		matches := locateEvidence(ev, conversations)
		switch {
		case len(matches) == 0:
			res.record(CategoryEvidenceNotFound,
				fmt.Sprintf("Evidence message %d not found in any conversation: %s", i, ev.Text))
		case len(matches) > 1:
			indices := dedupeSorted(matches)
			res.record(CategoryEvidenceInMultipleConversations,
				fmt.Sprintf("Evidence message %d found in multiple conversations: %v", i, indices))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// invalidSpeakers returns the sorted distinct speaker labels of the
// conversation that fall outside the allowed set.
func invalidSpeakers(conv core.Conversation) []string {
	var out []string
	for _, s := range conv.Speakers() {
		if !s.Valid() {
			out = append(out, string(s))
		}
	}
	sort.Strings(out)
	return out
}

// locateEvidence returns one entry per matching conversation message, each
// holding the conversation index. Occurrences within the same conversation
// count separately so duplicated embeddings are caught.
func locateEvidence(ev core.Message, conversations []core.Conversation) []int {
	var matches []int
	for ci, conv := range conversations {
		for _, m := range conv.Messages {
			if m.Speaker != ev.Speaker {
				continue
			}
			if messageMatches(ev.Text, m.Text) {
				matches = append(matches, ci)
			}
		}
	}
	return matches
}

// messageMatches applies the match rules in fixed priority order: substring
// containment, reverse partial prefix, bounded edit distance. The priority
// order is load-bearing near the thresholds and must not be reordered.
func messageMatches(evidence, text string) bool {
	if text == "" || evidence == "" {
		return false
	}

	// Substring containment, either direction, case-sensitive.
	if strings.Contains(text, evidence) || strings.Contains(evidence, text) {
		return true
	}

	evLen := len([]rune(evidence))
	if evLen == 0 {
		return false
	}

	// Reverse partial match: the message is a truncated prefix of the
	// evidence covering at least reversePartialRatio of its length.
	if strings.HasPrefix(evidence, text) {
		if float64(len([]rune(text))) >= reversePartialRatio*float64(evLen) {
			return true
		}
	}

	// Bounded edit distance, normalized by the evidence length.
	dist := Levenshtein(evidence, text)
	return float64(dist) <= editDistanceRatio*float64(evLen)
}

func dedupeSorted(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	var out []int
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
