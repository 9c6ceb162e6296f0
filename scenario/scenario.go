// Package scenario defines the scenario categories benchmark items are
// generated under, the per-category parameters (evidence count, verification
// strictness, storage location) and the factory composing each category's
// verification check list.
package scenario

import (
	"fmt"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/verify"
)

// Category tags one scenario variant. Each category carries its own
// parameters via Spec; adding a category means adding a Spec, not a subtype.
type Category string

const (
	// CategorySingle plants one evidence message in one conversation.
	CategorySingle Category = "single"
	// CategoryMulti plants several independent evidence messages, one per
	// conversation, all needed to answer.
	CategoryMulti Category = "multi"
	// CategoryChained plants evidence whose meaning changes over time; only
	// the temporal order of conversations yields the right answer.
	CategoryChained Category = "chained"
	// CategoryAbstention has no valid answer; the model must refuse.
	CategoryAbstention Category = "abstention"
)

// Spec carries the per-category generation and verification parameters.
type Spec struct {
	Category       Category
	EvidenceCount  int
	RequiredPasses int
	Description    string
}

// Registry resolves categories to their specs.
type Registry struct {
	specs map[Category]Spec
}

// DefaultRegistry returns the built-in category set.
func DefaultRegistry() *Registry {
	r := &Registry{specs: make(map[Category]Spec)}
	for _, s := range []Spec{
		{Category: CategorySingle, EvidenceCount: 1, RequiredPasses: 2,
			Description: "a single fact stated once in one conversation"},
		{Category: CategoryMulti, EvidenceCount: 3, RequiredPasses: 2,
			Description: "a fact split across several conversations, each part necessary"},
		{Category: CategoryChained, EvidenceCount: 3, RequiredPasses: 2,
			Description: "a fact that changes over time; only the latest state is the answer"},
		{Category: CategoryAbstention, EvidenceCount: 0, RequiredPasses: 1,
			Description: "a question with no valid answer in any conversation"},
	} {
		r.specs[s.Category] = s
	}
	return r
}

// Resolve returns the spec for a category.
func (r *Registry) Resolve(c Category) (Spec, error) {
	s, ok := r.specs[c]
	if !ok {
		return Spec{}, fmt.Errorf("unknown scenario category: %q", c)
	}
	return s, nil
}

// Categories lists the registered categories in a stable order.
func (r *Registry) Categories() []Category {
	ordered := []Category{CategorySingle, CategoryMulti, CategoryChained, CategoryAbstention}
	var out []Category
	for _, c := range ordered {
		if _, ok := r.specs[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Key returns the persisted-collection key for this spec and persona.
func (s Spec) Key(personaID string) core.CollectionKey {
	return core.CollectionKey{
		Category:      string(s.Category),
		EvidenceCount: s.EvidenceCount,
		PersonaID:     personaID,
	}
}

// Checks composes the verification check list for a spec: explicit strategy
// objects rather than inherited defaults. Single-evidence items run with- and
// without-evidence; multi-evidence adds the leave-one-out sweep; chained adds
// the intermediate ordering check; abstention only needs correct refusal.
func Checks(s Spec, answerer *verify.Answerer, policy verify.AnsweringPolicy) []verify.Check {
	if s.Category == CategoryAbstention {
		return []verify.Check{&verify.Abstention{Answerer: answerer}}
	}

	checks := []verify.Check{
		&verify.WithEvidence{Answerer: answerer, Policy: policy, RequiredPasses: s.RequiredPasses},
		&verify.WithoutEvidence{Answerer: answerer, Policy: policy},
	}

	if s.EvidenceCount > 1 {
		checks = append(checks, &verify.WithPartialEvidence{Answerer: answerer, Policy: policy})
	}
	if s.Category == CategoryChained {
		checks = append(checks, &verify.IntermediateEvidence{Answerer: answerer, Policy: policy})
	}

	return checks
}

// Policy returns the answering policy for a category: exact matching for
// short single-fact answers, rubric grading where answers are free-form.
func Policy(s Spec, judge *verify.RubricPolicy) verify.AnsweringPolicy {
	if s.Category == CategorySingle {
		return verify.ExactMatchPolicy{}
	}
	return judge
}
