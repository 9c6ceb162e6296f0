package verify

import (
	"context"
	"fmt"

	"github.com/probelab/recallbench/core"
)

// Check names, also used as statistics keys.
const (
	CheckNameWithEvidence    = "with_evidence"
	CheckNameWithoutEvidence = "without_evidence"
	CheckNamePartialEvidence = "with_partial_evidence"
	CheckNameIntermediate    = "intermediate_evidence"
	CheckNameAbstention      = "abstention"
)

// CheckResult is the outcome of one verification check.
type CheckResult struct {
	CheckName string `json:"check_name"`
	Passed    bool   `json:"passed"`
	Details   string `json:"details,omitempty"`
}

// Check is one recall verification strategy. Implementations are stateless;
// a returned error means the check could not be run (provider failure), not
// that it failed.
type Check interface {
	Name() string
	Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error)
}

// WithEvidence presents the question together with the item's own
// conversations and demands RequiredPasses independently correct answers.
// Requiring every attempt to pass guards against lucky guesses.
type WithEvidence struct {
	Answerer       *Answerer
	Policy         AnsweringPolicy
	RequiredPasses int
}

// Name implements Check.
func (c *WithEvidence) Name() string { return CheckNameWithEvidence }

// Verify implements Check.
func (c *WithEvidence) Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error) {
	passes := c.RequiredPasses
	if passes < 1 {
		passes = 1
	}

	for attempt := 1; attempt <= passes; attempt++ {
		graded, err := c.gradeOnce(ctx, item, item.Conversations)
		if err != nil {
			return CheckResult{}, err
		}
		if !graded.Correct {
			return CheckResult{
				CheckName: c.Name(),
				Passed:    false,
				Details:   fmt.Sprintf("attempt %d/%d incorrect: %s", attempt, passes, graded.Details),
			}, nil
		}
	}

	return CheckResult{
		CheckName: c.Name(),
		Passed:    true,
		Details:   fmt.Sprintf("%d/%d attempts correct", passes, passes),
	}, nil
}

func (c *WithEvidence) gradeOnce(ctx context.Context, item core.EvidenceItem, convs []core.Conversation) (Graded, error) {
	answer, err := c.Answerer.Answer(ctx, item.Question, convs)
	if err != nil {
		return Graded{}, err
	}
	if IsAbstention(answer) {
		return Graded{Correct: false, Details: "model abstained"}, nil
	}
	return c.Policy.Grade(ctx, item.Question, answer, item.Answer)
}

// WithoutEvidence presents the question with none of the item's conversations
// as context. It passes only if the model fails to answer or answers
// incorrectly: the fact must not be recoverable from background knowledge.
type WithoutEvidence struct {
	Answerer *Answerer
	Policy   AnsweringPolicy
}

// Name implements Check.
func (c *WithoutEvidence) Name() string { return CheckNameWithoutEvidence }

// Verify implements Check.
func (c *WithoutEvidence) Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error) {
	answer, err := c.Answerer.Answer(ctx, item.Question, nil)
	if err != nil {
		return CheckResult{}, err
	}

	if IsAbstention(answer) {
		return CheckResult{CheckName: c.Name(), Passed: true, Details: "model abstained without context"}, nil
	}

	graded, err := c.Policy.Grade(ctx, item.Question, answer, item.Answer)
	if err != nil {
		return CheckResult{}, err
	}
	if graded.Correct {
		return CheckResult{
			CheckName: c.Name(),
			Passed:    false,
			Details:   fmt.Sprintf("answer recoverable without evidence: %q", answer),
		}, nil
	}

	return CheckResult{CheckName: c.Name(), Passed: true, Details: "answer not recoverable without evidence"}, nil
}

// WithPartialEvidence runs a leave-one-out sweep: for every conversation j it
// removes j and re-asks the question on the remainder. It passes only if every
// single removal causes failure, proving each piece of evidence is
// individually necessary rather than redundant. Only meaningful for items
// with more than one evidence message.
type WithPartialEvidence struct {
	Answerer *Answerer
	Policy   AnsweringPolicy
}

// Name implements Check.
func (c *WithPartialEvidence) Name() string { return CheckNamePartialEvidence }

// Verify implements Check.
func (c *WithPartialEvidence) Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error) {
	if len(item.Conversations) < 2 {
		return CheckResult{CheckName: c.Name(), Passed: true, Details: "single conversation, nothing to remove"}, nil
	}

	for j := range item.Conversations {
		remainder := make([]core.Conversation, 0, len(item.Conversations)-1)
		remainder = append(remainder, item.Conversations[:j]...)
		remainder = append(remainder, item.Conversations[j+1:]...)

		answer, err := c.Answerer.Answer(ctx, item.Question, remainder)
		if err != nil {
			return CheckResult{}, err
		}
		if IsAbstention(answer) {
			continue
		}

		graded, err := c.Policy.Grade(ctx, item.Question, answer, item.Answer)
		if err != nil {
			return CheckResult{}, err
		}
		if graded.Correct {
			return CheckResult{
				CheckName: c.Name(),
				Passed:    false,
				Details:   fmt.Sprintf("answer still correct with conversation %d removed: evidence is redundant", j),
			}, nil
		}
	}

	return CheckResult{CheckName: c.Name(), Passed: true, Details: "every conversation is individually necessary"}, nil
}

// IntermediateEvidence verifies chained scenarios: each intermediate
// sub-answer must be derivable from the conversation prefix that precedes the
// next piece of evidence, confirming the facts are embedded in the intended
// temporal order.
type IntermediateEvidence struct {
	Answerer *Answerer
	Policy   AnsweringPolicy
}

// Name implements Check.
func (c *IntermediateEvidence) Name() string { return CheckNameIntermediate }

// Verify implements Check.
func (c *IntermediateEvidence) Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error) {
	if len(item.IntermediateAnswers) == 0 {
		return CheckResult{CheckName: c.Name(), Passed: true, Details: "no intermediate answers declared"}, nil
	}

	for j, want := range item.IntermediateAnswers {
		if j+1 > len(item.Conversations) {
			return CheckResult{
				CheckName: c.Name(),
				Passed:    false,
				Details:   fmt.Sprintf("intermediate answer %d has no conversation prefix", j),
			}, nil
		}

		prefix := item.Conversations[:j+1]
		answer, err := c.Answerer.Answer(ctx, item.Question, prefix)
		if err != nil {
			return CheckResult{}, err
		}
		if IsAbstention(answer) {
			return CheckResult{
				CheckName: c.Name(),
				Passed:    false,
				Details:   fmt.Sprintf("intermediate answer %d not derivable from prefix", j),
			}, nil
		}

		graded, err := c.Policy.Grade(ctx, item.Question, answer, want)
		if err != nil {
			return CheckResult{}, err
		}
		if !graded.Correct {
			return CheckResult{
				CheckName: c.Name(),
				Passed:    false,
				Details:   fmt.Sprintf("intermediate answer %d mismatch: %s", j, graded.Details),
			}, nil
		}
	}

	return CheckResult{CheckName: c.Name(), Passed: true, Details: "all intermediate answers derivable in order"}, nil
}

// Abstention presents the item's distractor conversations and passes only if
// the model declines to answer: abstention scenarios have no valid answer.
type Abstention struct {
	Answerer *Answerer
}

// Name implements Check.
func (c *Abstention) Name() string { return CheckNameAbstention }

// Verify implements Check.
func (c *Abstention) Verify(ctx context.Context, item core.EvidenceItem) (CheckResult, error) {
	answer, err := c.Answerer.Answer(ctx, item.Question, item.Conversations)
	if err != nil {
		return CheckResult{}, err
	}

	if IsAbstention(answer) {
		return CheckResult{CheckName: c.Name(), Passed: true, Details: "model correctly abstained"}, nil
	}

	return CheckResult{
		CheckName: c.Name(),
		Passed:    false,
		Details:   fmt.Sprintf("model fabricated an answer: %q", answer),
	}, nil
}
