package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/probelab/recallbench/model"
)

// Graded is the outcome of grading one candidate answer.
type Graded struct {
	Correct bool   `json:"correct"`
	Details string `json:"details,omitempty"`
}

// AnsweringPolicy decides whether a candidate answer matches the reference.
// Policies are attached per scenario category: exact matching for short
// factual answers, rubric grading for free-form ones.
type AnsweringPolicy interface {
	Grade(ctx context.Context, question, candidate, reference string) (Graded, error)
}

// ExactMatchPolicy grades by normalized string equality: case-insensitive,
// surrounding whitespace and trailing punctuation ignored.
type ExactMatchPolicy struct{}

// Grade implements AnsweringPolicy.
func (ExactMatchPolicy) Grade(_ context.Context, _, candidate, reference string) (Graded, error) {
	got := normalizeAnswer(candidate)
	want := normalizeAnswer(reference)

	if got == want {
		return Graded{Correct: true}, nil
	}
	return Graded{
		Correct: false,
		Details: fmt.Sprintf("expected %q, got %q", reference, candidate),
	}, nil
}

func normalizeAnswer(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.TrimRight(s, ".!?")
}

const rubricPromptTemplate = `You are grading an answer to a question about a user's conversation history.

Question: {{.Question}}
Reference answer: {{.Reference}}
Candidate answer: {{.Candidate}}

Does the candidate answer convey the same fact as the reference answer?
Respond with JSON only: {"correct": true or false, "details": "<one sentence>"}`

// RubricPolicy grades answers with a judge model: the candidate is correct
// when it conveys the same fact as the reference, regardless of wording.
type RubricPolicy struct {
	judge model.Model
}

// NewRubricPolicy creates a rubric policy backed by the given judge model.
func NewRubricPolicy(judge model.Model) *RubricPolicy {
	return &RubricPolicy{judge: judge}
}

// Grade implements AnsweringPolicy.
func (p *RubricPolicy) Grade(ctx context.Context, question, candidate, reference string) (Graded, error) {
	prompt, err := renderPrompt(rubricPromptTemplate, map[string]any{
		"Question":  question,
		"Reference": reference,
		"Candidate": candidate,
	})
	if err != nil {
		return Graded{}, err
	}

	resp, err := p.judge.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		return Graded{}, fmt.Errorf("rubric grading failed: %w", err)
	}

	var verdict Graded
	if err := model.DecodeJSON(resp.Text, &verdict); err != nil {
		return Graded{}, fmt.Errorf("rubric verdict undecodable: %w", err)
	}

	return verdict, nil
}
