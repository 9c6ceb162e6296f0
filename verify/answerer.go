package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/internal/util"
	"github.com/probelab/recallbench/model"
)

// AbstainMarker is the token the answering prompt asks for when the question
// cannot be answered from the supplied conversations.
const AbstainMarker = "UNKNOWN"

const answerPromptTemplate = `You are answering a question about a user, based only on their past conversations below.

{{.Transcripts}}

Question: {{.Question}}

Answer using only facts stated in the conversations above. If the conversations
do not contain the answer, reply with exactly {{.Abstain}}.
Respond with JSON only: {"answer": "<your answer or {{.Abstain}}>"}`

// Answerer obtains candidate answers to recall questions from a model, given
// a (possibly empty) set of context conversations.
type Answerer struct {
	model model.Model
}

// NewAnswerer creates an Answerer over the given model.
func NewAnswerer(m model.Model) *Answerer {
	return &Answerer{model: m}
}

// Answer asks the question given the conversations as context and returns the
// candidate answer text. An abstention comes back as AbstainMarker.
func (a *Answerer) Answer(ctx context.Context, question string, convs []core.Conversation) (string, error) {
	prompt, err := renderPrompt(answerPromptTemplate, map[string]any{
		"Transcripts": renderTranscripts(convs),
		"Question":    question,
		"Abstain":     AbstainMarker,
	})
	if err != nil {
		return "", err
	}

	resp, err := a.model.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("answering failed: %w", err)
	}

	if answer := model.ExtractField(resp.Text, "answer"); answer != "" {
		return answer, nil
	}
	// Plain-text fallback for models that ignore the JSON instruction.
	return strings.TrimSpace(resp.Text), nil
}

// IsAbstention reports whether a candidate answer declines to answer.
func IsAbstention(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	return trimmed == "" || strings.EqualFold(trimmed, AbstainMarker)
}

// renderTranscripts flattens conversations into a numbered plain-text block.
func renderTranscripts(convs []core.Conversation) string {
	if len(convs) == 0 {
		return "(no conversations available)"
	}

	var b strings.Builder
	for i, conv := range convs {
		fmt.Fprintf(&b, "--- Conversation %d ---\n", i+1)
		for _, m := range conv.Messages {
			fmt.Fprintf(&b, "%s: %s\n", m.Speaker, m.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPrompt(tmpl string, data map[string]any) (string, error) {
	out, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}
