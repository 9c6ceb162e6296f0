package scenario

import (
	"fmt"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/internal/util"
)

const proposePromptTemplate = `You are designing memory-recall scenarios for the following persona:

Role: {{.RoleName}}
Description: {{.Description}}
Background: {{.Background}}

Scenario type: {{.CategoryDescription}}

Propose {{.Count}} distinct, everyday scenarios in which this persona would
mention such a fact in conversation. Vary topics, settings and facts; avoid
repeating themes.

Respond with JSON only: [{"scenario_description": "<one sentence>"}, ...]`

const derivePromptTemplate = `Persona:
Role: {{.RoleName}}
Background: {{.Background}}

Scenario: {{.ScenarioDescription}}
Scenario type: {{.CategoryDescription}}

Derive a memory-recall test from this scenario. Produce:
- "question": a question about the persona answerable only from what they said
- "answer": the short reference answer{{if .Abstention}} (the question must have NO answer in any conversation; set "answer" to what a correct refusal looks like){{end}}
- "message_evidences": exactly {{.EvidenceCount}} utterances, each an object
  {"speaker": "user", "text": "<fact-bearing sentence>"}, that together carry the answer{{if .Chained}}
- "intermediate_answers": for each evidence prefix, the answer as of that point in time{{end}}

Respond with JSON only.`

const embedPromptTemplate = `Persona:
Role: {{.RoleName}}
Background: {{.Background}}

Write a natural, everyday conversation between this persona ("user") and an AI
assistant ("assistant"), 8 to 14 messages long, about: {{.Topic}}

The conversation must contain this exact message, spoken by the {{.Speaker}},
word for word, exactly once:
"{{.EvidenceText}}"

No other message may restate or paraphrase that fact.

Respond with JSON only: {"messages": [{"speaker": "user"|"assistant", "text": "..."}, ...]}`

const distractorPromptTemplate = `Persona:
Role: {{.RoleName}}
Background: {{.Background}}

Write a natural, everyday conversation between this persona ("user") and an AI
assistant ("assistant"), 8 to 14 messages long, about an ordinary topic of your
choice. The conversation must NOT touch on: {{.Question}}

Respond with JSON only: {"messages": [{"speaker": "user"|"assistant", "text": "..."}, ...]}`

// ProposePrompt builds the use-case proposal prompt for a persona.
func ProposePrompt(p core.Persona, s Spec, count int) (string, error) {
	return render(proposePromptTemplate, map[string]any{
		"RoleName":            p.RoleName,
		"Description":         p.Description,
		"Background":          p.Background,
		"CategoryDescription": s.Description,
		"Count":               count,
	})
}

// DerivePrompt builds the evidence-core derivation prompt for a use case.
func DerivePrompt(p core.Persona, s Spec, uc core.UseCase) (string, error) {
	return render(derivePromptTemplate, map[string]any{
		"RoleName":            p.RoleName,
		"Background":          p.Background,
		"ScenarioDescription": uc.ScenarioDescription,
		"CategoryDescription": s.Description,
		"EvidenceCount":       s.EvidenceCount,
		"Abstention":          s.Category == CategoryAbstention,
		"Chained":             s.Category == CategoryChained,
	})
}

// EmbedPrompt builds the conversation-embedding prompt for one evidence message.
func EmbedPrompt(p core.Persona, uc core.UseCase, ev core.Message) (string, error) {
	return render(embedPromptTemplate, map[string]any{
		"RoleName":     p.RoleName,
		"Background":   p.Background,
		"Topic":        uc.ScenarioDescription,
		"Speaker":      string(ev.Speaker),
		"EvidenceText": ev.Text,
	})
}

// DistractorPrompt builds the evidence-free conversation prompt used by
// abstention scenarios.
func DistractorPrompt(p core.Persona, question string) (string, error) {
	return render(distractorPromptTemplate, map[string]any{
		"RoleName":   p.RoleName,
		"Background": p.Background,
		"Question":   question,
	})
}

func render(tmpl string, data map[string]any) (string, error) {
	out, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}
