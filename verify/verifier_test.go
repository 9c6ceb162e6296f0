package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/model"
	"github.com/probelab/recallbench/placement"
)

func TestVerifier_AllChecksPass(t *testing.T) {
	answerer, _ := answererWith("Blue", "UNKNOWN")
	stats := core.NewRunStats()

	v := NewVerifier([]Check{
		&WithEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}, RequiredPasses: 1},
		&WithoutEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}},
	}, func(o *Options) { o.Stats = stats })

	outcome, err := v.Verify(context.Background(), colorItem("My favorite color is blue."))
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
	assert.Empty(t, outcome.FailedCheck)
	assert.Len(t, outcome.Results, 2)

	assert.Equal(t, core.CheckStats{Attempts: 1, Passes: 1}, stats.Check(CheckNameWithEvidence))
	assert.Equal(t, core.CheckStats{Attempts: 1, Passes: 1}, stats.Check(CheckNameWithoutEvidence))
}

func TestVerifier_StopsAtFirstFailure(t *testing.T) {
	answerer, m := answererWith("Red")
	stats := core.NewRunStats()

	v := NewVerifier([]Check{
		&WithEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}, RequiredPasses: 1},
		&WithoutEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}},
	}, func(o *Options) { o.Stats = stats })

	outcome, err := v.Verify(context.Background(), colorItem("My favorite color is blue."))
	require.NoError(t, err)
	assert.False(t, outcome.Accepted)
	assert.Equal(t, CheckNameWithEvidence, outcome.FailedCheck)
	assert.Len(t, outcome.Results, 1)

	// The second check never ran.
	assert.Len(t, m.Calls(), 1)
	assert.Equal(t, core.CheckStats{}, stats.Check(CheckNameWithoutEvidence))
}

func TestVerifier_CheckErrorIsNotRejection(t *testing.T) {
	m := model.NewMockModel("answer-model", "mock")
	m.QueueError(errors.New("provider down"))
	answerer := NewAnswerer(m)

	v := NewVerifier([]Check{
		&WithEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}, RequiredPasses: 1},
	})

	_, err := v.Verify(context.Background(), colorItem("My favorite color is blue."))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check with_evidence")
}

// End-to-end: two planted statements validate structurally, answer correctly
// with both conversations present and are unanswerable without them.
func TestFavoriteColorScenario(t *testing.T) {
	item := core.EvidenceItem{
		ID: "e2e",
		EvidenceCore: core.EvidenceCore{
			Question: "What is your favorite color?",
			Answer:   "Blue",
			EvidenceMessages: []core.Message{
				{Speaker: core.SpeakerUser, Text: "My favorite color is blue."},
				{Speaker: core.SpeakerUser, Text: "I really love the color blue."},
			},
		},
		Conversations: []core.Conversation{
			{Messages: []core.Message{
				{Speaker: core.SpeakerUser, Text: "Long day today. My favorite color is blue."},
				{Speaker: core.SpeakerAssistant, Text: "Nice choice."},
			}},
			{Messages: []core.Message{
				{Speaker: core.SpeakerUser, Text: "I really love the color blue."},
				{Speaker: core.SpeakerAssistant, Text: "Blue suits you."},
			}},
		},
		Category:  "multi",
		PersonaID: "p1",
	}

	res := placement.Validate(item.EvidenceCore, item.Conversations)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	answerer, _ := answererWith("Blue", "UNKNOWN")
	stats := core.NewRunStats()
	v := NewVerifier([]Check{
		&WithEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}, RequiredPasses: 1},
		&WithoutEvidence{Answerer: answerer, Policy: ExactMatchPolicy{}},
	}, func(o *Options) { o.Stats = stats })

	outcome, err := v.Verify(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
}
