package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probelab/recallbench/core"
)

func userSays(texts ...string) core.Conversation {
	var msgs []core.Message
	for _, text := range texts {
		msgs = append(msgs, core.Message{Speaker: core.SpeakerUser, Text: text})
	}
	return core.Conversation{Messages: msgs}
}

func evidenceCore(texts ...string) core.EvidenceCore {
	ec := core.EvidenceCore{Question: "q", Answer: "a"}
	for _, text := range texts {
		ec.EvidenceMessages = append(ec.EvidenceMessages, core.Message{
			Speaker: core.SpeakerUser,
			Text:    text,
		})
	}
	return ec
}

func TestValidate_VerbatimSubstring(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{
		userSays("So anyway, my day was long. My favorite color is blue. What about yours?"),
	}

	res := Validate(ec, convs)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Categories)
}

func TestValidate_CountMismatch(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.", "I really love the color blue.")
	convs := []core.Conversation{userSays("My favorite color is blue.")}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryConversationCountMismatch))
	assert.Contains(t, res.Errors,
		"Number of conversations (1) doesn't match number of evidence messages (2)")
}

func TestValidate_AbstentionTriviallyValid(t *testing.T) {
	res := Validate(core.EvidenceCore{Question: "q", Answer: "a"}, nil)
	assert.True(t, res.Valid)
}

func TestValidate_AbstentionWithDistractors(t *testing.T) {
	convs := []core.Conversation{userSays("Tell me about the weather."), userSays("I went hiking.")}
	res := Validate(core.EvidenceCore{Question: "q", Answer: "a"}, convs)
	assert.True(t, res.Valid)
}

func TestValidate_EvidenceNotFound(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{userSays("Azure is the shade I prefer over all others.")}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryEvidenceNotFound))
	assert.Contains(t, res.Errors,
		"Evidence message 0 not found in any conversation: My favorite color is blue.")
}

func TestValidate_WrongSpeakerNotFound(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{{Messages: []core.Message{
		{Speaker: core.SpeakerAssistant, Text: "My favorite color is blue."},
	}}}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryEvidenceNotFound))
}

func TestValidate_EvidenceInMultipleConversations(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.", "I really love the color blue.")
	convs := []core.Conversation{
		userSays("My favorite color is blue."),
		userSays("I really love the color blue. My favorite color is blue."),
	}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryEvidenceInMultipleConversations))
	assert.Contains(t, res.Errors, "Evidence message 0 found in multiple conversations: [0 1]")
}

func TestValidate_EvidenceDuplicatedWithinOneConversation(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{
		userSays("My favorite color is blue.", "As I said, my favorite color is blue. My favorite color is blue."),
	}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryEvidenceInMultipleConversations))
}

func TestValidate_InvalidSpeakers(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{{Messages: []core.Message{
		{Speaker: core.SpeakerUser, Text: "My favorite color is blue."},
		{Speaker: core.Speaker("narrator"), Text: "Meanwhile..."},
		{Speaker: core.Speaker("agent"), Text: "Noted."},
	}}}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryInvalidSpeakers))
	assert.Contains(t, res.Errors, "Conversation 0 contains invalid speakers: agent, narrator")
}

func TestValidate_EditDistanceWithinThreshold(t *testing.T) {
	// "my favorite color is blue" differs from the evidence by case and a
	// trailing period: distance 2 on a 26-char evidence, under the 15% bound.
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{userSays("my favorite color is blue")}

	res := Validate(ec, convs)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidate_NearTotalParaphraseRejected(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.")
	convs := []core.Conversation{userSays("Blue has always been the one hue I gravitate toward most.")}

	res := Validate(ec, convs)
	assert.False(t, res.Valid)
	assert.True(t, res.HasCategory(CategoryEvidenceNotFound))
}

func TestValidate_TruncatedPrefixMatch(t *testing.T) {
	// A truncated embedding that is a clean prefix of the evidence still matches.
	ec := evidenceCore("I adopted a golden retriever named Biscuit last spring")
	convs := []core.Conversation{userSays("I adopted a golden retriever named Biscuit")}

	res := Validate(ec, convs)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidate_MultiEvidenceHappyPath(t *testing.T) {
	ec := evidenceCore("My favorite color is blue.", "I really love the color blue.")
	convs := []core.Conversation{
		userSays("Let me tell you something. My favorite color is blue."),
		userSays("I really love the color blue. It reminds me of the sea."),
	}

	res := Validate(ec, convs)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}
