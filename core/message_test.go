package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeaker_Valid(t *testing.T) {
	assert.True(t, SpeakerUser.Valid())
	assert.True(t, SpeakerAssistant.Valid())
	assert.False(t, Speaker("narrator").Valid())
	assert.False(t, Speaker("").Valid())
}

func TestConversation_Speakers(t *testing.T) {
	conv := Conversation{Messages: []Message{
		{Speaker: SpeakerUser, Text: "hi"},
		{Speaker: SpeakerAssistant, Text: "hello"},
		{Speaker: SpeakerUser, Text: "how are you"},
		{Speaker: Speaker("system"), Text: "note"},
	}}

	assert.Equal(t, []Speaker{SpeakerUser, SpeakerAssistant, Speaker("system")}, conv.Speakers())
}
