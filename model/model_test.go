package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.AddResponse("hello", "world")

	resp, err := m.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "world", resp.Text)
	assert.NotNil(t, resp.Usage)
}

func TestMockModel_Script(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.QueueError(errors.New("boom"))
	m.QueueResponse("recovered")

	_, err := m.Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)

	resp, err := m.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)

	assert.Len(t, m.Calls(), 2)
}

func TestDecodeJSON_Plain(t *testing.T) {
	var out struct {
		Question string `json:"question"`
	}
	err := DecodeJSON(`{"question": "What is your favorite color?"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "What is your favorite color?", out.Question)
}

func TestDecodeJSON_CodeFence(t *testing.T) {
	text := "Here you go:\n```json\n{\"answer\": \"Blue\"}\n```\nLet me know if you need more."
	var out struct {
		Answer string `json:"answer"`
	}
	err := DecodeJSON(text, &out)
	require.NoError(t, err)
	assert.Equal(t, "Blue", out.Answer)
}

func TestDecodeJSON_SurroundingProse(t *testing.T) {
	text := `Sure! The result is {"answer": "42"} as requested.`
	var out struct {
		Answer string `json:"answer"`
	}
	err := DecodeJSON(text, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.Answer)
}

func TestDecodeJSON_Array(t *testing.T) {
	var out []struct {
		ID string `json:"id"`
	}
	err := DecodeJSON("```\n[{\"id\": \"a\"}, {\"id\": \"b\"}]\n```", &out)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var out map[string]any
	assert.Error(t, DecodeJSON("no json here", &out))
	assert.Error(t, DecodeJSON(`{"broken": `, &out))
}

func TestExtractField(t *testing.T) {
	assert.Equal(t, "Blue", ExtractField(`{"answer": "Blue"}`, "answer"))
	assert.Equal(t, "", ExtractField("not json", "answer"))
}
