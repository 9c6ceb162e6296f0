package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeJSON unmarshals a JSON payload embedded in generated text into v.
// Models frequently wrap JSON in markdown code fences or surround it with
// prose; the payload is located tolerantly before strict unmarshalling.
// Undecodable text returns an error for the caller's retry budget to absorb.
func DecodeJSON(text string, v any) error {
	payload := extractPayload(text)
	if payload == "" {
		return fmt.Errorf("no JSON payload found in generated text")
	}
	if !gjson.Valid(payload) {
		return fmt.Errorf("generated text is not valid JSON")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode generated JSON: %w", err)
	}
	return nil
}

// ExtractField reads a single string field from a JSON payload embedded in
// generated text, returning "" when absent.
func ExtractField(text, path string) string {
	payload := extractPayload(text)
	if payload == "" {
		return ""
	}
	return gjson.Get(payload, path).String()
}

// extractPayload strips code fences and locates the outermost JSON value.
func extractPayload(text string) string {
	s := strings.TrimSpace(text)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		// Drop an optional language tag like "json"
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			first := strings.TrimSpace(s[:nl])
			if first == "json" || first == "" {
				s = s[nl+1:]
			}
		}
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
