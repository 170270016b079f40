//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package requirement

import (
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/internal/jsonextract"
)

// Markers of the single-stream tagged convention for models without a
// distinct reasoning channel.
const (
	thinkingMarker = "THINKING:"
	responseMarker = "RESPONSE:"
)

// splitTagged splits a single text stream following the
// "THINKING:\n...\n\nRESPONSE:\n..." convention. Text without the
// convention is returned unchanged as content.
func splitTagged(text string) (thinking, content string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, thinkingMarker) {
		return "", text
	}
	rest := trimmed[len(thinkingMarker):]
	idx := strings.Index(rest, responseMarker)
	if idx < 0 {
		// Response part has not arrived yet; everything is thinking.
		return strings.TrimSpace(rest), ""
	}
	thinking = strings.TrimSpace(rest[:idx])
	content = strings.TrimSpace(rest[idx+len(responseMarker):])
	return thinking, content
}

type parsedResponse struct {
	Steps          []Step          `json:"steps"`
	Clarifications []Clarification `json:"clarifications"`
}

// parseResult turns the assembled model output into a Result: a
// structured step list when the text contains a JSON object with a
// non-empty steps array, else a plain clarifying message. A model asking
// a question in prose is a valid, expected outcome, not an error.
func parseResult(thinking, content string) *Result {
	message := strings.TrimSpace(content)
	result := &Result{Message: message, Thinking: strings.TrimSpace(thinking)}

	var parsed parsedResponse
	if !jsonextract.UnmarshalFirstObject(message, &parsed) || len(parsed.Steps) == 0 {
		return result
	}

	steps := make([]Step, 0, len(parsed.Steps))
	seenIDs := make(map[string]bool)
	for i, s := range parsed.Steps {
		s.Description = strings.TrimSpace(s.Description)
		if s.Description == "" {
			continue
		}
		if s.ID == "" || seenIDs[s.ID] {
			s.ID = strconv.Itoa(i + 1)
		}
		seenIDs[s.ID] = true
		steps = append(steps, s)
	}
	if len(steps) == 0 {
		return result
	}
	result.Steps = steps

	for _, c := range parsed.Clarifications {
		if c.StepID == "" || strings.TrimSpace(c.Question) == "" {
			continue
		}
		// A clarification must reference a step in the same response.
		if !seenIDs[c.StepID] {
			continue
		}
		result.Clarifications = append(result.Clarifications, c)
	}
	return result
}
