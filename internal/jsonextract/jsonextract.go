//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package jsonextract extracts JSON payloads from free-form model output.
package jsonextract

import (
	"encoding/json"
	"strings"
)

// StripFences removes surrounding markdown code fence markers from s.
// A leading ```json or ``` line and a trailing ``` line are dropped;
// anything else is returned trimmed but otherwise untouched.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the optional language tag on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// FirstObject returns the first top-level JSON object embedded in s,
// spanning from the first '{' to the matching last '}'. The second return
// value reports whether an object was found.
func FirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// UnmarshalFirstObject strips code fences, locates the first top-level
// JSON object and unmarshals it into v. It returns false when no object
// is present or the object does not parse.
func UnmarshalFirstObject(s string, v any) bool {
	obj, ok := FirstObject(StripFences(s))
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(obj), v) == nil
}
