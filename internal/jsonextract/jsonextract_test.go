//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package jsonextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fences", in: `{"a":1}`, want: `{"a":1}`},
		{name: "plain fences", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "json fences", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
		{name: "plain text untouched", in: "which provider?", want: "which provider?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestFirstObject(t *testing.T) {
	obj, ok := FirstObject(`Here you go: {"steps":[{"id":"1"}]} done`)
	require.True(t, ok)
	assert.Equal(t, `{"steps":[{"id":"1"}]}`, obj)

	_, ok = FirstObject("no json here")
	assert.False(t, ok)

	_, ok = FirstObject("} {")
	assert.False(t, ok)
}

func TestUnmarshalFirstObject(t *testing.T) {
	var parsed struct {
		OperationID string `json:"operationId"`
	}
	require.True(t, UnmarshalFirstObject("```json\n{\"operationId\":\"x\"}\n```", &parsed))
	assert.Equal(t, "x", parsed.OperationID)

	assert.False(t, UnmarshalFirstObject("not json", &parsed))
	assert.False(t, UnmarshalFirstObject("{invalid}", &parsed))
}
