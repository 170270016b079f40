//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces and types for working with LLMs.
package model

import "context"

// Model is the interface for all language models.
//
// GenerateContent returns a channel of responses. For non-streaming
// requests the channel yields exactly one response and is closed. For
// streaming requests it yields partial responses followed by one final
// aggregated response. Provider-level failures after the call was issued
// are reported through Response.Error, not through the returned error.
type Model interface {
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
}

// Info describes a model instance.
type Info struct {
	// Name is the model name, e.g. "gpt-4o-mini".
	Name string
}
