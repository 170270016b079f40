//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package requirement decomposes free-text business requirements into
// ordered workflow steps via a language model, with a bounded
// clarification round for under-specified input.
package requirement

// Step is one decomposed intent. Steps live for the duration of one
// decomposition turn and are discarded once consumed by the synthesizer.
type Step struct {
	// ID is stable within one conversation turn and unique in its list.
	ID string `json:"id"`
	// Description is the short step description, e.g. "Send welcome email".
	Description string `json:"description"`
	// SuggestedService is an optional service tag. It should be one of
	// the suggested-service vocabulary but unrecognized values fall
	// through gracefully at synthesis.
	SuggestedService string `json:"suggestedService,omitempty"`
	// Reason is an optional one-sentence explanation for the step.
	Reason string `json:"reason,omitempty"`
	// CatalogOperationID pre-binds the step to a catalog operation so
	// discovery can skip matching.
	CatalogOperationID string `json:"catalogOperationId,omitempty"`
}

// Clarification is one outstanding question about an ambiguous step.
type Clarification struct {
	// StepID references a step in the same response.
	StepID string `json:"stepId"`
	// Question is the question to show the user.
	Question string `json:"question"`
	// Placeholder is an example answer.
	Placeholder string `json:"placeholder"`
	// TargetField names the node field the answer fills, e.g. "subject".
	TargetField string `json:"targetField,omitempty"`
}

// Result is the outcome of one decomposition turn. Either Steps is
// non-empty (structured decomposition, possibly with clarifications) or
// the model answered with a plain clarifying message.
type Result struct {
	// Steps is the decomposed step list, nil for plain messages.
	Steps []Step
	// Clarifications are optional follow-up questions about the steps.
	Clarifications []Clarification
	// Message is the full assembled response text.
	Message string
	// Thinking is the model's reasoning, when it exposes one.
	Thinking string
}

// Callbacks receive incremental content during a streaming turn. Either
// callback may be nil. The final Result always carries the fully
// assembled text regardless of what was streamed.
type Callbacks struct {
	// OnThinking receives reasoning fragments as they arrive.
	OnThinking func(delta string)
	// OnContent receives answer fragments as they arrive.
	OnContent func(delta string)
}

func (c Callbacks) thinking(delta string) {
	if c.OnThinking != nil && delta != "" {
		c.OnThinking(delta)
	}
}

func (c Callbacks) content(delta string) {
	if c.OnContent != nil && delta != "" {
		c.OnContent(delta)
	}
}
