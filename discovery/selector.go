//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package discovery maps decomposed workflow steps to catalog
// operations, using a language model to pick ingested API endpoints and
// keyword matching for everything else.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/internal/jsonextract"
	"trpc.group/trpc-go/trpc-flowgen-go/log"
	"trpc.group/trpc-go/trpc-flowgen-go/model"
)

const selectorPrompt = `You are picking the best API operation for a workflow step and filling its parameters. You will be given:
1. A step description (what the user wants to do).
2. A list of available operations (id, name, description, method, path, params with keys).
3. Optionally: a short summary of user-provided inputs (e.g. "segment: all customers, delay: 3 days") and previous steps in the workflow (so you can suggest values from earlier steps).

Respond with ONLY a valid JSON object, no markdown or extra text. Use exactly one of these shapes:
- If one operation clearly fits the step: {"operationId": "<id from the list>", "paramMapping": {"paramKey": "literal value or {{placeholder}}"}}
- If no good match: {"operationId": null}

Rules:
- operationId MUST be exactly one of the ids from the list, or null.
- paramMapping: for each parameter of the chosen operation, suggest a value. Use literal values from the user summary when they fit. When the value should come from a previous step's output, use a placeholder like {{trigger.rows}} or {{stepId.key}}. When unknown, use {{paramKey}}.
- Pick the single best matching operation by semantic fit. Prefer operations whose params you can fill from user context or previous steps.`

// maxDescriptionChars bounds per-operation description length in the
// candidate listing.
const maxDescriptionChars = 80

// StepRef is a compact reference to an earlier step, offered to the
// model so parameter values can reference prior outputs.
type StepRef struct {
	StepID      string
	Description string
}

// SelectContext is optional context for one selection call.
type SelectContext struct {
	// UserSummary is a concise summary of user-provided inputs, e.g.
	// "segment: all customers; delay: 3 days".
	UserSummary string
	// PreviousSteps are the steps resolved before this one.
	PreviousSteps []StepRef
}

// Selection is the model's pick for one step.
type Selection struct {
	OperationID  string
	ParamMapping map[string]string
}

// Selector picks operations from a candidate set via one non-streaming
// model call per step. Every failure path returns nil so resolution can
// fall back to keyword matching.
type Selector struct {
	model model.Model
}

// NewSelector creates a Selector backed by m. A nil or unconfigured m is
// allowed and makes Select always return nil.
func NewSelector(m model.Model) *Selector {
	return &Selector{model: m}
}

// configured is implemented by models that can report whether they hold
// usable credentials.
type configured interface {
	Configured() bool
}

func (s *Selector) usable() bool {
	if s == nil || s.model == nil {
		return false
	}
	if c, ok := s.model.(configured); ok {
		return c.Configured()
	}
	return true
}

// formatOperation renders one candidate as a single compact line.
func formatOperation(op catalog.Operation) string {
	desc := truncateRunes(op.Description, maxDescriptionChars)
	params := ""
	if len(op.Params) > 0 {
		keys := make([]string, 0, len(op.Params))
		for _, p := range op.Params {
			keys = append(keys, p.Key)
		}
		params = fmt.Sprintf(" params=[%s]", strings.Join(keys, ", "))
	}
	return fmt.Sprintf("id=%s name=%q method=%s path=%s description=%s%s",
		op.ID, op.Name, op.Method, op.URLTemplate, desc, params)
}

func buildSelectorUserPrompt(stepDescription string, candidates []catalog.Operation,
	sctx SelectContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step: %q\n\nAvailable operations:\n", stepDescription)
	for i, op := range candidates {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatOperation(op))
	}
	if sctx.UserSummary != "" {
		b.WriteString("\n\nUser-provided inputs: ")
		b.WriteString(sctx.UserSummary)
	}
	if len(sctx.PreviousSteps) > 0 {
		b.WriteString("\n\nPrevious steps in this workflow (you may reference their output in paramMapping, e.g. {{stepId.key}} or {{trigger.rows}}):")
		for _, s := range sctx.PreviousSteps {
			fmt.Fprintf(&b, "\n- %s: %s", s.StepID, s.Description)
		}
	}
	return b.String()
}

// Select asks the model to pick the best candidate for stepDescription.
// It returns nil when no usable model is available, the candidate set is
// empty, the call fails, or the answer does not name a candidate id. An
// unconfigured model is rejected up front so no provider call is issued.
func (s *Selector) Select(ctx context.Context, stepDescription string,
	candidates []catalog.Operation, sctx SelectContext) *Selection {
	if !s.usable() || len(candidates) == 0 {
		return nil
	}

	req := &model.Request{Messages: []model.Message{
		model.NewSystemMessage(selectorPrompt),
		model.NewUserMessage(buildSelectorUserPrompt(stepDescription, candidates, sctx)),
	}}

	ch, err := s.model.GenerateContent(ctx, req)
	if err != nil {
		log.Debugf("discovery: select call failed: %v", err)
		return nil
	}
	text, ok := collectText(ctx, ch)
	if !ok {
		return nil
	}
	return parseSelection(text, candidates)
}

// collectText drains a non-streaming response channel and returns the
// final message content.
func collectText(ctx context.Context, ch <-chan *model.Response) (string, bool) {
	var text string
	for {
		select {
		case <-ctx.Done():
			return "", false
		case rsp, ok := <-ch:
			if !ok {
				return text, text != ""
			}
			if rsp.Error != nil {
				log.Debugf("discovery: provider error: %s", rsp.Error.Message)
				return "", false
			}
			for _, choice := range rsp.Choices {
				if choice.Message.Content != "" {
					text = choice.Message.Content
				}
			}
		}
	}
}

type selectionPayload struct {
	OperationID  *string           `json:"operationId"`
	ParamMapping map[string]string `json:"paramMapping"`
}

func parseSelection(text string, candidates []catalog.Operation) *Selection {
	var parsed selectionPayload
	if !jsonextract.UnmarshalFirstObject(text, &parsed) {
		return nil
	}
	if parsed.OperationID == nil || *parsed.OperationID == "" || *parsed.OperationID == "null" {
		return nil
	}
	for _, op := range candidates {
		if op.ID == *parsed.OperationID {
			return &Selection{OperationID: op.ID, ParamMapping: parsed.ParamMapping}
		}
	}
	return nil
}
