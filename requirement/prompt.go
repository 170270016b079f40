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
	"encoding/json"
	"fmt"
	"strings"
)

const basePrompt = `You are a workflow assistant. The user describes a business process they want to automate.

Rules:
1. If the requirement is clear enough to break into steps, reply with ONLY a valid JSON object (no markdown, no extra text): {"steps":[{"id":"1","description":"...","suggestedService":"...","reason":"..."}],"clarifications":[{"stepId":"1","question":"...","placeholder":"...","targetField":"..."}]}.
2. Use short step descriptions (e.g. "Send welcome email", "Add user to Slack").
3. suggestedService is optional: use one of %s when obvious.
4. reason is optional: one sentence explaining why the step is in the workflow.
5. Cover the scenarios the requirement implies: the happy path, rejection or failure branches, empty-data handling, and retries where they matter.
6. clarifications is optional: ask at most a few targeted questions about under-specified steps. targetField names the field the answer fills (e.g. "subject", "body", "to", "delayHours", "channel").
7. If the requirement itself is unclear (e.g. which systems are involved), ask 1-2 brief questions in plain text. Do not output JSON in that case.
8. Keep all responses concise.`

// maxChannelListing caps the chat-channel snippet to bound prompt size.
const maxChannelListing = 400

// maxIngestedOperations caps the custom-operation listing.
const maxIngestedOperations = 40

// buildSystemPrompt assembles the decomposer system prompt from the
// base instructions and the live contextual state.
func buildSystemPrompt(pctx Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, basePrompt, strings.Join(pctx.allowedTags(), ", "))

	if len(pctx.ConnectedServices) > 0 {
		b.WriteString("\n\nConnected services: ")
		b.WriteString(strings.Join(pctx.ConnectedServices, ", "))
		b.WriteString(". Only suggest a service tag when its service is connected or needs no connection.")
	}

	if len(pctx.Datasets) > 0 {
		b.WriteString("\n\nAvailable datasets the workflow can read: ")
		b.WriteString(strings.Join(pctx.Datasets, ", "))
	}

	if listing := ingestedOperationListing(pctx); listing != "" {
		b.WriteString("\n\nCustom API operations. When a step should call one directly, set its catalogOperationId to the operation id:\n")
		b.WriteString(listing)
	}

	if pctx.Example != nil && len(pctx.Example.Steps) > 0 {
		if stepsJSON, err := json.Marshal(map[string]any{"steps": pctx.Example.Steps}); err == nil {
			b.WriteString("\n\nExample decomposition:\nRequirement: ")
			b.WriteString(pctx.Example.Requirement)
			b.WriteString("\nResponse: ")
			b.Write(stepsJSON)
		}
	}

	if pctx.connected(TagSlack) && len(pctx.ChatChannels) > 0 {
		snippet := strings.Join(pctx.ChatChannels, ", ")
		if len(snippet) > maxChannelListing {
			snippet = snippet[:maxChannelListing]
		}
		b.WriteString("\n\nSlack channels available: ")
		b.WriteString(snippet)
	}

	return b.String()
}

// ingestedOperationListing renders a compact one-line-per-operation
// listing of ingested services.
func ingestedOperationListing(pctx Context) string {
	var lines []string
	for _, svc := range pctx.IngestedServices {
		for _, op := range svc.Operations {
			lines = append(lines, fmt.Sprintf("- %s: %s (%s %s)", op.ID, op.Name, op.Method, op.URLTemplate))
			if len(lines) == maxIngestedOperations {
				return strings.Join(lines, "\n")
			}
		}
	}
	return strings.Join(lines, "\n")
}
