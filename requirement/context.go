//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package requirement

import "trpc.group/trpc-go/trpc-flowgen-go/catalog"

// Service tags the decomposer may suggest for a step. Tags for external
// integrations are only offered when the integration is connected.
const (
	TagEmail     = "email"
	TagSlack     = "slack"
	TagHTTP      = "http"
	TagApproval  = "approval"
	TagDelay     = "delay"
	TagDocument  = "document"
	TagWebhook   = "webhook"
	TagSchedule  = "schedule"
	TagCondition = "condition"
	TagTransform = "transform"
)

// baseTags are always available; they need no external connection.
var baseTags = []string{
	TagHTTP, TagApproval, TagDelay, TagDocument,
	TagWebhook, TagSchedule, TagCondition, TagTransform,
}

// SavedExample is one previously saved decomposition used for few-shot
// guidance. At most one example is included per prompt.
type SavedExample struct {
	// Requirement is the original user requirement text.
	Requirement string `json:"requirement"`
	// Steps is the decomposition that was saved.
	Steps []Step `json:"steps"`
}

// Context is the immutable snapshot of live state the decomposer builds
// its prompt from. Callers assemble it per invocation; the pipeline
// holds no ambient stores.
type Context struct {
	// ConnectedServices lists connected integration tags ("email",
	// "slack"). They gate which service tags may be suggested.
	ConnectedServices []string
	// Datasets names saved input datasets the workflow may consume.
	Datasets []string
	// IngestedServices are catalog services ingested from API specs.
	// Their operations are listed so the model can pre-bind steps via
	// catalogOperationId.
	IngestedServices []catalog.Service
	// Example is an optional saved decomposition for few-shot guidance.
	Example *SavedExample
	// ChatChannels are live chat-channel names, appended to the prompt
	// (length-capped) only when the slack integration is connected.
	ChatChannels []string
}

// connected reports whether the given integration tag is connected.
func (c Context) connected(tag string) bool {
	for _, s := range c.ConnectedServices {
		if s == tag {
			return true
		}
	}
	return false
}

// allowedTags returns the suggested-service vocabulary for this context.
func (c Context) allowedTags() []string {
	tags := make([]string, 0, len(baseTags)+2)
	if c.connected(TagEmail) {
		tags = append(tags, TagEmail)
	}
	if c.connected(TagSlack) {
		tags = append(tags, TagSlack)
	}
	return append(tags, baseTags...)
}
