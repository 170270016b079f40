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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
)

func TestBuildSystemPrompt_TagGating(t *testing.T) {
	bare := buildSystemPrompt(Context{})
	assert.NotContains(t, bare, "email, slack")
	assert.Contains(t, bare, TagHTTP)
	assert.Contains(t, bare, TagApproval)

	connected := buildSystemPrompt(Context{
		ConnectedServices: []string{TagEmail, TagSlack},
	})
	assert.Contains(t, connected, "email, slack, http")
	assert.Contains(t, connected, "Connected services: email, slack")
}

func TestBuildSystemPrompt_ChannelsOnlyWhenSlackConnected(t *testing.T) {
	channels := []string{"#general", "#eng", "#random"}

	without := buildSystemPrompt(Context{ChatChannels: channels})
	assert.NotContains(t, without, "#general")

	with := buildSystemPrompt(Context{
		ConnectedServices: []string{TagSlack},
		ChatChannels:      channels,
	})
	assert.Contains(t, with, "#general, #eng, #random")
}

func TestBuildSystemPrompt_ChannelListingCapped(t *testing.T) {
	channels := make([]string, 100)
	for i := range channels {
		channels[i] = fmt.Sprintf("#channel-with-a-long-name-%02d", i)
	}
	prompt := buildSystemPrompt(Context{
		ConnectedServices: []string{TagSlack},
		ChatChannels:      channels,
	})
	idx := strings.Index(prompt, "Slack channels available: ")
	require.GreaterOrEqual(t, idx, 0)
	snippet := prompt[idx+len("Slack channels available: "):]
	assert.LessOrEqual(t, len(snippet), maxChannelListing)
}

func TestBuildSystemPrompt_IngestedOperations(t *testing.T) {
	svc := catalog.Service{
		ID:   "crm",
		Name: "CRM",
		Operations: []catalog.Operation{{
			ID:          "crm-createCustomer",
			Name:        "Create customer",
			Method:      "POST",
			URLTemplate: "https://api.x.com/customers",
		}},
	}
	prompt := buildSystemPrompt(Context{IngestedServices: []catalog.Service{svc}})
	assert.Contains(t, prompt, "- crm-createCustomer: Create customer (POST https://api.x.com/customers)")
	assert.Contains(t, prompt, "catalogOperationId")
}

func TestIngestedOperationListing_Capped(t *testing.T) {
	svc := catalog.Service{ID: "big"}
	for i := 0; i < maxIngestedOperations+20; i++ {
		svc.Operations = append(svc.Operations, catalog.Operation{
			ID: fmt.Sprintf("big-op-%d", i), Name: "Op", Method: "GET",
		})
	}
	listing := ingestedOperationListing(Context{IngestedServices: []catalog.Service{svc}})
	assert.Equal(t, maxIngestedOperations, strings.Count(listing, "\n")+1)
}

func TestBuildSystemPrompt_Example(t *testing.T) {
	prompt := buildSystemPrompt(Context{
		Example: &SavedExample{
			Requirement: "Notify the team on new orders",
			Steps:       []Step{{ID: "1", Description: "Post order summary to Slack"}},
		},
	})
	assert.Contains(t, prompt, "Example decomposition")
	assert.Contains(t, prompt, "Notify the team on new orders")
	assert.Contains(t, prompt, "Post order summary to Slack")
}

func TestSplitTagged(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantThinking string
		wantContent  string
	}{
		{
			name:         "both sections",
			in:           "THINKING:\nreasoning here\n\nRESPONSE:\nanswer here",
			wantThinking: "reasoning here",
			wantContent:  "answer here",
		},
		{
			name:         "thinking only",
			in:           "THINKING:\nstill reasoning",
			wantThinking: "still reasoning",
			wantContent:  "",
		},
		{
			name:        "untagged",
			in:          "plain answer",
			wantContent: "plain answer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thinking, content := splitTagged(tt.in)
			assert.Equal(t, tt.wantThinking, thinking)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestClassifyProviderError(t *testing.T) {
	assert.Contains(t, ClassifyProviderError("You exceeded your current quota"),
		"Rate limit or quota exceeded")
	assert.Contains(t, ClassifyProviderError("Rate limit reached for gpt-4o"),
		"Rate limit or quota exceeded")
	assert.Contains(t, ClassifyProviderError("billing hard limit reached"),
		"billing or plan page")
	assert.Contains(t, ClassifyProviderError("connection reset"),
		"Check your API key and model")
}
