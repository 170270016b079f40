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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flowgen-go/model"
)

// fakeModel replays canned responses and records the last request.
type fakeModel struct {
	responses []*model.Response
	lastReq   *model.Request
}

func (f *fakeModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	f.lastReq = req
	ch := make(chan *model.Response, len(f.responses))
	for _, rsp := range f.responses {
		ch <- rsp
	}
	close(ch)
	return ch, nil
}

func contentChunks(chunks ...string) []*model.Response {
	responses := make([]*model.Response, 0, len(chunks))
	for _, c := range chunks {
		responses = append(responses, &model.Response{
			IsPartial: true,
			Choices:   []model.Choice{{Delta: model.Message{Content: c}}},
		})
	}
	return responses
}

func TestDecompose_StructuredSteps(t *testing.T) {
	payload := `{"steps":[
		{"id":"1","description":"Send welcome email","suggestedService":"email"},
		{"id":"2","description":"Add user to Slack","suggestedService":"slack"}],
		"clarifications":[
		{"stepId":"1","question":"What subject line?","placeholder":"Welcome!","targetField":"subject"},
		{"stepId":"9","question":"dangling","placeholder":""}]}`
	m := &fakeModel{responses: contentChunks(payload)}
	d := New(m)

	result, err := d.Decompose(context.Background(), nil,
		"When a user signs up, send a welcome email and invite them to Slack",
		Context{ConnectedServices: []string{TagEmail, TagSlack}}, Callbacks{})
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, "Send welcome email", result.Steps[0].Description)
	assert.Equal(t, "slack", result.Steps[1].SuggestedService)

	// Clarifications referencing unknown steps are dropped.
	require.Len(t, result.Clarifications, 1)
	assert.Equal(t, "subject", result.Clarifications[0].TargetField)
}

func TestDecompose_PlainClarifyingQuestion(t *testing.T) {
	m := &fakeModel{responses: contentChunks("Which system stores the signups?")}
	d := New(m)

	result, err := d.Decompose(context.Background(), nil, "automate signups",
		Context{}, Callbacks{})
	require.NoError(t, err)
	assert.Empty(t, result.Steps)
	assert.Equal(t, "Which system stores the signups?", result.Message)
}

func TestDecompose_DefaultsDuplicateStepIDs(t *testing.T) {
	payload := `{"steps":[
		{"id":"1","description":"First"},
		{"id":"1","description":"Second"},
		{"description":"Third"}]}`
	m := &fakeModel{responses: contentChunks(payload)}
	d := New(m)

	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{})
	require.NoError(t, err)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, []string{"1", "2", "3"},
		[]string{result.Steps[0].ID, result.Steps[1].ID, result.Steps[2].ID})
}

func TestDecompose_StripsCodeFences(t *testing.T) {
	m := &fakeModel{responses: contentChunks(
		"```json\n{\"steps\":[{\"id\":\"1\",\"description\":\"Ping\"}]}\n```")}
	d := New(m)

	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{})
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "Ping", result.Steps[0].Description)
}

func TestDecompose_TaggedStreamSplit(t *testing.T) {
	m := &fakeModel{responses: contentChunks(
		"THINKING:\nThe user wants ", "two steps.",
		"\n\nRESPONSE:\n", "Which email provider do you use?")}
	d := New(m)

	var thinking, content strings.Builder
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{
		OnThinking: func(delta string) { thinking.WriteString(delta) },
		OnContent:  func(delta string) { content.WriteString(delta) },
	})
	require.NoError(t, err)
	assert.Equal(t, "The user wants two steps.", thinking.String())
	assert.Equal(t, "Which email provider do you use?", content.String())
	assert.Equal(t, "The user wants two steps.", result.Thinking)
	assert.Equal(t, "Which email provider do you use?", result.Message)
}

func TestDecompose_TaggedMarkerSplitAcrossDeltas(t *testing.T) {
	m := &fakeModel{responses: contentChunks(
		"TH", "INKING:\nponder\n\nRESPONSE:\nfinal answer")}
	d := New(m)

	var thinking, content strings.Builder
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{
		OnThinking: func(delta string) { thinking.WriteString(delta) },
		OnContent:  func(delta string) { content.WriteString(delta) },
	})
	require.NoError(t, err)
	// The partial marker must not leak into the content stream, and the
	// real answer must still be streamed.
	assert.Equal(t, "final answer", content.String())
	assert.Equal(t, "ponder", thinking.String())
	assert.Equal(t, "final answer", result.Message)
	assert.Equal(t, "ponder", result.Thinking)
}

func TestDecompose_ResponseMarkerSplitAcrossDeltas(t *testing.T) {
	m := &fakeModel{responses: contentChunks(
		"THINKING:\nplan\n\nRESPONS", "E:\nanswer")}
	d := New(m)

	var thinking, content strings.Builder
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{
		OnThinking: func(delta string) { thinking.WriteString(delta) },
		OnContent:  func(delta string) { content.WriteString(delta) },
	})
	require.NoError(t, err)
	assert.Equal(t, "plan", thinking.String())
	assert.Equal(t, "answer", content.String())
	assert.Equal(t, "answer", result.Message)
}

func TestDecompose_ReasoningChannel(t *testing.T) {
	responses := []*model.Response{
		{IsPartial: true, Choices: []model.Choice{
			{Delta: model.Message{ReasoningContent: "Consider the steps."}}}},
		{IsPartial: true, Choices: []model.Choice{
			{Delta: model.Message{Content: "What triggers the workflow?"}}}},
	}
	m := &fakeModel{responses: responses}
	d := New(m, WithThinkingEnabled(true))

	var thinking strings.Builder
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{
		OnThinking: func(delta string) { thinking.WriteString(delta) },
	})
	require.NoError(t, err)
	assert.Equal(t, "Consider the steps.", thinking.String())
	assert.Equal(t, "Consider the steps.", result.Thinking)
	assert.Equal(t, "What triggers the workflow?", result.Message)
}

func TestDecompose_ProviderError(t *testing.T) {
	m := &fakeModel{responses: []*model.Response{{
		Error: &model.ResponseError{
			Message: "You exceeded your current quota", Type: model.ErrorTypeAPIError,
		},
	}}}
	d := New(m)

	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{})
	require.NoError(t, err)
	assert.Empty(t, result.Steps)
	assert.Contains(t, result.Message, "Rate limit or quota exceeded")
}

func TestDecompose_NilModel(t *testing.T) {
	d := New(nil)
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "No language model is configured")
}

func TestDecompose_EmptyResponse(t *testing.T) {
	m := &fakeModel{}
	d := New(m)
	result, err := d.Decompose(context.Background(), nil, "req", Context{}, Callbacks{})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "empty response")
}

func TestDecompose_ContextCanceled(t *testing.T) {
	blocking := blockingModel{}
	d := New(blocking)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Decompose(ctx, nil, "req", Context{}, Callbacks{})
	require.Error(t, err)
	assert.True(t, ErrCanceled(err))
}

// blockingModel returns a channel that never produces a response.
type blockingModel struct{}

func (blockingModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	return make(chan *model.Response), nil
}

func TestDecompose_RequestShape(t *testing.T) {
	m := &fakeModel{responses: contentChunks("ok")}
	d := New(m, WithMaxTokens(512), WithTemperature(0.7))

	history := []model.Message{
		model.NewUserMessage("earlier question"),
		model.NewAssistantMessage("earlier answer"),
	}
	_, err := d.Decompose(context.Background(), history, "follow-up", Context{}, Callbacks{})
	require.NoError(t, err)

	req := m.lastReq
	require.NotNil(t, req)
	assert.True(t, req.Stream)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 512, *req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)

	require.Len(t, req.Messages, 4)
	assert.Equal(t, model.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "earlier question", req.Messages[1].Content)
	assert.Equal(t, "follow-up", req.Messages[3].Content)
}
