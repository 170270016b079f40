//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/respjson"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-flowgen-go/model"
)

const (
	// apiKeyEnv is consulted when no API key option is given.
	apiKeyEnv = "OPENAI_API_KEY" //nolint:gosec
	// baseURLEnv is consulted when no base URL option is given.
	baseURLEnv = "OPENAI_BASE_URL"
)

// Model implements the model.Model interface for OpenAI-compatible APIs.
type Model struct {
	client            openai.Client
	name              string
	apiKey            string
	baseURL           string
	channelBufferSize int
	extraFields       map[string]any
}

// New creates a new OpenAI-like model.
func New(name string, opts ...Option) *Model {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.APIKey == "" {
		o.APIKey = os.Getenv(apiKeyEnv)
	}
	if o.BaseURL == "" {
		o.BaseURL = os.Getenv(baseURLEnv)
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	clientOpts = append(clientOpts, o.OpenAIOptions...)

	return &Model{
		client:            openai.NewClient(clientOpts...),
		name:              name,
		apiKey:            o.APIKey,
		baseURL:           o.BaseURL,
		channelBufferSize: o.ChannelBufferSize,
		extraFields:       o.ExtraFields,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name: m.name,
	}
}

// Configured reports whether a credential is available for this model.
// The pipeline uses it to degrade to manual-only mode instead of issuing
// requests that are guaranteed to fail.
func (m *Model) Configured() bool {
	return m.apiKey != ""
}

// GenerateContent implements the model.Model interface.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}

	responseChan := make(chan *model.Response, m.channelBufferSize)
	chatRequest, opts := m.buildChatRequest(request)

	go func() {
		defer close(responseChan)
		if request.Stream {
			m.handleStreamingResponse(ctx, chatRequest, responseChan, opts...)
		} else {
			m.handleNonStreamingResponse(ctx, chatRequest, responseChan, opts...)
		}
	}()

	return responseChan, nil
}

// buildChatRequest converts our Request to OpenAI request params and options.
func (m *Model) buildChatRequest(request *model.Request) (openai.ChatCompletionNewParams, []openaiopt.RequestOption) {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
	}

	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}
	if len(request.Stop) > 0 {
		// Use the first stop string for simplicity.
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(request.Stop[0]),
		}
	}
	if request.ReasoningEffort != nil {
		chatRequest.ReasoningEffort = shared.ReasoningEffort(*request.ReasoningEffort)
	}

	var opts []openaiopt.RequestOption
	if request.ThinkingEnabled != nil {
		opts = append(opts, openaiopt.WithJSONSet(model.ThinkingEnabledKey, *request.ThinkingEnabled))
	}
	for key, value := range m.extraFields {
		opts = append(opts, openaiopt.WithJSONSet(key, value))
	}

	if request.Stream {
		chatRequest.StreamOptions = openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		}
	}
	return chatRequest, opts
}

// convertMessages converts our Message format to OpenAI's format.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case model.RoleAssistant:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		default:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

// handleNonStreamingResponse handles non-streaming chat completion responses.
func (m *Model) handleNonStreamingResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
	opts ...openaiopt.RequestOption,
) {
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest, opts...)
	if err != nil {
		errorResponse := &model.Response{
			Object: model.ObjectTypeError,
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeAPIError,
			},
			Timestamp: time.Now(),
			Done:      true,
		}
		select {
		case responseChan <- errorResponse:
		case <-ctx.Done():
		}
		return
	}

	response := &model.Response{
		ID:        chatCompletion.ID,
		Object:    string(chatCompletion.Object),
		Created:   chatCompletion.Created,
		Model:     chatCompletion.Model,
		Timestamp: time.Now(),
		Done:      true,
	}
	if len(chatCompletion.Choices) > 0 {
		response.Choices = make([]model.Choice, len(chatCompletion.Choices))
		for i, choice := range chatCompletion.Choices {
			response.Choices[i] = model.Choice{
				Index: int(choice.Index),
				Message: model.Message{
					Role:             model.RoleAssistant,
					Content:          choice.Message.Content,
					ReasoningContent: extractReasoningContent(choice.Message.JSON.ExtraFields),
				},
			}
			if choice.FinishReason != "" {
				finishReason := choice.FinishReason
				response.Choices[i].FinishReason = &finishReason
			}
		}
	}
	if chatCompletion.Usage.TotalTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}

	select {
	case responseChan <- response:
	case <-ctx.Done():
	}
}

// handleStreamingResponse handles streaming chat completion responses.
func (m *Model) handleStreamingResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
	opts ...openaiopt.RequestOption,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, chatRequest, opts...)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	// Aggregate reasoning deltas for final message fallback (some providers
	// don't retain reasoning in the accumulator).
	var reasoningBuf bytes.Buffer

	for stream.Next() {
		chunk := stream.Current()

		if shouldSkipEmptyChunk(chunk) {
			continue
		}

		// Skip accumulating reasoning chunks that would trip the SDK accumulator.
		if !hasReasoningContent(chunk.Choices) {
			acc.AddChunk(chunk)
		}

		if len(chunk.Choices) > 0 {
			if reasoningContent := extractReasoningContent(chunk.Choices[0].Delta.JSON.ExtraFields); reasoningContent != "" {
				reasoningBuf.WriteString(reasoningContent)
			}
		}

		response := createPartialResponse(chunk)
		select {
		case responseChan <- response:
		case <-ctx.Done():
			return
		}
	}

	if err := stream.Err(); err != nil {
		errorResponse := &model.Response{
			Object: model.ObjectTypeError,
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeStreamError,
			},
			Timestamp: time.Now(),
			Done:      true,
		}
		select {
		case responseChan <- errorResponse:
		case <-ctx.Done():
		}
		return
	}

	finalResponse := createFinalResponse(acc, reasoningBuf.String())
	select {
	case responseChan <- finalResponse:
	case <-ctx.Done():
	}
}

// shouldSkipEmptyChunk returns true when the chunk contains no meaningful
// delta. Chunks with a finish reason, reasoning content, valid content or
// usage are always kept so that streaming clients observe termination
// semantics.
func shouldSkipEmptyChunk(chunk openai.ChatCompletionChunk) bool {
	if len(chunk.Choices) == 0 {
		return !(chunk.Usage.CompletionTokens > 0 || chunk.Usage.PromptTokens > 0 || chunk.Usage.TotalTokens > 0)
	}
	if chunk.Choices[0].FinishReason != "" {
		return false
	}
	if hasReasoningContent(chunk.Choices) {
		return false
	}
	delta := chunk.Choices[0].Delta
	if delta.JSON.Content.Valid() || delta.JSON.Refusal.Valid() {
		return false
	}
	return true
}

// hasReasoningContent checks if the choices contain reasoning content.
func hasReasoningContent(choices []openai.ChatCompletionChunkChoice) bool {
	if len(choices) == 0 {
		return false
	}
	return extractReasoningContent(choices[0].Delta.JSON.ExtraFields) != ""
}

// extractReasoningContent extracts reasoning content from ExtraFields.
func extractReasoningContent(extraFields map[string]respjson.Field) string {
	if extraFields == nil {
		return ""
	}
	reasoningField, ok := extraFields[model.ReasoningContentKey]
	if !ok {
		return ""
	}
	reasoningStr, err := strconv.Unquote(reasoningField.Raw())
	if err != nil {
		return ""
	}
	return reasoningStr
}

// createPartialResponse creates a partial response from a chunk.
func createPartialResponse(chunk openai.ChatCompletionChunk) *model.Response {
	response := &model.Response{
		ID: chunk.ID,
		// Normalize object for chunks; upstream may emit an empty object.
		Object: func() string {
			if chunk.Object != "" {
				return string(chunk.Object)
			}
			return model.ObjectTypeChatCompletionChunk
		}(),
		Created:   chunk.Created,
		Model:     chunk.Model,
		Timestamp: time.Now(),
		Done:      false,
		IsPartial: true,
	}
	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		modelChoice := model.Choice{
			Index: int(choice.Index),
			Delta: model.Message{
				Role:             model.RoleAssistant,
				Content:          choice.Delta.Content,
				ReasoningContent: extractReasoningContent(choice.Delta.JSON.ExtraFields),
			},
		}
		if choice.FinishReason != "" {
			finishReason := choice.FinishReason
			modelChoice.FinishReason = &finishReason
		}
		response.Choices = []model.Choice{modelChoice}
	}
	return response
}

// createFinalResponse creates the final aggregated response.
func createFinalResponse(acc openai.ChatCompletionAccumulator, aggregatedReasoning string) *model.Response {
	finalResponse := &model.Response{
		Object:    model.ObjectTypeChatCompletion,
		ID:        acc.ID,
		Created:   acc.Created,
		Model:     acc.Model,
		Choices:   make([]model.Choice, len(acc.Choices)),
		Timestamp: time.Now(),
		Done:      true,
		IsPartial: false,
	}
	if acc.Usage.TotalTokens > 0 {
		finalResponse.Usage = &model.Usage{
			PromptTokens:     int(acc.Usage.PromptTokens),
			CompletionTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:      int(acc.Usage.TotalTokens),
		}
	}
	for i, choice := range acc.Choices {
		reasoningContent := extractReasoningContent(choice.Message.JSON.ExtraFields)
		if reasoningContent == "" && i == 0 {
			reasoningContent = aggregatedReasoning
		}
		finalResponse.Choices[i] = model.Choice{
			Index: int(choice.Index),
			Message: model.Message{
				Role:             model.RoleAssistant,
				Content:          choice.Message.Content,
				ReasoningContent: reasoningContent,
			},
		}
		if choice.FinishReason != "" {
			finishReason := choice.FinishReason
			finalResponse.Choices[i].FinishReason = &finishReason
		}
	}
	return finalResponse
}
