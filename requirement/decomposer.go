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
	"errors"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/log"
	"trpc.group/trpc-go/trpc-flowgen-go/model"
)

// unconfiguredMessage is returned when no usable model is available so
// the caller can surface actionable guidance instead of an opaque error.
const unconfiguredMessage = "No language model is configured. Set OPENAI_API_KEY " +
	"(and optionally OPENAI_BASE_URL) or pass a configured model, then try again."

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
)

// configured is implemented by models that can report whether they hold
// usable credentials.
type configured interface {
	Configured() bool
}

type options struct {
	maxTokens       int
	temperature     float64
	thinkingEnabled bool
}

// Option configures a Decomposer.
type Option func(*options)

// WithMaxTokens sets the completion token budget per turn.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithThinkingEnabled requests the provider's reasoning channel when it
// supports one.
func WithThinkingEnabled(enabled bool) Option {
	return func(o *options) { o.thinkingEnabled = enabled }
}

// Decomposer turns a free-text requirement into ordered workflow steps
// using a single streaming model call per turn.
type Decomposer struct {
	model model.Model
	opts  options
}

// New creates a Decomposer backed by m. A nil or unconfigured m is
// allowed; Decompose then returns a guidance message instead of calling
// the provider.
func New(m model.Model, opt ...Option) *Decomposer {
	opts := options{
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, o := range opt {
		o(&opts)
	}
	return &Decomposer{model: m, opts: opts}
}

func (d *Decomposer) usable() bool {
	if d.model == nil {
		return false
	}
	if c, ok := d.model.(configured); ok {
		return c.Configured()
	}
	return true
}

// Decompose runs one decomposition turn: it assembles the system prompt
// from pctx, replays history, appends userMessage and streams the model
// response through cb. The returned Result always carries the fully
// assembled text; it is never nil when err is nil.
func (d *Decomposer) Decompose(ctx context.Context, history []model.Message,
	userMessage string, pctx Context, cb Callbacks) (*Result, error) {
	if !d.usable() {
		return &Result{Message: unconfiguredMessage}, nil
	}

	messages := make([]model.Message, 0, len(history)+2)
	messages = append(messages, model.NewSystemMessage(buildSystemPrompt(pctx)))
	messages = append(messages, history...)
	messages = append(messages, model.NewUserMessage(userMessage))

	temperature := d.opts.temperature
	req := &model.Request{Messages: messages}
	req.GenerationConfig.Stream = true
	req.GenerationConfig.MaxTokens = intPtr(d.opts.maxTokens)
	req.GenerationConfig.Temperature = &temperature
	req.GenerationConfig.ThinkingEnabled = boolPtr(d.opts.thinkingEnabled)

	ch, err := d.model.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}
	return d.consume(ctx, ch, cb)
}

// consume drains the response channel, routing reasoning and answer
// fragments to the callbacks and assembling the final Result.
func (d *Decomposer) consume(ctx context.Context, ch <-chan *model.Response,
	cb Callbacks) (*Result, error) {
	var raw strings.Builder
	var reasoning strings.Builder
	var emittedThinking, emittedContent string

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rsp, ok := <-ch:
			if !ok {
				return d.finish(raw.String(), reasoning.String()), nil
			}
			if rsp.Error != nil {
				log.Debugf("decompose: provider error: %s", rsp.Error.Message)
				return &Result{Message: ClassifyProviderError(rsp.Error.Message)}, nil
			}
			if !rsp.IsPartial {
				continue
			}
			for _, choice := range rsp.Choices {
				if rc := choice.Delta.ReasoningContent; rc != "" {
					reasoning.WriteString(rc)
					cb.thinking(rc)
				}
				if choice.Delta.Content == "" {
					continue
				}
				raw.WriteString(choice.Delta.Content)
				emittedThinking, emittedContent = emitTagged(
					raw.String(), emittedThinking, emittedContent, cb)
			}
		}
	}
}

// emitTagged re-splits the raw buffer under the THINKING:/RESPONSE:
// convention and forwards only the suffix that has not been emitted yet.
// Text that could still grow into a marker is held back so a marker
// split across deltas is never routed to the wrong callback; the final
// Result carries the complete text regardless.
func emitTagged(raw, emittedThinking, emittedContent string,
	cb Callbacks) (string, string) {
	if trimmed := strings.TrimSpace(raw); len(trimmed) < len(thinkingMarker) &&
		strings.HasPrefix(thinkingMarker, trimmed) {
		return emittedThinking, emittedContent
	}
	thinking, content := splitTagged(raw)
	if !strings.Contains(raw, responseMarker) {
		// The response marker may still be arriving; keep a trailing
		// partial marker out of the thinking stream.
		thinking = strings.TrimSpace(trimMarkerTail(thinking, responseMarker))
	}
	if strings.HasPrefix(thinking, emittedThinking) {
		cb.thinking(thinking[len(emittedThinking):])
		emittedThinking = thinking
	}
	if strings.HasPrefix(content, emittedContent) {
		cb.content(content[len(emittedContent):])
		emittedContent = content
	}
	return emittedThinking, emittedContent
}

// trimMarkerTail removes a trailing partial occurrence of marker from s.
func trimMarkerTail(s, marker string) string {
	for n := len(marker) - 1; n > 0; n-- {
		if strings.HasSuffix(s, marker[:n]) {
			return s[:len(s)-n]
		}
	}
	return s
}

// finish assembles the final Result from the completed buffers.
func (d *Decomposer) finish(raw, reasoning string) *Result {
	thinking, content := splitTagged(raw)
	if thinking == "" {
		thinking = strings.TrimSpace(reasoning)
	}
	if content == "" && thinking == "" {
		return &Result{Message: "The model returned an empty response. Try rephrasing the requirement."}
	}
	return parseResult(thinking, content)
}

// ErrCanceled reports whether err is a context cancellation.
func ErrCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
