//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package discovery

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/requirement"
)

// Step is one requirement step bound to a catalog operation. Operation
// is never nil after resolution; unresolvable steps carry the generic
// custom-call operation with an empty parameter mapping.
type Step struct {
	StepID           string
	Description      string
	Reason           string
	Operation        *catalog.Operation
	ServiceID        string
	ParamMapping     map[string]string
	SuggestedService string
}

// Options tune a single Resolve call.
type Options struct {
	// Clarifications are the questions asked during decomposition.
	Clarifications []requirement.Clarification
	// ClarificationValues holds the user's answers, keyed by
	// "<stepId>-<index>" where index is the clarification's position.
	ClarificationValues map[string]string
	// Progress receives per-step phase notifications. May be nil.
	Progress func(phase, detail string)
}

func (o Options) progress(phase, detail string) {
	if o.Progress != nil {
		o.Progress(phase, detail)
	}
}

// Resolver binds requirement steps to operations from a merged catalog.
type Resolver struct {
	merged   []catalog.Service
	ingested []catalog.Operation
	selector *Selector
	matcher  *catalog.Matcher
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSelector installs the AI operation selector used for http-like
// steps when ingested candidates exist.
func WithSelector(s *Selector) ResolverOption {
	return func(r *Resolver) { r.selector = s }
}

// WithMatcher overrides the keyword matcher.
func WithMatcher(m *catalog.Matcher) ResolverOption {
	return func(r *Resolver) { r.matcher = m }
}

// NewResolver creates a Resolver over the static catalog and the
// services ingested from API specs. Static operations win keyword-match
// ties because they come first in the merged view.
func NewResolver(static, ingested []catalog.Service, opt ...ResolverOption) *Resolver {
	r := &Resolver{
		merged:  catalog.Merged(static, ingested),
		matcher: catalog.NewMatcher(),
	}
	for _, svc := range ingested {
		r.ingested = append(r.ingested, svc.Operations...)
	}
	for _, o := range opt {
		o(r)
	}
	return r
}

// Resolve binds every step, in order, to an operation. Per step the
// binding order is: pre-bound catalog operation id, AI selection over
// ingested candidates (http-suggested steps only), keyword match over
// the merged catalog, generic custom-call fallback. Resolution is total
// and sequential; it never fails a step.
func (r *Resolver) Resolve(ctx context.Context, steps []requirement.Step,
	opts Options) []Step {
	userSummary := buildUserSummary(opts.Clarifications, opts.ClarificationValues)

	resolved := make([]Step, 0, len(steps))
	for i, step := range steps {
		opts.progress("Matching step", fmt.Sprintf("%d: %s", i+1, step.Description))

		if bound := r.resolvePrebound(step); bound != nil {
			resolved = append(resolved, *bound)
			continue
		}
		if picked := r.resolveByAI(ctx, steps, i, userSummary); picked != nil {
			resolved = append(resolved, *picked)
			continue
		}
		resolved = append(resolved, r.resolveByKeywords(step))
	}
	return resolved
}

// resolvePrebound honors a catalogOperationId chosen during
// decomposition, when it names a real operation.
func (r *Resolver) resolvePrebound(step requirement.Step) *Step {
	id := strings.TrimSpace(step.CatalogOperationID)
	if id == "" {
		return nil
	}
	op, svc := catalog.FindOperation(r.merged, id)
	if op == nil {
		return nil
	}
	return &Step{
		StepID:           step.ID,
		Description:      step.Description,
		Reason:           step.Reason,
		Operation:        op,
		ServiceID:        svc.ID,
		ParamMapping:     defaultParamMapping(op),
		SuggestedService: step.SuggestedService,
	}
}

// resolveByAI asks the selector to pick among ingested operations. Only
// http-suggested steps qualify, and only when candidates exist.
func (r *Resolver) resolveByAI(ctx context.Context, steps []requirement.Step,
	i int, userSummary string) *Step {
	step := steps[i]
	if step.SuggestedService != requirement.TagHTTP || len(r.ingested) == 0 {
		return nil
	}
	sctx := SelectContext{UserSummary: userSummary}
	for _, prev := range steps[:i] {
		sctx.PreviousSteps = append(sctx.PreviousSteps,
			StepRef{StepID: prev.ID, Description: prev.Description})
	}
	selection := r.selector.Select(ctx, step.Description, r.ingested, sctx)
	if selection == nil {
		return nil
	}
	op, svc := catalog.FindOperation(r.merged, selection.OperationID)
	if op == nil {
		return nil
	}
	mapping := defaultParamMapping(op)
	for k, v := range selection.ParamMapping {
		mapping[k] = v
	}
	return &Step{
		StepID:           step.ID,
		Description:      step.Description,
		Reason:           step.Reason,
		Operation:        op,
		ServiceID:        svc.ID,
		ParamMapping:     mapping,
		SuggestedService: step.SuggestedService,
	}
}

// resolveByKeywords matches by intent keywords, falling back to the
// generic custom call with an empty mapping.
func (r *Resolver) resolveByKeywords(step requirement.Step) Step {
	op := r.matcher.Match(step.Description, r.merged)
	if op == nil {
		return Step{
			StepID:           step.ID,
			Description:      step.Description,
			Reason:           step.Reason,
			Operation:        catalog.CustomCallOperation(),
			ServiceID:        catalog.ServiceHTTP,
			ParamMapping:     map[string]string{},
			SuggestedService: step.SuggestedService,
		}
	}
	_, svc := catalog.FindOperation(r.merged, op.ID)
	serviceID := catalog.ServiceHTTP
	if svc != nil {
		serviceID = svc.ID
	}
	return Step{
		StepID:           step.ID,
		Description:      step.Description,
		Reason:           step.Reason,
		Operation:        op,
		ServiceID:        serviceID,
		ParamMapping:     defaultParamMapping(op),
		SuggestedService: step.SuggestedService,
	}
}

// defaultParamMapping maps every parameter key to its own placeholder.
func defaultParamMapping(op *catalog.Operation) map[string]string {
	out := make(map[string]string, len(op.Params))
	for _, p := range op.Params {
		out[p.Key] = fmt.Sprintf("{{%s}}", p.Key)
	}
	return out
}

const (
	maxSummaryLabelChars = 30
	maxSummaryValueChars = 50
)

// buildUserSummary condenses answered clarifications into one line the
// selector can draw literal parameter values from.
func buildUserSummary(clarifications []requirement.Clarification,
	values map[string]string) string {
	if len(clarifications) == 0 || len(values) == 0 {
		return ""
	}
	var parts []string
	for i, c := range clarifications {
		value := strings.TrimSpace(values[fmt.Sprintf("%s-%d", c.StepID, i)])
		if value == "" {
			continue
		}
		label := c.TargetField
		if label == "" {
			label = truncateRunes(c.Question, maxSummaryLabelChars)
		}
		parts = append(parts, label+": "+truncateRunes(value, maxSummaryValueChars))
	}
	return strings.Join(parts, "; ")
}

// truncateRunes shortens s to at most n runes so truncation never splits
// a multibyte character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
