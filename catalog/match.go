//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package catalog

// Matching constants. Both are deliberate but arbitrary defaults kept
// configurable through Matcher to avoid nondeterminism, not to encode a
// stronger intent.
const (
	// DefaultMinOverlap is the minimum keyword overlap for a match.
	DefaultMinOverlap = 2
	// DefaultMaxIntentKeywords caps derived keyword lists to bound
	// matching cost.
	DefaultMaxIntentKeywords = 10
)

// Matcher scores operations by keyword overlap with a step description.
// The zero value is not usable; call NewMatcher.
type Matcher struct {
	// MinOverlap is the minimum number of overlapping keywords required
	// for an operation to qualify. Operations with fewer keywords than
	// MinOverlap qualify on a full-keyword match.
	MinOverlap int
}

// NewMatcher returns a Matcher with the default thresholds.
func NewMatcher() *Matcher {
	return &Matcher{MinOverlap: DefaultMinOverlap}
}

// Match resolves a free-text step description to the best operation in
// the given services, or nil when no operation reaches the overlap
// threshold. The result is deterministic: operations are scored in
// catalog order and ties keep the earlier operation, so static services
// placed before ingested ones win equal scores.
func (m *Matcher) Match(description string, services []Service) *Operation {
	tokens := Tokenize(description)
	if len(tokens) == 0 {
		return nil
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	var best *Operation
	bestScore := 0
	for i := range services {
		for j := range services[i].Operations {
			op := &services[i].Operations[j]
			score := overlap(op.IntentKeywords, tokenSet)
			if score < m.minOverlapFor(op) {
				continue
			}
			if score > bestScore {
				best = op
				bestScore = score
			}
		}
	}
	return best
}

func (m *Matcher) minOverlapFor(op *Operation) int {
	if len(op.IntentKeywords) < m.MinOverlap {
		return len(op.IntentKeywords)
	}
	return m.MinOverlap
}

func overlap(keywords []string, tokenSet map[string]struct{}) int {
	score := 0
	for _, kw := range keywords {
		if _, ok := tokenSet[kw]; ok {
			score++
		}
	}
	return score
}

// Match resolves a description against services with default thresholds.
func Match(description string, services []Service) *Operation {
	return NewMatcher().Match(description, services)
}
