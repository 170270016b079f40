//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package catalog maintains the registry of callable operations that
// workflow steps resolve against. The registry merges a static builtin
// catalog with services ingested from API specifications at query time.
package catalog

import "strings"

// Param describes one parameter of a catalog operation.
type Param struct {
	// Key is the parameter name as the target API expects it.
	Key string `json:"key"`
	// Required reports whether the operation needs this parameter.
	Required bool `json:"required"`
	// Description is a short human-readable explanation.
	Description string `json:"description"`
}

// Operation is one callable action known to the system.
type Operation struct {
	// ID is unique across the merged catalog. Ingested operations are
	// namespaced by their service id to avoid collision.
	ID string `json:"id"`
	// Name is a short display name, e.g. "Send email".
	Name string `json:"name"`
	// Description explains what the operation does.
	Description string `json:"description"`
	// Method is the HTTP method, upper-cased.
	Method string `json:"method"`
	// URLTemplate is the request URL. It may contain no placeholders.
	URLTemplate string `json:"urlTemplate"`
	// ConnectionKey names the credential this operation needs, if any.
	ConnectionKey string `json:"connectionKey,omitempty"`
	// Params lists the operation parameters.
	Params []Param `json:"params"`
	// IntentKeywords are lower-cased words used by the intent matcher.
	IntentKeywords []string `json:"intentKeywords"`
}

// Service groups the operations of one provider or ingested spec.
type Service struct {
	// ID identifies the service, e.g. "slack" or an ingested spec id.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Description explains the service.
	Description string `json:"description"`
	// AuthType is the authentication scheme: "none", "apiKey", "oauth".
	AuthType string `json:"authType"`
	// ConnectionKey names the credential shared by the operations.
	ConnectionKey string `json:"connectionKey,omitempty"`
	// Operations are the callable actions of the service.
	Operations []Operation `json:"operations"`
}

// Merged returns the query-time view of the catalog: the static services
// followed by the ingested ones, so static operations win ties during
// matching. The inputs are not copied; treat the result as a snapshot.
func Merged(static, ingested []Service) []Service {
	merged := make([]Service, 0, len(static)+len(ingested))
	merged = append(merged, static...)
	merged = append(merged, ingested...)
	return merged
}

// FindOperation looks up an operation by id across services. It returns
// the operation and its owning service, or nil when the id is unknown.
func FindOperation(services []Service, operationID string) (*Operation, *Service) {
	if operationID == "" {
		return nil, nil
	}
	for i := range services {
		for j := range services[i].Operations {
			if services[i].Operations[j].ID == operationID {
				return &services[i].Operations[j], &services[i]
			}
		}
	}
	return nil, nil
}

// Tokenize splits s into lower-cased words of more than two characters.
// It is the shared tokenization for intent keywords and step descriptions.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLower && !isDigit
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
