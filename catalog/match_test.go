//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_WelcomeEmail(t *testing.T) {
	op := Match("Send a welcome email to new signups", Builtin())
	require.NotNil(t, op)
	assert.Equal(t, OpSendGridSend, op.ID)
}

func TestMatch_Deterministic(t *testing.T) {
	services := Builtin()
	first := Match("Send a welcome email to new signups", services)
	for i := 0; i < 10; i++ {
		again := Match("Send a welcome email to new signups", services)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestMatch_NoQualifyingOverlap(t *testing.T) {
	assert.Nil(t, Match("compute quarterly depreciation schedule", Builtin()))
	assert.Nil(t, Match("", Builtin()))
}

func TestMatch_StaticWinsTies(t *testing.T) {
	static := Service{
		ID: "static",
		Operations: []Operation{
			{ID: "static-op", IntentKeywords: []string{"export", "report"}},
		},
	}
	ingested := Service{
		ID: "ingested",
		Operations: []Operation{
			{ID: "ingested-op", IntentKeywords: []string{"export", "report"}},
		},
	}
	op := Match("export the report", Merged([]Service{static}, []Service{ingested}))
	require.NotNil(t, op)
	assert.Equal(t, "static-op", op.ID)
}

func TestMatch_HigherScoreWins(t *testing.T) {
	services := []Service{
		{
			ID: "svc",
			Operations: []Operation{
				{ID: "weak", IntentKeywords: []string{"invoice", "create"}},
				{ID: "strong", IntentKeywords: []string{"invoice", "create", "customer"}},
			},
		},
	}
	op := Match("create an invoice for the customer", services)
	require.NotNil(t, op)
	assert.Equal(t, "strong", op.ID)
}

func TestMatch_ShortKeywordList(t *testing.T) {
	services := []Service{
		{
			ID: "svc",
			Operations: []Operation{
				{ID: "single", IntentKeywords: []string{"reconcile"}},
			},
		},
	}
	// One keyword is below MinOverlap; a full-keyword hit still matches.
	op := Match("reconcile the ledger", services)
	require.NotNil(t, op)
	assert.Equal(t, "single", op.ID)
}

func TestFindOperation(t *testing.T) {
	op, svc := FindOperation(Builtin(), OpSlackPostMessage)
	require.NotNil(t, op)
	require.NotNil(t, svc)
	assert.Equal(t, ServiceSlack, svc.ID)

	op, svc = FindOperation(Builtin(), "unknown")
	assert.Nil(t, op)
	assert.Nil(t, svc)

	op, _ = FindOperation(Builtin(), "")
	assert.Nil(t, op)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Send a welcome EMAIL, to new-signups!")
	assert.Equal(t, []string{"send", "welcome", "email", "new", "signups"}, tokens)
}

func TestBuiltin_UniqueOperationIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, svc := range Builtin() {
		for _, op := range svc.Operations {
			assert.False(t, seen[op.ID], "duplicate operation id %s", op.ID)
			seen[op.ID] = true
		}
	}
}
