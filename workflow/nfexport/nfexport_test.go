//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package nfexport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/discovery"
	"trpc.group/trpc-go/trpc-flowgen-go/workflow"
)

func synthesized(t *testing.T) *workflow.Graph {
	t.Helper()
	sendOp, svc := catalog.FindOperation(catalog.Builtin(), catalog.OpSendGridSend)
	steps := []discovery.Step{
		{StepID: "1", Description: "Send welcome email", Operation: sendOp,
			ServiceID: svc.ID, ParamMapping: map[string]string{}},
		{StepID: "2", Description: "Wait a day", SuggestedService: "delay"},
	}
	g, err := workflow.Synthesize(steps, "Onboarding", workflow.Options{})
	require.NoError(t, err)
	return g
}

func TestConvert(t *testing.T) {
	g := synthesized(t)
	out := Convert(g, "Onboarding")

	assert.Equal(t, "Onboarding", out.Name)
	assert.False(t, out.Active)

	// Annotation is dropped: trigger + email + delay remain.
	require.Len(t, out.Nodes, 3)
	assert.Equal(t, "n8n-nodes-base.manualTrigger", out.Nodes[0].Type)
	assert.Equal(t, "n8n-nodes-base.emailSend", out.Nodes[1].Type)
	assert.Equal(t, "n8n-nodes-base.wait", out.Nodes[2].Type)

	// Delay of 24 hours exports as minutes.
	assert.Equal(t, map[string]any{"amount": 24 * 60, "unit": "minutes"},
		out.Nodes[2].Parameters)

	// Linear chain survives with names, not ids.
	require.Len(t, out.Connections, 2)
	trigger := out.Nodes[0].Name
	require.Contains(t, out.Connections, trigger)
	assert.Equal(t, out.Nodes[1].Name, out.Connections[trigger].Main[0][0].Node)
}

func TestConvert_UniqueNames(t *testing.T) {
	out := Convert(synthesized(t), "Onboarding")
	seen := map[string]bool{}
	for _, n := range out.Nodes {
		assert.False(t, seen[n.Name], "duplicate name %s", n.Name)
		seen[n.Name] = true
	}
}

func TestExportN8N_RoundTrips(t *testing.T) {
	data, err := ExportN8N(synthesized(t), "Onboarding")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Onboarding", doc["name"])
	assert.NotEmpty(t, doc["versionId"])
}

func TestConvert_NoOpFallback(t *testing.T) {
	g := &workflow.Graph{Nodes: []workflow.Node{
		{ID: "x", Type: workflow.NodeControlApproval, Data: &workflow.ControlApprovalData{Title: "Approve"}},
	}}
	out := Convert(g, "Approvals")
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, "n8n-nodes-base.noOp", out.Nodes[0].Type)
}
