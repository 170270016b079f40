//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "t", Type: NodeTriggerManual, Data: &TriggerManualData{}},
			{ID: "a", Type: NodeActionHTTP, Data: &ActionHTTPData{Method: "POST", URL: "https://x"}},
		},
		Edges: []Edge{{ID: "e1", Source: "t", Target: "a"}},
	}
}

func TestGraphValidate_OK(t *testing.T) {
	assert.NoError(t, validGraph().Validate())
}

func TestGraphValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Graph)
		message string
	}{
		{
			"duplicate node id",
			func(g *Graph) { g.Nodes[1].ID = "t" },
			"duplicate node id",
		},
		{
			"unknown type",
			func(g *Graph) { g.Nodes[1].Type = "banana" },
			"unknown node type",
		},
		{
			"data kind mismatch",
			func(g *Graph) { g.Nodes[1].Data = &ActionSlackData{} },
			"does not match node type",
		},
		{
			"dangling target",
			func(g *Graph) { g.Edges[0].Target = "missing" },
			"unknown target",
		},
		{
			"self loop",
			func(g *Graph) { g.Edges[0].Target = "t" },
			"self-loop",
		},
		{
			"invalid data",
			func(g *Graph) { g.Nodes[1].Data = &ActionHTTPData{Method: "YEET"} },
			"unknown HTTP method",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(g)
			err := g.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNodeDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    NodeData
		wantErr bool
	}{
		{"default cron", &TriggerScheduleData{Cron: DefaultCron}, false},
		{"empty cron", &TriggerScheduleData{}, false},
		{"bad cron", &TriggerScheduleData{Cron: "not a cron"}, true},
		{"webhook get", &TriggerWebhookData{Method: "GET"}, false},
		{"webhook put", &TriggerWebhookData{Method: "PUT"}, true},
		{"email send", &ActionEmailData{Operation: EmailOpSend}, false},
		{"email unknown op", &ActionEmailData{Operation: "forward"}, true},
		{"slack reaction", &ActionSlackData{Operation: SlackOpReaction}, false},
		{"slack unknown op", &ActionSlackData{Operation: "archive"}, true},
		{"negative delay", &ControlDelayData{DelayHours: -1}, true},
		{"condition operator", &ControlConditionData{Operator: "contains"}, false},
		{"condition bad operator", &ControlConditionData{Operator: "regex"}, true},
		{"document html", &ActionDocumentData{Format: "html"}, false},
		{"document docx", &ActionDocumentData{Format: "docx"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNodeTypeValid(t *testing.T) {
	assert.True(t, NodeType("trigger-manual").Valid())
	assert.True(t, NodeType("markdown").Valid())
	assert.False(t, NodeType("trigger-email").Valid())
	assert.True(t, NodeTriggerSchedule.IsTrigger())
	assert.False(t, NodeActionHTTP.IsTrigger())
}
