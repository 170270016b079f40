//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package workflow models typed workflow graphs and synthesizes them
// from resolved requirement steps.
package workflow

// NodeType identifies a node kind. The set is closed: Valid reports
// whether a value belongs to it.
type NodeType string

// Node type constants. The prompt/ai/markdown kinds are recognized on
// input for compatibility with hand-edited graphs but never generated.
const (
	NodeTriggerManual    NodeType = "trigger-manual"
	NodeTriggerWebhook   NodeType = "trigger-webhook"
	NodeTriggerSchedule  NodeType = "trigger-schedule"
	NodeActionHTTP       NodeType = "action-http"
	NodeActionEmail      NodeType = "action-email"
	NodeActionSlack      NodeType = "action-slack"
	NodeActionDocument   NodeType = "action-document"
	NodeControlDelay     NodeType = "control-delay"
	NodeControlCondition NodeType = "control-condition"
	NodeControlApproval  NodeType = "control-approval"
	NodeDataTransform    NodeType = "data-transform"
	NodeAnnotation       NodeType = "annotation"
	NodePrompt           NodeType = "prompt"
	NodeAI               NodeType = "ai"
	NodeMarkdown         NodeType = "markdown"
)

var nodeTypes = map[NodeType]bool{
	NodeTriggerManual: true, NodeTriggerWebhook: true, NodeTriggerSchedule: true,
	NodeActionHTTP: true, NodeActionEmail: true, NodeActionSlack: true,
	NodeActionDocument: true, NodeControlDelay: true, NodeControlCondition: true,
	NodeControlApproval: true, NodeDataTransform: true, NodeAnnotation: true,
	NodePrompt: true, NodeAI: true, NodeMarkdown: true,
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return nodeTypes[t]
}

// IsTrigger reports whether t is a trigger kind.
func (t NodeType) IsTrigger() bool {
	return t == NodeTriggerManual || t == NodeTriggerWebhook || t == NodeTriggerSchedule
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one workflow node. Data, when set, must match Type.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
}

// Edge connects two nodes. SourceHandle selects an output branch on
// multi-output nodes (condition true/false).
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Graph is a complete workflow.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Validate checks structural integrity: unique node ids, valid node
// types, node data matching the node type and passing its own
// validation, edges referencing existing nodes, no self-loops.
func (g *Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			return &ValidationError{Field: "id", Message: "node id is empty"}
		}
		if ids[n.ID] {
			return &ValidationError{NodeID: n.ID, Field: "id", Message: "duplicate node id"}
		}
		ids[n.ID] = true
		if !n.Type.Valid() {
			return &ValidationError{NodeID: n.ID, Field: "type",
				Message: "unknown node type " + string(n.Type)}
		}
		if n.Data != nil {
			if n.Data.Type() != n.Type {
				return &ValidationError{NodeID: n.ID, Field: "data",
					Message: "data kind " + string(n.Data.Type()) + " does not match node type " + string(n.Type)}
			}
			if err := n.Data.Validate(); err != nil {
				if verr, ok := err.(*ValidationError); ok {
					verr.NodeID = n.ID
					return verr
				}
				return err
			}
		}
	}
	for _, e := range g.Edges {
		if !ids[e.Source] {
			return &ValidationError{Field: "source",
				Message: "edge " + e.ID + " references unknown source " + e.Source}
		}
		if !ids[e.Target] {
			return &ValidationError{Field: "target",
				Message: "edge " + e.ID + " references unknown target " + e.Target}
		}
		if e.Source == e.Target {
			return &ValidationError{NodeID: e.Source, Field: "target",
				Message: "edge " + e.ID + " is a self-loop"}
		}
	}
	return nil
}
