//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package nfexport converts workflow graphs to n8n workflow JSON so
// generated workflows can be imported into an n8n instance.
package nfexport

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-flowgen-go/workflow"
)

// Workflow is the n8n import document.
type Workflow struct {
	Name        string                 `json:"name"`
	Nodes       []N8NNode              `json:"nodes"`
	Connections map[string]Connections `json:"connections"`
	Active      bool                   `json:"active"`
	Settings    map[string]any         `json:"settings"`
	VersionID   string                 `json:"versionId"`
}

// N8NNode is one node in an n8n workflow.
type N8NNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion int            `json:"typeVersion"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Connections lists a node's outgoing links per output port.
type Connections struct {
	Main [][]Target `json:"main"`
}

// Target is one incoming link on a downstream node.
type Target struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Convert maps a graph to the n8n document. Annotation nodes have no
// n8n analog and are dropped together with their edges; every other
// unmapped type becomes a no-op node so the chain stays importable.
func Convert(g *workflow.Graph, name string) *Workflow {
	out := &Workflow{
		Name:        name,
		Connections: map[string]Connections{},
		Settings:    map[string]any{},
		VersionID:   strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	idToName := make(map[string]string, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == workflow.NodeAnnotation {
			continue
		}
		uniqueName := nodeName(n, i)
		idToName[n.ID] = uniqueName
		out.Nodes = append(out.Nodes, mapNode(n, uniqueName))
	}

	for _, e := range g.Edges {
		from, ok := idToName[e.Source]
		if !ok {
			continue
		}
		to, ok := idToName[e.Target]
		if !ok {
			continue
		}
		conns, ok := out.Connections[from]
		if !ok {
			conns = Connections{Main: [][]Target{{}}}
		}
		conns.Main[0] = append(conns.Main[0], Target{Node: to, Type: "main", Index: 0})
		out.Connections[from] = conns
	}
	return out
}

// ExportN8N converts g and renders the import document as JSON.
func ExportN8N(g *workflow.Graph, name string) ([]byte, error) {
	data, err := json.MarshalIndent(Convert(g, name), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("nfexport: marshal %q: %w", name, err)
	}
	return data, nil
}

func nodeName(n *workflow.Node, index int) string {
	label := ""
	if l, ok := n.Data.(interface{ NodeLabel() string }); ok {
		label = l.NodeLabel()
	}
	if label == "" {
		label = strings.ReplaceAll(fmt.Sprintf("%s-%d", n.Type, index), " ", "_")
	}
	suffix := n.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return label + "-" + suffix
}

func mapNode(n *workflow.Node, name string) N8NNode {
	out := N8NNode{
		ID:       n.ID,
		Name:     name,
		Position: [2]float64{n.Position.X, n.Position.Y},
	}
	switch d := n.Data.(type) {
	case *workflow.TriggerManualData:
		out.Type = "n8n-nodes-base.manualTrigger"
		out.TypeVersion = 1
	case *workflow.ActionHTTPData:
		out.Type = "n8n-nodes-base.httpRequest"
		out.TypeVersion = 4
		method := d.Method
		if method == "" {
			method = "GET"
		}
		out.Parameters = map[string]any{
			"method":  method,
			"url":     d.URL,
			"options": map[string]any{},
		}
	case *workflow.ActionEmailData:
		out.Type = "n8n-nodes-base.emailSend"
		out.TypeVersion = 2
		out.Parameters = map[string]any{
			"to":      d.To,
			"subject": d.Subject,
			"text":    d.Body,
		}
	case *workflow.ActionSlackData:
		out.Type = "n8n-nodes-base.slack"
		out.TypeVersion = 2
		channel := d.Channel
		if channel == "" {
			channel = "#general"
		}
		out.Parameters = map[string]any{
			"channel": channel,
			"text":    d.Message,
		}
	case *workflow.ControlDelayData:
		out.Type = "n8n-nodes-base.wait"
		out.TypeVersion = 1
		out.Parameters = map[string]any{
			"amount": d.DelayMinutes + d.DelayHours*60,
			"unit":   "minutes",
		}
	default:
		out.Type = "n8n-nodes-base.noOp"
		out.TypeVersion = 1
		out.Parameters = map[string]any{}
	}
	return out
}
