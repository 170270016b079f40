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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/discovery"
	"trpc.group/trpc-go/trpc-flowgen-go/requirement"
)

// Canvas layout constants.
const (
	nodeWidth        = 280
	nodeHeight       = 200
	triggerHeight    = 120
	controlHeight    = 180
	annotationHeight = 120
	gapX             = 80
	gapY             = 120
)

// DefaultCron is the schedule used when a scheduled trigger is inferred
// but the user gave no expression: weekdays at 9am.
const DefaultCron = "0 9 * * 1-5"

const maxLabelChars = 50

// Options tune one synthesis call.
type Options struct {
	// Clarifications are the questions asked during decomposition, in
	// the order they were presented.
	Clarifications []requirement.Clarification
	// ClarificationValues holds the user's answers, keyed by
	// "<stepId>-<index>".
	ClarificationValues map[string]string
}

// Synthesize builds a workflow graph from resolved steps: a trigger
// node (inferred from the first step or manual), one node per step
// group with adjacent email sends and slack posts merged, clarification
// answers applied, nodes chained linearly, plus a disconnected
// annotation note. Any step list yields a valid graph.
func Synthesize(steps []discovery.Step, workflowName string, opts Options) (*Graph, error) {
	overrides := buildOverrides(opts.Clarifications, opts.ClarificationValues)

	g := &Graph{}
	prevID, startIndex := appendTrigger(g, steps)

	y := 0.0
	for _, group := range buildGroups(steps[startIndex:]) {
		node := buildGroupNode(group, overrides[group.steps[0].StepID])
		node.Position = Position{X: 0, Y: y + gapY}
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, Edge{
			ID:     uuid.NewString(),
			Source: prevID,
			Target: node.ID,
		})
		prevID = node.ID
		y += gapY + float64(node.Height)
	}

	g.Nodes = append(g.Nodes, Node{
		ID:       uuid.NewString(),
		Type:     NodeAnnotation,
		Position: Position{X: nodeWidth + gapX, Y: 40},
		Data: &AnnotationData{
			Text: fmt.Sprintf("**%s**\n\nGenerated from your description. Edit nodes to set credentials and parameters before running.", workflowName),
		},
		Width:  nodeWidth,
		Height: annotationHeight,
	})

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("synthesize %q: %w", workflowName, err)
	}
	return g, nil
}

var altTriggerRe = regexp.MustCompile(`(?i)webhook|schedule|daily|weekly|form submit|incoming`)

// appendTrigger adds the trigger node and returns its id plus the index
// of the first step that still needs its own node.
func appendTrigger(g *Graph, steps []discovery.Step) (string, int) {
	id := uuid.NewString()
	if len(steps) > 0 {
		first := steps[0]
		alt := first.SuggestedService == requirement.TagWebhook ||
			first.SuggestedService == requirement.TagSchedule ||
			altTriggerRe.MatchString(first.Description)
		if alt {
			triggerType := inferNodeType(first, true)
			g.Nodes = append(g.Nodes, Node{
				ID:     id,
				Type:   triggerType,
				Data:   withLabel(dataFor(triggerType, first), shortLabel(first.Description)),
				Width:  nodeWidth,
				Height: triggerHeight,
			})
			return id, 1
		}
	}
	g.Nodes = append(g.Nodes, Node{
		ID:     id,
		Type:   NodeTriggerManual,
		Data:   &TriggerManualData{},
		Width:  nodeWidth,
		Height: triggerHeight,
	})
	return id, 0
}

// inferNodeType maps a resolved step to a node type. Rules run in
// priority order; the first match wins. Trigger kinds are only
// considered for the first step.
func inferNodeType(step discovery.Step, isFirst bool) NodeType {
	desc := strings.ToLower(step.Description)
	svc := strings.ToLower(step.SuggestedService)
	opID := ""
	if step.Operation != nil {
		opID = step.Operation.ID
	}

	if isFirst {
		if svc == requirement.TagWebhook || strings.Contains(desc, "webhook") ||
			strings.Contains(desc, "form submit") || strings.Contains(desc, "incoming") {
			return NodeTriggerWebhook
		}
		if svc == requirement.TagSchedule || strings.Contains(desc, "schedule") ||
			strings.Contains(desc, "daily") || strings.Contains(desc, "weekly") ||
			strings.Contains(desc, "cron") {
			return NodeTriggerSchedule
		}
	}

	switch {
	case strings.Contains(opID, "sendgrid") || strings.Contains(opID, "gmail"):
		return NodeActionEmail
	case strings.Contains(opID, "slack"):
		return NodeActionSlack
	case svc == requirement.TagDocument || strings.Contains(desc, "document") ||
		strings.Contains(desc, "pdf") || strings.Contains(desc, "extract"):
		return NodeActionDocument
	case svc == requirement.TagCondition || strings.Contains(desc, " if ") ||
		strings.Contains(desc, "branch") || strings.Contains(desc, "else"):
		return NodeControlCondition
	case svc == requirement.TagTransform || strings.Contains(desc, "map ") ||
		strings.Contains(desc, "transform") || strings.Contains(desc, "reshape"):
		return NodeDataTransform
	case strings.Contains(desc, "approval") || strings.Contains(desc, "approve"):
		return NodeControlApproval
	case strings.Contains(desc, "delay") || strings.Contains(desc, "wait") ||
		strings.Contains(desc, "later"):
		return NodeControlDelay
	case step.ServiceID == catalog.ServiceHTTP || svc == requirement.TagHTTP:
		return NodeActionHTTP
	case svc == requirement.TagEmail:
		return NodeActionEmail
	case svc == requirement.TagSlack:
		return NodeActionSlack
	case svc == requirement.TagApproval:
		return NodeControlApproval
	case svc == requirement.TagDelay:
		return NodeControlDelay
	default:
		return NodeActionHTTP
	}
}

// dataFor builds the default payload for one step as the given type.
func dataFor(t NodeType, step discovery.Step) NodeData {
	desc := step.Description
	pm := step.ParamMapping
	opID := ""
	if step.Operation != nil {
		opID = step.Operation.ID
	}

	switch t {
	case NodeTriggerWebhook:
		return &TriggerWebhookData{Path: "/webhook", Method: "POST"}
	case NodeTriggerSchedule:
		d := desc
		if d == "" {
			d = "Weekday 9am"
		}
		return &TriggerScheduleData{Cron: DefaultCron, Description: d}
	case NodeActionEmail:
		return emailDataFor(opID, pm, desc)
	case NodeActionSlack:
		return slackDataFor(opID, pm, desc)
	case NodeActionDocument:
		return &ActionDocumentData{Format: "pdf"}
	case NodeControlCondition:
		return &ControlConditionData{Condition: desc, LeftOperand: "{{value}}", Operator: "eq"}
	case NodeDataTransform:
		return &DataTransformData{OutputKey: "payload"}
	case NodeControlApproval:
		return &ControlApprovalData{Title: "Approve", Description: desc}
	case NodeControlDelay:
		return &ControlDelayData{DelayHours: 24}
	default:
		return httpDataFor(step)
	}
}

func emailDataFor(opID string, pm map[string]string, desc string) *ActionEmailData {
	switch opID {
	case catalog.OpGmailList:
		return &ActionEmailData{
			Operation:  EmailOpList,
			Service:    "Gmail",
			Query:      mappingOr(pm, "query", "is:unread"),
			MaxResults: mappingInt(pm, "maxResults", 50),
		}
	case catalog.OpGmailGet:
		return &ActionEmailData{
			Operation: EmailOpGet,
			Service:   "Gmail",
			MessageID: mappingOr(pm, "id", "{{messageId}}"),
		}
	}
	service := "SendGrid"
	if strings.Contains(opID, "gmail") {
		service = "Gmail"
	}
	return &ActionEmailData{
		Operation: EmailOpSend,
		Service:   service,
		To:        mappingOr(pm, "to", "{{to}}"),
		Subject:   mappingOr(pm, "subject", "Notification"),
		Body:      mappingOr(pm, "body", desc),
	}
}

func slackDataFor(opID string, pm map[string]string, desc string) *ActionSlackData {
	switch opID {
	case catalog.OpSlackInvite:
		return &ActionSlackData{
			Operation: SlackOpInviteUser,
			Email:     mappingOr(pm, "email", "{{email}}"),
		}
	case catalog.OpSlackCreateChannel:
		return &ActionSlackData{
			Operation:   SlackOpCreateChannel,
			ChannelName: mappingOr(pm, "name", "{{channelName}}"),
		}
	case catalog.OpSlackInviteToChannel:
		return &ActionSlackData{
			Operation: SlackOpInviteToChannel,
			Channel:   mappingOr(pm, "channel", "{{channel}}"),
			Users:     mappingOr(pm, "users", "{{users}}"),
		}
	case catalog.OpSlackChannelHistory:
		return &ActionSlackData{
			Operation: SlackOpChannelHistory,
			Channel:   mappingOr(pm, "channel", "{{channel}}"),
			Limit:     mappingInt(pm, "limit", 10),
		}
	case catalog.OpSlackListChannels:
		return &ActionSlackData{
			Operation: SlackOpListChannels,
			Limit:     mappingInt(pm, "limit", 50),
		}
	case catalog.OpSlackReaction:
		return &ActionSlackData{
			Operation:    SlackOpReaction,
			Channel:      mappingOr(pm, "channel", "{{channel}}"),
			Timestamp:    mappingOr(pm, "timestamp", "{{timestamp}}"),
			ReactionName: mappingOr(pm, "name", "thumbsup"),
		}
	}
	return &ActionSlackData{
		Operation: SlackOpPostMessage,
		Channel:   mappingOr(pm, "channel", "#general"),
		Message:   mappingOr(pm, "text", desc),
	}
}

func httpDataFor(step discovery.Step) *ActionHTTPData {
	data := &ActionHTTPData{
		Method:           "POST",
		URL:              "https://api.example.com/action",
		BodyType:         "json",
		CatalogServiceID: step.ServiceID,
	}
	if step.Operation != nil {
		if step.Operation.Method != "" {
			data.Method = step.Operation.Method
		}
		if step.Operation.URLTemplate != "" {
			data.URL = step.Operation.URLTemplate
		}
		data.CatalogOperationID = step.Operation.ID
	}
	if len(step.ParamMapping) > 0 {
		data.CatalogParamValues = make(map[string]string, len(step.ParamMapping))
		for k, v := range step.ParamMapping {
			data.CatalogParamValues[k] = v
		}
	}
	return data
}

func mappingOr(pm map[string]string, key, fallback string) string {
	if v, ok := pm[key]; ok && v != "" {
		return v
	}
	return fallback
}

func mappingInt(pm map[string]string, key string, fallback int) int {
	if v, ok := pm[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// stepGroup is a run of adjacent steps synthesized into one node.
type stepGroup struct {
	nodeType NodeType
	steps    []discovery.Step
}

// mergeableEmailSend reports whether the step is an email send that can
// join a merged node. List and get operations keep their own node.
func mergeableEmailSend(step discovery.Step, t NodeType) bool {
	if t != NodeActionEmail {
		return false
	}
	if step.Operation == nil {
		return true
	}
	return step.Operation.ID != catalog.OpGmailList && step.Operation.ID != catalog.OpGmailGet
}

// mergeableSlackPost reports whether the step is a plain message post.
func mergeableSlackPost(step discovery.Step, t NodeType) bool {
	if t != NodeActionSlack {
		return false
	}
	if step.Operation == nil {
		return true
	}
	switch step.Operation.ID {
	case catalog.OpSlackInvite, catalog.OpSlackCreateChannel, catalog.OpSlackInviteToChannel,
		catalog.OpSlackChannelHistory, catalog.OpSlackListChannels, catalog.OpSlackReaction:
		return false
	}
	return true
}

// buildGroups merges runs of adjacent email sends and slack posts into
// single groups; every other step stands alone.
func buildGroups(steps []discovery.Step) []stepGroup {
	var groups []stepGroup
	for i := 0; i < len(steps); {
		step := steps[i]
		t := inferNodeType(step, false)
		var mergeable func(discovery.Step, NodeType) bool
		switch {
		case mergeableEmailSend(step, t):
			mergeable = mergeableEmailSend
		case mergeableSlackPost(step, t):
			mergeable = mergeableSlackPost
		default:
			groups = append(groups, stepGroup{nodeType: t, steps: []discovery.Step{step}})
			i++
			continue
		}
		group := stepGroup{nodeType: t, steps: []discovery.Step{step}}
		i++
		for i < len(steps) && mergeable(steps[i], inferNodeType(steps[i], false)) {
			group.steps = append(group.steps, steps[i])
			i++
		}
		groups = append(groups, group)
	}
	return groups
}

// buildGroupNode synthesizes one node from a step group and applies the
// clarification overrides for the group's first step.
func buildGroupNode(group stepGroup, overrides map[string]string) Node {
	step := group.steps[0]
	t := group.nodeType

	var data NodeData
	switch {
	case len(group.steps) == 1:
		data = withLabel(dataFor(t, step), shortLabel(step.Description))
	case t == NodeActionEmail:
		first := dataFor(t, step).(*ActionEmailData)
		merged := &ActionEmailData{Operation: EmailOpSend, Service: first.Service}
		for _, s := range group.steps {
			merged.Items = append(merged.Items, EmailItem{
				Label:   shortLabel(s.Description),
				To:      "{{to}}",
				Subject: "Notification",
				Body:    s.Description,
			})
		}
		merged.Label = fmt.Sprintf("%d emails", len(group.steps))
		data = merged
	default: // merged slack posts
		merged := &ActionSlackData{Operation: SlackOpPostMessage}
		for _, s := range group.steps {
			merged.Items = append(merged.Items, SlackItem{
				Label:   shortLabel(s.Description),
				Channel: "#general",
				Message: s.Description,
			})
		}
		merged.Label = fmt.Sprintf("%d messages", len(group.steps))
		data = merged
	}

	data = applyOverrides(data, overrides)
	data = withReason(data, stepReason(step))

	height := nodeHeight
	if strings.HasPrefix(string(t), "control-") {
		height = controlHeight
	}
	return Node{
		ID:     uuid.NewString(),
		Type:   t,
		Data:   data,
		Width:  nodeWidth,
		Height: height,
	}
}

func stepReason(step discovery.Step) string {
	if step.Reason != "" {
		return step.Reason
	}
	return shortLabel(step.Description)
}

func shortLabel(text string) string {
	r := []rune(text)
	if len(r) <= maxLabelChars {
		return text
	}
	return string(r[:maxLabelChars-3]) + "..."
}
