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

	"github.com/robfig/cron/v3"
)

// NodeData is the per-kind payload of a node. Implementations are plain
// structs; Validate reports the first problem as a *ValidationError.
type NodeData interface {
	Type() NodeType
	Validate() error
}

// ValidationError describes one invalid field on a node.
type ValidationError struct {
	NodeID  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("workflow: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("workflow: node %s: %s: %s", e.NodeID, e.Field, e.Message)
}

// Base carries the fields shared by all node payloads.
type Base struct {
	// Label is the short display label.
	Label string `json:"label,omitempty"`
	// Reason explains why the node is in the workflow.
	Reason string `json:"reason,omitempty"`
}

func (b *Base) setLabel(label string)   { b.Label = label }
func (b *Base) setReason(reason string) { b.Reason = reason }

// NodeLabel returns the display label.
func (b *Base) NodeLabel() string { return b.Label }

// TriggerManualData starts a run by hand, optionally seeded with a list
// or a saved dataset.
type TriggerManualData struct {
	Base
	ListInput string `json:"listInput,omitempty"`
	DatasetID string `json:"datasetId,omitempty"`
}

func (TriggerManualData) Type() NodeType { return NodeTriggerManual }

func (TriggerManualData) Validate() error { return nil }

// TriggerWebhookData starts a run on an incoming HTTP call.
type TriggerWebhookData struct {
	Base
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
}

func (TriggerWebhookData) Type() NodeType { return NodeTriggerWebhook }

func (d TriggerWebhookData) Validate() error {
	switch d.Method {
	case "", "POST", "GET":
		return nil
	}
	return &ValidationError{Field: "method", Message: "must be POST or GET, got " + d.Method}
}

// TriggerScheduleData starts runs on a cron schedule.
type TriggerScheduleData struct {
	Base
	Cron        string `json:"cron,omitempty"`
	Description string `json:"description,omitempty"`
}

func (TriggerScheduleData) Type() NodeType { return NodeTriggerSchedule }

func (d TriggerScheduleData) Validate() error {
	if d.Cron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(d.Cron); err != nil {
		return &ValidationError{Field: "cron", Message: err.Error()}
	}
	return nil
}

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// ActionHTTPData calls an HTTP endpoint, optionally bound to a catalog
// operation with per-parameter values.
type ActionHTTPData struct {
	Base
	Method             string            `json:"method,omitempty"`
	URL                string            `json:"url,omitempty"`
	Headers            map[string]string `json:"headers,omitempty"`
	Body               string            `json:"body,omitempty"`
	BodyType           string            `json:"bodyType,omitempty"`
	CatalogServiceID   string            `json:"catalogServiceId,omitempty"`
	CatalogOperationID string            `json:"catalogOperationId,omitempty"`
	CatalogParamValues map[string]string `json:"catalogParamValues,omitempty"`
}

func (ActionHTTPData) Type() NodeType { return NodeActionHTTP }

func (d ActionHTTPData) Validate() error {
	if d.Method != "" && !httpMethods[d.Method] {
		return &ValidationError{Field: "method", Message: "unknown HTTP method " + d.Method}
	}
	switch d.BodyType {
	case "", "json", "raw":
	default:
		return &ValidationError{Field: "bodyType", Message: "must be json or raw, got " + d.BodyType}
	}
	return nil
}

// EmailItem is one email in a merged send node.
type EmailItem struct {
	Label   string `json:"label,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Email operations.
const (
	EmailOpSend = "send"
	EmailOpList = "list"
	EmailOpGet  = "get"
)

// ActionEmailData sends, lists or fetches email.
type ActionEmailData struct {
	Base
	Operation string `json:"operation,omitempty"`
	Service   string `json:"service,omitempty"`
	// Send fields; Items holds additional sends merged into this node.
	To      string      `json:"to,omitempty"`
	Subject string      `json:"subject,omitempty"`
	Body    string      `json:"body,omitempty"`
	Items   []EmailItem `json:"items,omitempty"`
	// List fields.
	Query      string `json:"query,omitempty"`
	MaxResults int    `json:"maxResults,omitempty"`
	// Get field.
	MessageID string `json:"messageId,omitempty"`
}

func (ActionEmailData) Type() NodeType { return NodeActionEmail }

func (d ActionEmailData) Validate() error {
	switch d.Operation {
	case "", EmailOpSend, EmailOpList, EmailOpGet:
		return nil
	}
	return &ValidationError{Field: "operation", Message: "unknown email operation " + d.Operation}
}

// SlackItem is one message in a merged post node.
type SlackItem struct {
	Label   string `json:"label,omitempty"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// Slack operations.
const (
	SlackOpPostMessage     = "post_message"
	SlackOpInviteUser      = "invite_user"
	SlackOpCreateChannel   = "create_channel"
	SlackOpInviteToChannel = "invite_to_channel"
	SlackOpChannelHistory  = "channel_history"
	SlackOpListChannels    = "list_channels"
	SlackOpReaction        = "reaction"
)

var slackOps = map[string]bool{
	SlackOpPostMessage: true, SlackOpInviteUser: true, SlackOpCreateChannel: true,
	SlackOpInviteToChannel: true, SlackOpChannelHistory: true,
	SlackOpListChannels: true, SlackOpReaction: true,
}

// ActionSlackData performs one Slack workspace operation.
type ActionSlackData struct {
	Base
	Operation string `json:"operation,omitempty"`
	// post_message fields; Items holds additional posts merged into this node.
	Channel string      `json:"channel,omitempty"`
	Message string      `json:"message,omitempty"`
	Items   []SlackItem `json:"items,omitempty"`
	// invite_user field.
	Email string `json:"email,omitempty"`
	// create_channel fields.
	ChannelName string `json:"channelName,omitempty"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
	// invite_to_channel field.
	Users string `json:"users,omitempty"`
	// channel_history / list_channels field.
	Limit int `json:"limit,omitempty"`
	// reaction fields.
	Timestamp    string `json:"timestamp,omitempty"`
	ReactionName string `json:"reactionName,omitempty"`
}

func (ActionSlackData) Type() NodeType { return NodeActionSlack }

func (d ActionSlackData) Validate() error {
	if d.Operation != "" && !slackOps[d.Operation] {
		return &ValidationError{Field: "operation", Message: "unknown slack operation " + d.Operation}
	}
	return nil
}

// ActionDocumentData generates or parses a document.
type ActionDocumentData struct {
	Base
	Format        string `json:"format,omitempty"`
	ExtractFields string `json:"extractFields,omitempty"`
}

func (ActionDocumentData) Type() NodeType { return NodeActionDocument }

func (d ActionDocumentData) Validate() error {
	switch d.Format {
	case "", "pdf", "html", "text":
		return nil
	}
	return &ValidationError{Field: "format", Message: "must be pdf, html or text, got " + d.Format}
}

// ControlDelayData pauses the run.
type ControlDelayData struct {
	Base
	DelayMinutes int `json:"delayMinutes"`
	DelayHours   int `json:"delayHours"`
}

func (ControlDelayData) Type() NodeType { return NodeControlDelay }

func (d ControlDelayData) Validate() error {
	if d.DelayMinutes < 0 {
		return &ValidationError{Field: "delayMinutes", Message: "must not be negative"}
	}
	if d.DelayHours < 0 {
		return &ValidationError{Field: "delayHours", Message: "must not be negative"}
	}
	return nil
}

var conditionOperators = map[string]bool{
	"eq": true, "neq": true, "contains": true, "gt": true, "lt": true,
}

// ControlConditionData branches the run on a comparison.
type ControlConditionData struct {
	Base
	Condition    string `json:"condition,omitempty"`
	LeftOperand  string `json:"leftOperand,omitempty"`
	Operator     string `json:"operator,omitempty"`
	RightOperand string `json:"rightOperand,omitempty"`
}

func (ControlConditionData) Type() NodeType { return NodeControlCondition }

func (d ControlConditionData) Validate() error {
	if d.Operator != "" && !conditionOperators[d.Operator] {
		return &ValidationError{Field: "operator", Message: "unknown operator " + d.Operator}
	}
	return nil
}

// ControlApprovalData pauses until a person approves.
type ControlApprovalData struct {
	Base
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Approved    bool   `json:"approved,omitempty"`
	ApprovedBy  string `json:"approvedBy,omitempty"`
}

func (ControlApprovalData) Type() NodeType { return NodeControlApproval }

func (ControlApprovalData) Validate() error { return nil }

// DataTransformData reshapes the payload between steps.
type DataTransformData struct {
	Base
	Mapping   string `json:"mapping,omitempty"`
	OutputKey string `json:"outputKey,omitempty"`
}

func (DataTransformData) Type() NodeType { return NodeDataTransform }

func (DataTransformData) Validate() error { return nil }

// AnnotationData is a free-floating markdown note; it takes no part in
// execution.
type AnnotationData struct {
	Base
	Text string `json:"text,omitempty"`
}

func (AnnotationData) Type() NodeType { return NodeAnnotation }

func (AnnotationData) Validate() error { return nil }
