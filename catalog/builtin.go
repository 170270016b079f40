//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package catalog

// Builtin service and operation ids referenced by the synthesizer.
const (
	ServiceSendGrid = "sendgrid"
	ServiceGmail    = "gmail"
	ServiceSlack    = "slack"
	ServiceHTTP     = "http"

	OpSendGridSend         = "sendgrid-send"
	OpGmailSend            = "gmail-send"
	OpGmailList            = "gmail-list"
	OpGmailGet             = "gmail-get"
	OpSlackPostMessage     = "slack-post-message"
	OpSlackInvite          = "slack-invite"
	OpSlackCreateChannel   = "slack-create-channel"
	OpSlackInviteToChannel = "slack-invite-to-channel"
	OpSlackChannelHistory  = "slack-channel-history"
	OpSlackListChannels    = "slack-list-channels"
	OpSlackReaction        = "slack-reaction"
	OpHTTPCustom           = "http-custom"
)

// Builtin returns the static catalog. The slice is freshly allocated on
// every call so callers may reorder or extend it without affecting others.
func Builtin() []Service {
	return []Service{
		{
			ID:            ServiceSendGrid,
			Name:          "SendGrid",
			Description:   "Transactional email delivery",
			AuthType:      "apiKey",
			ConnectionKey: "sendgrid",
			Operations: []Operation{
				{
					ID:            OpSendGridSend,
					Name:          "Send email",
					Description:   "Send a transactional email via SendGrid",
					Method:        "POST",
					URLTemplate:   "https://api.sendgrid.com/v3/mail/send",
					ConnectionKey: "sendgrid",
					Params: []Param{
						{Key: "to", Required: true, Description: "Recipient email address"},
						{Key: "subject", Required: true, Description: "Email subject"},
						{Key: "body", Required: true, Description: "Email body"},
					},
					IntentKeywords: []string{"send", "email", "mail", "welcome", "notify", "notification", "newsletter"},
				},
			},
		},
		{
			ID:            ServiceGmail,
			Name:          "Gmail",
			Description:   "Read and send mail in a Gmail inbox",
			AuthType:      "oauth",
			ConnectionKey: "gmail",
			Operations: []Operation{
				{
					ID:            OpGmailSend,
					Name:          "Send Gmail message",
					Description:   "Send an email from the connected Gmail account",
					Method:        "POST",
					URLTemplate:   "https://gmail.googleapis.com/gmail/v1/users/me/messages/send",
					ConnectionKey: "gmail",
					Params: []Param{
						{Key: "to", Required: true, Description: "Recipient email address"},
						{Key: "subject", Required: true, Description: "Email subject"},
						{Key: "body", Required: true, Description: "Email body"},
					},
					IntentKeywords: []string{"send", "email", "gmail", "mail", "reply"},
				},
				{
					ID:            OpGmailList,
					Name:          "List Gmail messages",
					Description:   "List messages in the connected Gmail inbox",
					Method:        "GET",
					URLTemplate:   "https://gmail.googleapis.com/gmail/v1/users/me/messages",
					ConnectionKey: "gmail",
					Params: []Param{
						{Key: "query", Required: false, Description: "Gmail search query, e.g. is:unread"},
						{Key: "maxResults", Required: false, Description: "Maximum number of messages"},
					},
					IntentKeywords: []string{"list", "emails", "gmail", "inbox", "unread", "fetch", "read"},
				},
				{
					ID:            OpGmailGet,
					Name:          "Get Gmail message",
					Description:   "Fetch one message by id from the connected Gmail inbox",
					Method:        "GET",
					URLTemplate:   "https://gmail.googleapis.com/gmail/v1/users/me/messages/{id}",
					ConnectionKey: "gmail",
					Params: []Param{
						{Key: "id", Required: true, Description: "Message id"},
					},
					IntentKeywords: []string{"get", "email", "gmail", "message", "content"},
				},
			},
		},
		{
			ID:            ServiceSlack,
			Name:          "Slack",
			Description:   "Post messages and manage channels in a Slack workspace",
			AuthType:      "oauth",
			ConnectionKey: "slack",
			Operations: []Operation{
				{
					ID:            OpSlackPostMessage,
					Name:          "Post message",
					Description:   "Post a message to a Slack channel",
					Method:        "POST",
					URLTemplate:   "https://slack.com/api/chat.postMessage",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "channel", Required: true, Description: "Channel name or id"},
						{Key: "text", Required: true, Description: "Message text"},
					},
					IntentKeywords: []string{"slack", "post", "message", "notify", "announce", "channel"},
				},
				{
					ID:            OpSlackInvite,
					Name:          "Invite user",
					Description:   "Invite a user to the Slack workspace",
					Method:        "POST",
					URLTemplate:   "https://slack.com/api/admin.users.invite",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "email", Required: true, Description: "Email of the user to invite"},
					},
					IntentKeywords: []string{"slack", "invite", "add", "user", "workspace", "member"},
				},
				{
					ID:            OpSlackCreateChannel,
					Name:          "Create channel",
					Description:   "Create a new Slack channel",
					Method:        "POST",
					URLTemplate:   "https://slack.com/api/conversations.create",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "name", Required: true, Description: "Channel name"},
					},
					IntentKeywords: []string{"slack", "create", "channel", "new"},
				},
				{
					ID:            OpSlackInviteToChannel,
					Name:          "Invite to channel",
					Description:   "Invite users to a Slack channel",
					Method:        "POST",
					URLTemplate:   "https://slack.com/api/conversations.invite",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "channel", Required: true, Description: "Channel name or id"},
						{Key: "users", Required: true, Description: "Comma-separated user ids"},
					},
					IntentKeywords: []string{"slack", "invite", "channel", "add", "users"},
				},
				{
					ID:            OpSlackChannelHistory,
					Name:          "Channel history",
					Description:   "Fetch recent messages from a Slack channel",
					Method:        "GET",
					URLTemplate:   "https://slack.com/api/conversations.history",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "channel", Required: true, Description: "Channel name or id"},
						{Key: "limit", Required: false, Description: "Number of messages"},
					},
					IntentKeywords: []string{"slack", "history", "messages", "read", "fetch", "channel"},
				},
				{
					ID:            OpSlackListChannels,
					Name:          "List channels",
					Description:   "List channels in the Slack workspace",
					Method:        "GET",
					URLTemplate:   "https://slack.com/api/conversations.list",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "limit", Required: false, Description: "Number of channels"},
					},
					IntentKeywords: []string{"slack", "list", "channels"},
				},
				{
					ID:            OpSlackReaction,
					Name:          "Add reaction",
					Description:   "Add an emoji reaction to a Slack message",
					Method:        "POST",
					URLTemplate:   "https://slack.com/api/reactions.add",
					ConnectionKey: "slack",
					Params: []Param{
						{Key: "channel", Required: true, Description: "Channel name or id"},
						{Key: "timestamp", Required: true, Description: "Message timestamp"},
						{Key: "name", Required: false, Description: "Reaction name, e.g. thumbsup"},
					},
					IntentKeywords: []string{"slack", "reaction", "react", "emoji"},
				},
			},
		},
		{
			ID:          ServiceHTTP,
			Name:        "HTTP",
			Description: "Generic HTTP calls to any API",
			AuthType:    "none",
			Operations: []Operation{
				{
					ID:          OpHTTPCustom,
					Name:        "Custom call",
					Description: "Call an arbitrary HTTP endpoint",
					Method:      "POST",
					URLTemplate: "https://api.example.com/action",
					Params:      nil,
					IntentKeywords: []string{
						"http", "api", "call", "request", "endpoint", "post", "webhook",
					},
				},
			},
		},
	}
}

// CustomCallOperation returns the generic custom-call placeholder that
// unmatched steps fall back to.
func CustomCallOperation() *Operation {
	builtin := Builtin()
	op, _ := FindOperation(builtin, OpHTTPCustom)
	return op
}
