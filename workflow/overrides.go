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
	"regexp"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/requirement"
)

func withLabel(data NodeData, label string) NodeData {
	if s, ok := data.(interface{ setLabel(string) }); ok {
		s.setLabel(label)
	}
	return data
}

func withReason(data NodeData, reason string) NodeData {
	if s, ok := data.(interface{ setReason(string) }); ok {
		s.setReason(reason)
	}
	return data
}

// inferFieldFromQuestion guesses the target field from the question
// text when the decomposer omitted one.
func inferFieldFromQuestion(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "subject"):
		return "subject"
	case strings.Contains(q, "body") || strings.Contains(q, "content"):
		return "body"
	case strings.Contains(q, "who receive") || strings.Contains(q, "recipient") ||
		strings.Contains(q, "to whom"):
		return "to"
	case strings.Contains(q, "delay") || strings.Contains(q, "how long") ||
		strings.Contains(q, "wait"):
		return "delayHours"
	case strings.Contains(q, "channel"):
		return "channel"
	case strings.Contains(q, "message") || strings.Contains(q, "what to post"):
		return "message"
	default:
		return ""
	}
}

// buildOverrides groups answered clarifications by step id, keyed by
// the target field (explicit or inferred from the question).
func buildOverrides(clarifications []requirement.Clarification,
	values map[string]string) map[string]map[string]string {
	byStep := make(map[string]map[string]string)
	if len(clarifications) == 0 || len(values) == 0 {
		return byStep
	}
	for i, c := range clarifications {
		value := strings.TrimSpace(values[c.StepID+"-"+strconv.Itoa(i)])
		if value == "" {
			continue
		}
		field := c.TargetField
		if field == "" {
			field = inferFieldFromQuestion(c.Question)
		}
		if field == "" {
			continue
		}
		row := byStep[c.StepID]
		if row == nil {
			row = make(map[string]string)
			byStep[c.StepID] = row
		}
		row[field] = value
	}
	return byStep
}

var delayRe = regexp.MustCompile(`(?i)(\d+)\s*(days?|hours?|min|minutes?)?`)

// parseDelay reads a free-form delay answer like "3 days", "2 hours" or
// "45 min". A bare number means hours.
func parseDelay(v string) (hours, minutes *int) {
	match := delayRe.FindStringSubmatch(strings.TrimSpace(v))
	if match == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n, nil
		}
		return nil, nil
	}
	n, _ := strconv.Atoi(match[1])
	unit := strings.ToLower(match[2])
	switch {
	case strings.HasPrefix(unit, "d"):
		n *= 24
		return &n, nil
	case strings.HasPrefix(unit, "h"):
		return &n, nil
	case strings.HasPrefix(unit, "m"):
		return nil, &n
	default:
		return &n, nil
	}
}

// reservedOverrideFields are handled by the typed branches and never
// leak into the http parameter bag.
var reservedOverrideFields = map[string]bool{
	"to": true, "subject": true, "body": true, "channel": true,
	"message": true, "delayHours": true, "delayMinutes": true, "delay": true,
}

// applyOverrides writes clarification answers into the payload fields
// they target. Unknown node kinds are left untouched.
func applyOverrides(data NodeData, overrides map[string]string) NodeData {
	if len(overrides) == 0 {
		return data
	}
	switch d := data.(type) {
	case *ActionEmailData:
		applyEmailOverrides(d, overrides)
	case *ActionSlackData:
		applySlackOverrides(d, overrides)
	case *ControlDelayData:
		applyDelayOverrides(d, overrides)
	case *ActionHTTPData:
		if d.CatalogParamValues != nil {
			for k, v := range overrides {
				if !reservedOverrideFields[k] {
					d.CatalogParamValues[k] = v
				}
			}
		}
	}
	return data
}

func applyEmailOverrides(d *ActionEmailData, overrides map[string]string) {
	if v, ok := overrides["to"]; ok {
		d.To = v
		if len(d.Items) > 0 {
			d.Items[0].To = v
		}
	}
	if v, ok := overrides["subject"]; ok {
		d.Subject = v
		if len(d.Items) > 0 {
			d.Items[0].Subject = v
		}
	}
	if v, ok := overrides["body"]; ok {
		d.Body = v
		if len(d.Items) > 0 {
			d.Items[0].Body = v
		}
	}
}

func applySlackOverrides(d *ActionSlackData, overrides map[string]string) {
	if v, ok := overrides["channel"]; ok {
		d.Channel = v
		if len(d.Items) > 0 {
			d.Items[0].Channel = v
		}
	}
	if v, ok := overrides["message"]; ok {
		d.Message = v
		if len(d.Items) > 0 {
			d.Items[0].Message = v
		}
	}
}

func applyDelayOverrides(d *ControlDelayData, overrides map[string]string) {
	hoursAnswer, hasHours := overrides["delayHours"]
	minutesAnswer, hasMinutes := overrides["delayMinutes"]
	if hasHours {
		hours, minutes := parseDelay(hoursAnswer)
		if hours != nil {
			d.DelayHours = *hours
		}
		if minutes != nil {
			d.DelayMinutes = *minutes
		}
	}
	if hasMinutes {
		if n, err := strconv.Atoi(minutesAnswer); err == nil {
			d.DelayMinutes = n
		}
	}
	if hasHours || hasMinutes {
		return
	}
	answer, ok := overrides["delay"]
	if !ok {
		answer, ok = overrides["how long"]
	}
	if !ok {
		return
	}
	hours, minutes := parseDelay(answer)
	if hours != nil {
		d.DelayHours = *hours
	}
	if minutes != nil {
		d.DelayMinutes = *minutes
	}
}
