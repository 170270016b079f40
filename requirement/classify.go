//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package requirement

import (
	"fmt"
	"strings"
)

// ClassifyProviderError turns a provider API error message into a
// readable diagnosis, distinguishing quota/rate-limit and billing
// problems from generic failures.
func ClassifyProviderError(errMsg string) string {
	lower := strings.ToLower(errMsg)
	switch {
	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate-limit"):
		return fmt.Sprintf(
			"Rate limit or quota exceeded: %s\n\nCheck your provider's usage or billing page, wait for the quota to reset, or switch to another provider.",
			errMsg)
	case strings.Contains(lower, "billing") || strings.Contains(lower, "payment"):
		return fmt.Sprintf(
			"%s\n\nCheck your provider's billing or plan page and add a payment method if required.",
			errMsg)
	default:
		return fmt.Sprintf("Request failed: %s. Check your API key and model.", errMsg)
	}
}
