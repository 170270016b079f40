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
	"context"
	"time"
)

// ComputeInput is the output of one upstream node, offered to a node
// when it runs.
type ComputeInput struct {
	// NodeID identifies the upstream node.
	NodeID string
	// Output is the upstream node's result payload.
	Output any
}

// ComputeFunc executes one node. Executors register one per node type.
// Implementations must honor ctx cancellation and return the node's
// output payload; execution itself is out of scope for this module.
type ComputeFunc func(ctx context.Context, inputs []ComputeInput, node *Node) (any, error)

// HTTP action retry policy executors are expected to apply: a failed
// request is retried up to MaxHTTPRetries times with HTTPRetryDelay
// between attempts.
const (
	MaxHTTPRetries = 2
	HTTPRetryDelay = 500 * time.Millisecond
)
