// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
)

// DispatchMethodUnary is the DispatchInfo.MethodType for unary calls.
const DispatchMethodUnary = "unary"

// DispatchHook provides observability callpoints around RPC dispatch.
// Implementations must be safe for concurrent use (HTTP transport is concurrent).
type DispatchHook interface {
	OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken)
	OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats *CallStatistics, err error)
}

// HookToken is an opaque value returned by OnDispatchStart and passed back to
// OnDispatchEnd. Only meaningful to the DispatchHook that created it.
type HookToken interface{}

// DispatchInfo carries method metadata passed to hooks.
type DispatchInfo struct {
	Method            string            // RPC method name
	MethodType        string            // always DispatchMethodUnary
	ServerID          string            // Server identifier
	RequestID         string            // Client-supplied request identifier
	TransportMetadata map[string]string // Transport-level metadata (IPC custom metadata or HTTP headers)
}

// CallStatistics holds per-call I/O counters.
type CallStatistics struct {
	InputBatches  int64
	OutputBatches int64
	InputRows     int64
	OutputRows    int64
	InputBytes    int64
	OutputBytes   int64
}

// RecordInput records one input batch with the given row count and buffer size.
func (s *CallStatistics) RecordInput(numRows, bufferBytes int64) {
	s.InputBatches++
	s.InputRows += numRows
	s.InputBytes += bufferBytes
}

// RecordOutput records one output batch with the given row count and buffer size.
func (s *CallStatistics) RecordOutput(numRows, bufferBytes int64) {
	s.OutputBatches++
	s.OutputRows += numRows
	s.OutputBytes += bufferBytes
}

// MultiHook fans dispatch callbacks out to several hooks in order.
// OnDispatchEnd runs in reverse order so hooks nest like middleware.
type MultiHook []DispatchHook

type multiToken []HookToken

// OnDispatchStart starts every hook, threading the context through each.
func (m MultiHook) OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken) {
	tokens := make(multiToken, len(m))
	for i, h := range m {
		hookCtx, token := h.OnDispatchStart(ctx, info)
		if hookCtx != nil {
			ctx = hookCtx
		}
		tokens[i] = token
	}
	return ctx, tokens
}

// OnDispatchEnd ends every hook with the token it produced.
func (m MultiHook) OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats *CallStatistics, err error) {
	tokens, _ := token.(multiToken)
	for i := len(m) - 1; i >= 0; i-- {
		var t HookToken
		if i < len(tokens) {
			t = tokens[i]
		}
		m[i].OnDispatchEnd(ctx, t, info, stats, err)
	}
}

// startHook runs OnDispatchStart and recovers from a panicking hook.
func startHook(ctx context.Context, hook DispatchHook, info DispatchInfo) (context.Context, HookToken, bool) {
	if hook == nil {
		return ctx, nil, false
	}
	var token HookToken
	active := false
	func() {
		defer func() {
			if rv := recover(); rv != nil {
				slog.Error("dispatch hook start panic", "err", rv)
			}
		}()
		var hookCtx context.Context
		hookCtx, token = hook.OnDispatchStart(ctx, info)
		if hookCtx != nil {
			ctx = hookCtx
		}
		active = true
	}()
	return ctx, token, active
}

// endHook runs OnDispatchEnd and recovers from a panicking hook.
func endHook(ctx context.Context, hook DispatchHook, token HookToken, info DispatchInfo, stats *CallStatistics, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			slog.Error("dispatch hook end panic", "err", rv)
		}
	}()
	hook.OnDispatchEnd(ctx, token, info, stats, err)
}

// batchBufferSize returns the total top-level buffer size in bytes across all
// columns in a record batch.
func batchBufferSize(batch arrow.RecordBatch) int64 {
	var total int64
	for i := int64(0); i < batch.NumCols(); i++ {
		col := batch.Column(int(i))
		for _, buf := range col.Data().Buffers() {
			if buf != nil {
				total += int64(buf.Len())
			}
		}
	}
	return total
}
