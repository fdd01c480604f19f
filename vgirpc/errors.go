// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
)

// ErrRpc is a sentinel for use with errors.Is to check whether any error in a
// chain is an *RpcError.
var ErrRpc = &RpcError{}

// RpcError represents an error in the vgi_rpc protocol.
type RpcError struct {
	Type      string // e.g. "ValueError", "IndexOutOfBoundsException"
	Message   string
	Traceback string
	RequestID string
}

// NewRpcError builds an RpcError with the given type and formatted message.
func NewRpcError(errType, format string, args ...any) *RpcError {
	return &RpcError{Type: errType, Message: fmt.Sprintf(format, args...)}
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is supports errors.Is by matching any *RpcError target.
func (e *RpcError) Is(target error) bool {
	_, ok := target.(*RpcError)
	return ok
}

// stackFrame represents a single frame in a Go stack trace.
type stackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// errorExtra is the JSON structure written to vgi_rpc.log_extra
// for EXCEPTION-level log batches.
type errorExtra struct {
	ExceptionType    string       `json:"exception_type"`
	ExceptionMessage string       `json:"exception_message"`
	Traceback        string       `json:"traceback,omitempty"`
	Frames           []stackFrame `json:"frames,omitempty"`
}

// errorType returns the wire type name for err. An *RpcError anywhere in
// the chain wins over the Go type name.
func errorType(err error) string {
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		return rpcErr.Type
	}
	return fmt.Sprintf("%T", err)
}

// errorMessage returns the message carried on the wire for err.
func errorMessage(err error) string {
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		return rpcErr.Message
	}
	return err.Error()
}

// buildErrorExtra creates the JSON string for vgi_rpc.log_extra from an error.
// Stack information is only attached when debug is set.
func buildErrorExtra(err error, debug bool) string {
	extra := errorExtra{
		ExceptionType:    errorType(err),
		ExceptionMessage: errorMessage(err),
	}

	if debug {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		extra.Traceback = string(buf[:n])

		pcs := make([]uintptr, 10)
		n = runtime.Callers(2, pcs)
		if n > 0 {
			callersFrames := runtime.CallersFrames(pcs[:n])
			for len(extra.Frames) < 5 {
				frame, more := callersFrames.Next()
				extra.Frames = append(extra.Frames, stackFrame{
					File:     frame.File,
					Line:     frame.Line,
					Function: frame.Function,
				})
				if !more {
					break
				}
			}
		}
	}

	data, _ := json.Marshal(extra)
	return string(data)
}

// parseErrorExtra rebuilds an RpcError from an EXCEPTION batch's message
// and log_extra. A malformed extra falls back to the bare message.
func parseErrorExtra(message, extraJSON, requestID string) *RpcError {
	rpcErr := &RpcError{Type: "RemoteError", Message: message, RequestID: requestID}
	if extraJSON == "" {
		return rpcErr
	}
	var extra errorExtra
	if err := json.Unmarshal([]byte(extraJSON), &extra); err != nil {
		return rpcErr
	}
	if extra.ExceptionType != "" {
		rpcErr.Type = extra.ExceptionType
	}
	if extra.ExceptionMessage != "" {
		rpcErr.Message = extra.ExceptionMessage
	}
	rpcErr.Traceback = extra.Traceback
	return rpcErr
}
