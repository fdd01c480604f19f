// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"reflect"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// methodInfo stores the registration details for one RPC method.
type methodInfo struct {
	Name          string
	Doc           string
	ParamsType    reflect.Type      // Go struct type for parameters
	ResultType    reflect.Type      // Go type for result (nil for void)
	ParamsSchema  *arrow.Schema     // Arrow schema for parameter deserialization
	ResultSchema  *arrow.Schema     // Arrow schema for result serialization
	Handler       reflect.Value     // func(context.Context, *CallContext, P) (R, error) or func(...) error
	ParamDefaults map[string]string // parameter defaults from struct tags
}

// Server is the RPC server that dispatches incoming requests to registered methods.
type Server struct {
	methods      map[string]*methodInfo
	serverID     string
	serviceName  string
	dispatchHook DispatchHook
	debugErrors  bool
}

// NewServer creates a new RPC server.
func NewServer() *Server {
	return &Server{
		methods: make(map[string]*methodInfo),
	}
}

// SetServerID sets a server identifier included in response metadata.
func (s *Server) SetServerID(id string) {
	s.serverID = id
}

// ServerID returns the identifier set via SetServerID.
func (s *Server) ServerID() string {
	return s.serverID
}

// SetServiceName sets a logical service name used by observability hooks.
func (s *Server) SetServiceName(name string) {
	s.serviceName = name
}

// ServiceName returns the logical service name, or empty string if not set.
func (s *Server) ServiceName() string {
	return s.serviceName
}

// SetDispatchHook registers a hook that is called around each RPC dispatch.
// Use [MultiHook] to install more than one.
func (s *Server) SetDispatchHook(hook DispatchHook) {
	s.dispatchHook = hook
}

// SetDebugErrors controls whether error responses include stack traces
// with file paths and function names. When false (the default), error responses
// contain only the error type and message.
func (s *Server) SetDebugErrors(enabled bool) {
	s.debugErrors = enabled
}

// SetMethodDoc attaches a human-readable description to a registered method.
// It is reported by __describe__ and the HTML API page.
func (s *Server) SetMethodDoc(name, doc string) {
	if info, ok := s.methods[name]; ok {
		info.Doc = doc
	}
}

// Methods returns the sorted names of all registered methods.
func (s *Server) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// register validates the params and result types and records the method.
func (s *Server) register(name string, paramsType, resultType reflect.Type, handler any) {
	if _, dup := s.methods[name]; dup {
		panic(fmt.Sprintf("vgirpc: method %q registered twice", name))
	}
	paramsSchema, err := structToSchema(paramsType)
	if err != nil {
		panic(fmt.Sprintf("vgirpc: registering %q: invalid params type %v: %v", name, paramsType, err))
	}
	resultSchema, err := resultSchema(resultType)
	if err != nil {
		panic(fmt.Sprintf("vgirpc: registering %q: invalid result type %v: %v", name, resultType, err))
	}
	s.methods[name] = &methodInfo{
		Name:          name,
		ParamsType:    paramsType,
		ResultType:    resultType,
		ParamsSchema:  paramsSchema,
		ResultSchema:  resultSchema,
		Handler:       reflect.ValueOf(handler),
		ParamDefaults: extractDefaults(paramsType),
	}
}

// Unary registers a unary RPC method with typed parameters and return value.
// P must be a struct with `vgirpc` tags. R is the return type.
func Unary[P any, R any](s *Server, name string, handler func(context.Context, *CallContext, P) (R, error)) {
	s.register(name, reflect.TypeFor[P](), reflect.TypeFor[R](), handler)
}

// UnaryVoid registers a unary RPC method that returns no value.
func UnaryVoid[P any](s *Server, name string, handler func(context.Context, *CallContext, P) error) {
	s.register(name, reflect.TypeFor[P](), nil, handler)
}

// RunStdio runs the server loop reading from stdin and writing to stdout.
// If stdin or stdout is connected to a terminal, a warning is printed to stderr.
func (s *Server) RunStdio(ctx context.Context) {
	// Writes to a closed pipe must surface as errors, not kill the process.
	signal.Ignore(syscall.SIGPIPE)

	if isTerminal(os.Stdin) || isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr,
			"WARNING: This process communicates via Arrow IPC on stdin/stdout "+
				"and is not intended to be run interactively.\n"+
				"It should be launched as a subprocess by an RPC client.")
	}
	s.ServeWithContext(ctx, os.Stdin, os.Stdout)
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Serve runs the server loop on the given reader/writer pair.
func (s *Server) Serve(r io.Reader, w io.Writer) {
	s.ServeWithContext(context.Background(), r, w)
}

// ServeWithContext runs the server loop on the given reader/writer pair until
// the reader is exhausted, the transport fails or ctx is cancelled.
func (s *Server) ServeWithContext(ctx context.Context, r io.Reader, w io.Writer) {
	for ctx.Err() == nil {
		err := s.serveOne(ctx, r, w)
		if err != nil {
			if err == io.EOF {
				return
			}
			if !isTransportClosed(err) {
				slog.Error("serve loop error", "err", err)
			}
			return
		}
	}
}

// ServeListener accepts connections from ln and runs a serve loop on each
// until ctx is cancelled. It returns once every connection has finished.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		slog.Debug("connection accepted", "remote", conn.RemoteAddr().String())
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			closeOnCancel := context.AfterFunc(ctx, func() { conn.Close() })
			defer closeOnCancel()
			s.ServeWithContext(ctx, conn, conn)
		}()
	}
}

// serveOne handles one complete RPC request-response cycle.
func (s *Server) serveOne(ctx context.Context, r io.Reader, w io.Writer) error {
	req, err := ReadRequest(r)
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		var rpcErr *RpcError
		if errors.As(err, &rpcErr) {
			_ = WriteErrorResponse(w, arrow.NewSchema(nil, nil), nil, rpcErr, s.serverID, "", s.debugErrors)
			return nil // continue serving
		}
		return err // transport error, stop serving
	}
	defer req.Batch.Release()

	_, transportErr := s.dispatch(ctx, w, req)
	return transportErr
}

// dispatch routes one decoded request to its handler, runs the dispatch
// hook around it and writes the complete response stream to w.
// It returns the handler error (reported to hooks) and any transport error.
func (s *Server) dispatch(ctx context.Context, w io.Writer, req *Request) (handlerErr, transportErr error) {
	if req.Method == DescribeMethod {
		return nil, s.writeDescribe(w)
	}

	info, ok := s.methods[req.Method]
	if !ok {
		handlerErr = &RpcError{
			Type:    "AttributeError",
			Message: fmt.Sprintf("Unknown method: '%s'. Available methods: %v", req.Method, s.Methods()),
		}
		return handlerErr, WriteErrorResponse(w, arrow.NewSchema(nil, nil), nil, handlerErr, s.serverID, req.RequestID, s.debugErrors)
	}

	dispatchInfo := DispatchInfo{
		Method:            req.Method,
		MethodType:        DispatchMethodUnary,
		ServerID:          s.serverID,
		RequestID:         req.RequestID,
		TransportMetadata: req.Metadata,
	}
	stats := &CallStatistics{}

	ctx, token, hookActive := startHook(ctx, s.dispatchHook, dispatchInfo)
	handlerErr, transportErr = s.serveUnary(ctx, w, req, info, stats)
	if hookActive {
		endHook(ctx, s.dispatchHook, token, dispatchInfo, stats, handlerErr)
	}
	return handlerErr, transportErr
}

// serveUnary dispatches a unary method call.
func (s *Server) serveUnary(ctx context.Context, w io.Writer, req *Request, info *methodInfo, stats *CallStatistics) (handlerErr, transportErr error) {
	params, err := deserializeParams(req.Batch, info.ParamsType)
	if err != nil {
		handlerErr = &RpcError{Type: "TypeError", Message: fmt.Sprintf("parameter deserialization: %v", err)}
		return handlerErr, WriteErrorResponse(w, info.ResultSchema, nil, handlerErr, s.serverID, req.RequestID, s.debugErrors)
	}

	stats.RecordInput(req.Batch.NumRows(), batchBufferSize(req.Batch))

	callCtx := newCallContext(ctx, req, s.serverID)
	resultVal, callErr := s.invoke(ctx, callCtx, info, params)
	logs := callCtx.drainLogs()

	if callErr != nil {
		slog.Debug("method returned error", "method", info.Name, "err", callErr)
		return callErr, WriteErrorResponse(w, info.ResultSchema, logs, callErr, s.serverID, req.RequestID, s.debugErrors)
	}

	if info.ResultType == nil {
		return nil, WriteVoidResponse(w, logs, s.serverID, req.RequestID)
	}

	resultBatch, err := serializeResult(info.ResultSchema, resultVal.Interface())
	if err != nil {
		handlerErr = &RpcError{Type: "SerializationError", Message: fmt.Sprintf("result serialization: %v", err)}
		return handlerErr, WriteErrorResponse(w, info.ResultSchema, logs, handlerErr, s.serverID, req.RequestID, s.debugErrors)
	}
	defer resultBatch.Release()

	stats.RecordOutput(resultBatch.NumRows(), batchBufferSize(resultBatch))

	return nil, WriteUnaryResponse(w, info.ResultSchema, logs, resultBatch, s.serverID, req.RequestID)
}

// invoke calls the registered handler, converting a panic into a RuntimeError.
func (s *Server) invoke(ctx context.Context, callCtx *CallContext, info *methodInfo, params reflect.Value) (result reflect.Value, callErr error) {
	defer func() {
		if rv := recover(); rv != nil {
			slog.Error("method panic", "method", info.Name, "panic", rv)
			callErr = &RpcError{Type: "RuntimeError", Message: fmt.Sprint(rv)}
		}
	}()

	results := info.Handler.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(callCtx),
		params,
	})
	errVal := results[len(results)-1]
	if !errVal.IsNil() {
		callErr = errVal.Interface().(error)
	}
	if len(results) == 2 {
		result = results[0]
	}
	return result, callErr
}

// writeDescribe writes the __describe__ response stream.
func (s *Server) writeDescribe(w io.Writer) error {
	batch, meta := s.buildDescribeBatch()
	defer batch.Release()

	batchWithMeta := array.NewRecordBatchWithMetadata(
		describeSchema, batch.Columns(), batch.NumRows(), meta)
	defer batchWithMeta.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(describeSchema))
	if err := writer.Write(batchWithMeta); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// extractDefaults extracts default values from struct vgirpc tags.
func extractDefaults(t reflect.Type) map[string]string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	_, tags := paramFields(t)
	defaults := make(map[string]string)
	for _, info := range tags {
		if info.Default != nil {
			defaults[info.Name] = *info.Default
		}
	}
	if len(defaults) == 0 {
		return nil
	}
	return defaults
}

// isTransportClosed returns true for errors that indicate the transport was closed normally.
func isTransportClosed(err error) bool {
	if err == io.EOF || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}
