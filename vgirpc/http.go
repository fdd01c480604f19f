// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/klauspost/compress/zstd"
)

const (
	arrowContentType = "application/vnd.apache.arrow.stream"
	zstdEncoding     = "zstd"
	maxRequestBytes  = 64 << 20
)

// HttpServer serves RPC requests over HTTP.
type HttpServer struct {
	server  *Server
	prefix  string
	repoURL string
	maxBody int64
	mux     *http.ServeMux

	encoder *zstd.Encoder // nil when response compression is off
	decoder *zstd.Decoder

	landingHTML  []byte
	describeHTML []byte
	notFoundHTML []byte
}

// HttpOption configures an HttpServer.
type HttpOption func(*HttpServer)

// WithPrefix sets the URL prefix the RPC routes are mounted under.
// The default is /vgi.
func WithPrefix(prefix string) HttpOption {
	return func(h *HttpServer) {
		h.prefix = "/" + strings.Trim(prefix, "/")
	}
}

// WithRepoURL adds a source repository link to the HTML pages.
func WithRepoURL(url string) HttpOption {
	return func(h *HttpServer) {
		h.repoURL = url
	}
}

// WithMaxRequestBytes caps the size of a request body as sent, before
// any zstd decoding. Larger bodies are refused with 413. The default is
// 64 MiB.
func WithMaxRequestBytes(n int64) HttpOption {
	return func(h *HttpServer) {
		h.maxBody = n
	}
}

// WithCompressionLevel enables zstd response compression at the given
// zstd level (1-22). Zero disables it.
func WithCompressionLevel(level int) HttpOption {
	return func(h *HttpServer) {
		if err := h.SetCompressionLevel(level); err != nil {
			panic(fmt.Sprintf("vgirpc: %v", err))
		}
	}
}

// NewHttpServer creates a new HTTP server wrapping an RPC server.
// Methods must be registered on server before the HttpServer is built,
// since the HTML pages are rendered once.
func NewHttpServer(server *Server, opts ...HttpOption) *HttpServer {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxRequestBytes))
	if err != nil {
		panic(fmt.Sprintf("vgirpc: zstd decoder: %v", err))
	}
	h := &HttpServer{
		server:  server,
		prefix:  "/vgi",
		maxBody: maxRequestBytes,
		decoder: decoder,
	}
	for _, opt := range opts {
		opt(h)
	}

	protocolName := server.protocolName()
	h.landingHTML = buildLandingHTML(protocolName, server.serverID, h.prefix+"/describe", h.repoURL)
	h.describeHTML = buildDescribeHTML(server, protocolName, h.repoURL)
	h.notFoundHTML = buildNotFoundHTML(h.prefix, protocolName)

	h.mux = http.NewServeMux()
	h.mux.HandleFunc(fmt.Sprintf("POST %s/{method}", h.prefix), h.handleUnary)
	h.mux.HandleFunc(fmt.Sprintf("GET %s/describe", h.prefix), h.handleDescribePage)
	h.mux.HandleFunc(fmt.Sprintf("GET %s/{$}", h.prefix), h.handleLandingPage)
	h.mux.HandleFunc(fmt.Sprintf("GET %s", h.prefix), h.handleLandingPage)
	h.mux.HandleFunc("/", h.handleNotFound)
	return h
}

// SetCompressionLevel enables zstd response compression at the given zstd
// level (1-22) for clients that send Accept-Encoding: zstd. Zero disables it.
func (h *HttpServer) SetCompressionLevel(level int) error {
	if level == 0 {
		h.encoder = nil
		return nil
	}
	if level < 1 || level > 22 {
		return fmt.Errorf("zstd compression level %d out of range 1-22", level)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	h.encoder = enc
	return nil
}

// Prefix returns the URL prefix the RPC routes are mounted under.
func (h *HttpServer) Prefix() string {
	return h.prefix
}

// ServeHTTP implements http.Handler.
func (h *HttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleUnary dispatches a unary RPC call, including __describe__.
func (h *HttpServer) handleUnary(w http.ResponseWriter, r *http.Request) {
	method := r.PathValue("method")

	if ct := r.Header.Get("Content-Type"); ct != arrowContentType {
		h.writeHttpError(w, r, http.StatusUnsupportedMediaType,
			&RpcError{Type: "ProtocolError", Message: fmt.Sprintf("unsupported content type: %s", ct)})
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeHttpError(w, r, status, &RpcError{Type: "ProtocolError", Message: err.Error()})
		return
	}

	req, err := ReadRequest(bytes.NewReader(body))
	if err != nil {
		var rpcErr *RpcError
		if !errors.As(err, &rpcErr) {
			rpcErr = &RpcError{Type: "ProtocolError", Message: err.Error()}
		}
		h.writeHttpError(w, r, http.StatusBadRequest, rpcErr)
		return
	}
	defer req.Batch.Release()

	// The URL path names the method; the batch metadata is advisory.
	req.Method = method
	req.Metadata["remote_addr"] = r.RemoteAddr
	req.Metadata["user_agent"] = r.UserAgent()
	for _, key := range []string{"traceparent", "tracestate"} {
		if v := r.Header.Get(key); v != "" {
			req.Metadata[key] = v
		}
	}

	var buf bytes.Buffer
	handlerErr, err := h.server.dispatch(r.Context(), &buf, req)
	if err != nil {
		slog.Error("http: writing response", "method", method, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeArrow(w, r, statusFor(handlerErr), buf.Bytes())
}

// statusFor maps a handler error onto an HTTP status code.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Type {
		case "AttributeError":
			return http.StatusNotFound
		case "TypeError", "ValueError", "ProtocolError", "VersionError":
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// readBody reads the request body, undoing zstd content encoding. A body
// over the size limit yields a wrapped *http.MaxBytesError.
func (h *HttpServer) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	switch enc := r.Header.Get("Content-Encoding"); enc {
	case "", "identity":
		return body, nil
	case zstdEncoding:
		decoded, err := h.decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decoding zstd request body: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding: %s", enc)
	}
}

// acceptsZstd reports whether the client advertised zstd support.
func acceptsZstd(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(name, zstdEncoding) {
			return true
		}
	}
	return false
}

func (h *HttpServer) writeHttpError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	var buf bytes.Buffer
	_ = WriteErrorResponse(&buf, arrow.NewSchema(nil, nil), nil, err, h.server.serverID, "", h.server.debugErrors)
	h.writeArrow(w, r, statusCode, buf.Bytes())
}

func (h *HttpServer) writeArrow(w http.ResponseWriter, r *http.Request, statusCode int, data []byte) {
	w.Header().Set("Content-Type", arrowContentType)
	w.Header().Add("Vary", "Accept-Encoding")
	if h.encoder != nil && acceptsZstd(r) {
		data = h.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
		w.Header().Set("Content-Encoding", zstdEncoding)
	}
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}
