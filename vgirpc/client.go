// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"
)

// Response is a decoded unary response stream.
type Response struct {
	// Batch is the result batch. It has a single "result" column for valued
	// methods and no columns for void methods. Callers must Release it.
	Batch arrow.RecordBatch
	// Logs holds the client-directed log messages that preceded the result.
	Logs []LogMessage
	// ServerID is the server identifier echoed in response metadata.
	ServerID string
}

// Release frees the result batch.
func (r *Response) Release() {
	if r.Batch != nil {
		r.Batch.Release()
		r.Batch = nil
	}
}

// Caller performs one RPC round trip. Both [Client] and [HttpClient]
// implement it.
type Caller interface {
	Do(ctx context.Context, method string, params any) (*Response, error)
}

// EncodeRequest writes a complete request IPC stream for method with the
// given params struct. A nil params writes an empty-schema request.
func EncodeRequest(w io.Writer, method string, params any, requestID string, level LogLevel) error {
	schema := arrow.NewSchema(nil, nil)
	var cols []arrow.Array
	var rows int64

	if params != nil {
		rv := reflect.ValueOf(params)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		var err error
		schema, err = structToSchema(rv.Type())
		if err != nil {
			return fmt.Errorf("request params: %w", err)
		}
		if schema.NumFields() > 0 {
			rows = 1
			mem := memory.NewGoAllocator()
			fields, _ := paramFields(rv.Type())
			for i, f := range fields {
				arr, err := buildArray(mem, schema.Field(i).Type, rv.FieldByIndex(f.Index).Interface())
				if err != nil {
					for _, c := range cols {
						c.Release()
					}
					return fmt.Errorf("request param %s: %w", schema.Field(i).Name, err)
				}
				cols = append(cols, arr)
			}
		}
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	keys := []string{MetaMethod, MetaRequestVersion}
	vals := []string{method, ProtocolVersion}
	if requestID != "" {
		keys = append(keys, MetaRequestID)
		vals = append(vals, requestID)
	}
	if level != "" {
		keys = append(keys, MetaLogLevel)
		vals = append(vals, string(level))
	}

	batch := array.NewRecordBatchWithMetadata(schema, cols, rows, arrow.NewMetadata(keys, vals))
	defer batch.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(schema))
	if err := writer.Write(batch); err != nil {
		writer.Close()
		return fmt.Errorf("writing request: %w", err)
	}
	return writer.Close()
}

// ReadResponse reads one complete response IPC stream. An EXCEPTION batch is
// returned as an *RpcError; log batches are collected on the Response.
func ReadResponse(r io.Reader) (*Response, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading response IPC stream: %w", err)
	}
	defer reader.Release()

	resp := &Response{}
	var rpcErr *RpcError
	for reader.Next() {
		batch := reader.RecordBatch()
		meta := batchMetadata(batch)
		if id, ok := meta.GetValue(MetaServerID); ok {
			resp.ServerID = id
		}
		switch classifyBatch(meta) {
		case BatchError:
			msg, _ := meta.GetValue(MetaLogMessage)
			extra, _ := meta.GetValue(MetaLogExtra)
			requestID, _ := meta.GetValue(MetaRequestID)
			rpcErr = parseErrorExtra(msg, extra, requestID)
		case BatchLog:
			resp.Logs = append(resp.Logs, logMessageFrom(meta))
		default:
			if resp.Batch != nil {
				resp.Batch.Release()
			}
			batch.Retain()
			resp.Batch = batch
		}
	}
	if err := reader.Err(); err != nil {
		resp.Release()
		return nil, fmt.Errorf("reading response batch: %w", err)
	}
	if rpcErr != nil {
		resp.Release()
		return resp, rpcErr
	}
	if resp.Batch == nil {
		return nil, &RpcError{Type: "ProtocolError", Message: "response stream carried no result batch"}
	}
	return resp, nil
}

func logMessageFrom(meta arrow.Metadata) LogMessage {
	level, _ := meta.GetValue(MetaLogLevel)
	msg, _ := meta.GetValue(MetaLogMessage)
	lm := LogMessage{Level: LogLevel(level), Message: msg}
	if extra, ok := meta.GetValue(MetaLogExtra); ok {
		_ = json.Unmarshal([]byte(extra), &lm.Extras)
	}
	return lm
}

// Client issues calls over a byte stream pair such as a subprocess's
// stdin/stdout or a unix socket. Calls are serialized.
type Client struct {
	mu       sync.Mutex
	r        io.Reader
	w        io.Writer
	logLevel LogLevel
	onLog    func(LogMessage)
	nextID   uint64
}

// ClientOption configures a Client or HttpClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logLevel LogLevel
	onLog    func(LogMessage)
	compress bool
	prefix   string
	http     *http.Client
}

// WithLogLevel asks the server to send log messages at or above level.
func WithLogLevel(level LogLevel) ClientOption {
	return func(o *clientOptions) { o.logLevel = level }
}

// WithLogHandler registers a callback for every log message received.
func WithLogHandler(fn func(LogMessage)) ClientOption {
	return func(o *clientOptions) { o.onLog = fn }
}

// WithZstd compresses HTTP request bodies and accepts compressed responses.
func WithZstd() ClientOption {
	return func(o *clientOptions) { o.compress = true }
}

// WithHTTPClient sets the http.Client used by an HttpClient.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) { o.http = c }
}

// WithClientPrefix sets the URL prefix an HttpClient posts to.
func WithClientPrefix(prefix string) ClientOption {
	return func(o *clientOptions) { o.prefix = "/" + strings.Trim(prefix, "/") }
}

func buildClientOptions(opts []ClientOption) clientOptions {
	o := clientOptions{logLevel: LogInfo, prefix: "/vgi", http: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a client reading responses from r and writing requests to w.
func NewClient(r io.Reader, w io.Writer, opts ...ClientOption) *Client {
	o := buildClientOptions(opts)
	return &Client{r: r, w: w, logLevel: o.logLevel, onLog: o.onLog}
}

// Do sends one request and reads its response.
func (c *Client) Do(ctx context.Context, method string, params any) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	if err := EncodeRequest(c.w, method, params, strconv.FormatUint(c.nextID, 10), c.logLevel); err != nil {
		return nil, err
	}
	resp, err := ReadResponse(c.r)
	if resp != nil && c.onLog != nil {
		for _, lm := range resp.Logs {
			c.onLog(lm)
		}
	}
	return resp, err
}

// Describe fetches the server's method descriptions.
func (c *Client) Describe(ctx context.Context) ([]MethodDescription, error) {
	return describe(ctx, c)
}

// HttpClient issues calls against an [HttpServer].
type HttpClient struct {
	baseURL string
	opts    clientOptions
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewHttpClient creates a client for the server at baseURL (scheme and host).
func NewHttpClient(baseURL string, opts ...ClientOption) (*HttpClient, error) {
	c := &HttpClient{baseURL: strings.TrimRight(baseURL, "/"), opts: buildClientOptions(opts)}
	if c.opts.compress {
		var err error
		if c.encoder, err = zstd.NewWriter(nil); err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		if c.decoder, err = zstd.NewReader(nil); err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
	}
	return c, nil
}

// Do posts one request and decodes the response.
func (c *HttpClient) Do(ctx context.Context, method string, params any) (*Response, error) {
	var body bytes.Buffer
	if err := EncodeRequest(&body, method, params, "", c.opts.logLevel); err != nil {
		return nil, err
	}
	payload := body.Bytes()
	if c.encoder != nil {
		payload = c.encoder.EncodeAll(payload, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.opts.prefix+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", arrowContentType)
	if c.encoder != nil {
		req.Header.Set("Content-Encoding", zstdEncoding)
		req.Header.Set("Accept-Encoding", zstdEncoding)
	}

	httpResp, err := c.opts.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if httpResp.Header.Get("Content-Encoding") == zstdEncoding {
		if c.decoder == nil {
			return nil, errors.New("server sent zstd without it being requested")
		}
		if data, err = c.decoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("decoding zstd response: %w", err)
		}
	}
	if ct := httpResp.Header.Get("Content-Type"); ct != arrowContentType {
		return nil, fmt.Errorf("http %d: unexpected content type %q: %s", httpResp.StatusCode, ct, bytes.TrimSpace(data))
	}

	resp, err := ReadResponse(bytes.NewReader(data))
	if resp != nil && c.opts.onLog != nil {
		for _, lm := range resp.Logs {
			c.opts.onLog(lm)
		}
	}
	return resp, err
}

// Describe fetches the server's method descriptions.
func (c *HttpClient) Describe(ctx context.Context) ([]MethodDescription, error) {
	return describe(ctx, c)
}

func describe(ctx context.Context, c Caller) ([]MethodDescription, error) {
	resp, err := c.Do(ctx, DescribeMethod, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Release()
	return parseDescribeBatch(resp.Batch)
}

// Call invokes a valued method and decodes its result into R.
func Call[P any, R any](ctx context.Context, c Caller, method string, params P) (R, error) {
	var result R
	resp, err := c.Do(ctx, method, params)
	if err != nil {
		return result, err
	}
	defer resp.Release()

	if resp.Batch.NumCols() != 1 || resp.Batch.NumRows() != 1 {
		return result, &RpcError{
			Type:    "ProtocolError",
			Message: fmt.Sprintf("expected 1x1 result batch, got %dx%d", resp.Batch.NumRows(), resp.Batch.NumCols()),
		}
	}
	col := resp.Batch.Column(0)
	if col.IsNull(0) {
		return result, nil
	}
	if err := setFieldFromArrow(reflect.ValueOf(&result).Elem(), reflect.TypeFor[R](), col, 0, tagInfo{}); err != nil {
		return result, fmt.Errorf("decoding result of %s: %w", method, err)
	}
	return result, nil
}

// CallVoid invokes a method that returns no value.
func CallVoid[P any](ctx context.Context, c Caller, method string, params P) error {
	resp, err := c.Do(ctx, method, params)
	if err != nil {
		return err
	}
	resp.Release()
	return nil
}
