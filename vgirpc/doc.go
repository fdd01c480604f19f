// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package vgirpc implements both ends of the vgi_rpc protocol, an
// Apache Arrow IPC-based RPC framework.
//
// The protocol encodes all parameters and results as Arrow RecordBatch
// messages with per-batch custom metadata carrying method names, request
// IDs, log messages, and error information. Each request and each response
// is one complete IPC stream (schema, batches, end-of-stream marker), so a
// single byte stream can carry any number of calls back to back.
//
// # Methods
//
// Every method is unary: a single request produces a single response.
// Register handlers with [Unary] or [UnaryVoid]; call them with [Call] or
// [CallVoid] through a [Client] or [HttpClient].
//
// # Struct tags
//
// Method parameters are declared as Go structs annotated with `vgirpc`
// struct tags. The tag format is:
//
//	`vgirpc:"wire_name[,option[,option...]]"`
//
// Supported options:
//
//   - default=VALUE: value used when the client omits the parameter
//   - enum: encode as an Arrow Dictionary (categorical string)
//   - int32: use Arrow Int32 for an int or int64 field
//   - float32: use Arrow Float32 for a float64 field
//   - binary: serialize an [ArrowSerializable] value as IPC bytes
//
// Go integer, unsigned and float kinds map onto the Arrow type of the same
// width, so a uint16-backed type travels as uint16. Slices become lists,
// []byte becomes binary and pointer fields become nullable columns.
//
// # ArrowSerializable
//
// Types that implement the [ArrowSerializable] interface provide their
// own Arrow schema via ArrowSchema(). Fields are mapped to Arrow columns
// using `arrow` struct tags. At the method parameter level these types are
// serialized as binary (embedded IPC stream); when nested inside another
// ArrowSerializable they become Arrow struct columns.
//
// # Errors and logs
//
// A handler error is sent as a zero-row batch at EXCEPTION level whose
// vgi_rpc.log_extra JSON names the error type. Return an [*RpcError] to
// control that type. Messages recorded with [CallContext.ClientLog] travel
// ahead of the result as log batches.
//
// # Transports
//
// The stdio transport ([Server.RunStdio], [Server.Serve]) reads and
// writes Arrow IPC streams on an io.Reader/io.Writer pair, and
// [Server.ServeListener] runs the same loop on every accepted connection.
//
// [HttpServer] exposes a [Server] over HTTP (default prefix /vgi):
//
//	POST /vgi/{method}    unary call (including __describe__)
//	GET  /vgi             landing page
//	GET  /vgi/describe    HTML API reference
//
// Request and response bodies use Content-Type
// application/vnd.apache.arrow.stream and may be zstd-compressed.
package vgirpc
