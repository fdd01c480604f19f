// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/vgi-typefixture/fixture"
)

// Hook sets accepted by new_instance.
const (
	HooksDigest  = "digest"
	HooksFailing = "failing"
	HooksNone    = "none"
)

// ThrowableValue is the wire form of a *fixture.Throwable.
type ThrowableValue struct {
	Handle  int64  `arrow:"handle" json:"handle"`
	Message string `arrow:"message" json:"message"`
}

func (t ThrowableValue) ArrowSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "handle", Type: arrow.PrimitiveTypes.Int64},
		{Name: "message", Type: arrow.BinaryTypes.String},
	}, nil)
}

// ObjectInfo describes the object behind a handle.
type ObjectInfo struct {
	Handle int64  `arrow:"handle" json:"handle"`
	Kind   string `arrow:"kind" json:"kind"`
	Text   string `arrow:"text" json:"text"`
	Pinned bool   `arrow:"pinned" json:"pinned"`
}

func (o ObjectInfo) ArrowSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "handle", Type: arrow.PrimitiveTypes.Int64},
		{Name: "kind", Type: arrow.BinaryTypes.String},
		{Name: "text", Type: arrow.BinaryTypes.String},
		{Name: "pinned", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
}

// --- Parameter structs ---

type NoParams struct{}

type InstanceParams struct {
	Instance int64 `vgirpc:"instance,default=1"`
}

type HandleParams struct {
	Handle int64 `vgirpc:"handle"`
}

type NewInstanceParams struct {
	Hooks string `vgirpc:"hooks,enum,default=digest"`
}

type EchoParams struct {
	Value string `vgirpc:"value"`
}

// ArgsParams carries the three ignored arguments of a *_with_args method.
type ArgsParams[T any] struct {
	A T `vgirpc:"a"`
	B T `vgirpc:"b"`
	C T `vgirpc:"c"`
}

type InstanceArgsParams[T any] struct {
	Instance int64 `vgirpc:"instance,default=1"`
	A        T     `vgirpc:"a"`
	B        T     `vgirpc:"b"`
	C        T     `vgirpc:"c"`
}

type VoidArgsParams struct {
	A int32        `vgirpc:"a"`
	B bool         `vgirpc:"b"`
	C fixture.Char `vgirpc:"c"`
}

type InstanceVoidArgsParams struct {
	Instance int64        `vgirpc:"instance,default=1"`
	A        int32        `vgirpc:"a"`
	B        bool         `vgirpc:"b"`
	C        fixture.Char `vgirpc:"c"`
}

type ValueParams[T any] struct {
	Value T `vgirpc:"value"`
}

// InstanceValueParams addresses an instance field setter or a callback
// trampoline.
type InstanceValueParams[T any] struct {
	Instance int64 `vgirpc:"instance,default=1"`
	Value    T     `vgirpc:"value"`
}

type ArrayParams[T any] struct {
	Array []T `vgirpc:"array"`
}

type InstanceArrayParams[T any] struct {
	Instance int64 `vgirpc:"instance,default=1"`
	Array    []T   `vgirpc:"array"`
}

type CharsParams struct {
	Values []fixture.Char `vgirpc:"values"`
}
