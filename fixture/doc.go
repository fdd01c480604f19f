// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package fixture provides TestClass, a deterministic fixture used to
// validate how a bridge marshals values of every primitive kind, arrays of
// those kinds, and a handful of object kinds.
//
// Every operation exists in two forms: a package-level function (the
// shared, class-level form) and a method on [*TestClass] (the instance
// form). Both delegate to one implementation, so a bridge that dispatches
// either form must observe identical results.
//
// # Kinds
//
//	boolean  bool        byte    int8       char   Char (UTF-16 unit)
//	short    int16       int     int32      long   int64
//	float    float32     double  float64    String string
//	Object   Object      Class   Class      Throwable *Throwable
//
// # Shared state
//
// Class-level mutable state lives in one process-wide [SharedState]
// returned by [Shared]. Nothing in this package synchronises access to it;
// callers that dispatch concurrently must serialise calls themselves.
// [ResetShared] restores the initial values.
//
// # Callbacks
//
// The CallMeBackWith* trampolines forward their argument unchanged to a
// [Hooks] implementation injected with [WithHooks] or [TestClass.SetHooks]
// and relay the hook's result and error verbatim.
package fixture
