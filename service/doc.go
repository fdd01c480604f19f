// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package service exposes the fixture package as vgi_rpc methods so an
// out-of-process bridge can drive it.
//
// Every fixture operation is registered under a snake_case name:
// static_int_method, int_method, static_reverse_char_array,
// call_me_back_with_double and so on. Instance methods take an "instance"
// handle; object values cross the wire as int64 handles from an
// [ObjectTable]. Handle 0 is the null object and handle 1 is the canonical
// fixture.AObjectObject.
//
// Shared fixture state is unsynchronised, so every call is serialised
// behind one mutex. Fixture faults are reported as RpcErrors of type
// IndexOutOfBoundsException and Exception; hook failures become
// CallbackError.
//
// The only entry points intended for external use are [New] and
// [RegisterMethods].
package service
