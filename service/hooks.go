// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"encoding/binary"
	"errors"
	"hash"
	"math"
	"unicode/utf16"

	"github.com/spaolacci/murmur3"

	"github.com/Query-farm/vgi-typefixture/fixture"
)

// ErrHookFailed is returned by every callback of the "failing" hook set.
var ErrHookFailed = errors.New("hook failed")

// DigestHooks answers each callback with a digest of its argument. Byte,
// int and boolean values come back as themselves and objects as their
// handle. Doubles, strings and sequences are hashed with 32-bit murmur3
// over their exact contents (IEEE-754 bits, UTF-16 units, element by
// element), so any change to the value in transit changes the digest.
type DigestHooks struct {
	objects *ObjectTable
}

var _ fixture.Hooks = (*DigestHooks)(nil)

// NewDigestHooks returns digest hooks that report object handles from objects.
func NewDigestHooks(objects *ObjectTable) *DigestHooks {
	return &DigestHooks{objects: objects}
}

func (p *DigestHooks) CallbackWithObject(that *fixture.TestClass) (int32, error) {
	return p.handleDigest(that), nil
}

func (p *DigestHooks) CallbackWithObjectRef(that *fixture.TestClass) (int32, error) {
	return p.handleDigest(that), nil
}

func (p *DigestHooks) CallbackWithString(value string) (int32, error) {
	return stringDigest(value), nil
}

func (p *DigestHooks) CallbackWithByte(value int8) (int32, error) {
	return int32(value), nil
}

func (p *DigestHooks) CallbackWithBoolean(value bool) (int32, error) {
	if value {
		return 1, nil
	}
	return 0, nil
}

func (p *DigestHooks) CallbackWithInt(value int32) (int32, error) {
	return value, nil
}

func (p *DigestHooks) CallbackWithDouble(value float64) (int32, error) {
	return doublesDigest([]float64{value}), nil
}

func (p *DigestHooks) CallbackWithDoubleArray(value []float64) (int32, error) {
	return doublesDigest(value), nil
}

func (p *DigestHooks) CallbackWithObjectArray(value []fixture.Object) (int32, error) {
	return handlesDigest(p.objects.InternAll(value)), nil
}

func (p *DigestHooks) CallbackWithDoubleList(value []float64) (int32, error) {
	return doublesDigest(value), nil
}

func (p *DigestHooks) CallbackWithStringList(value []string) (int32, error) {
	return stringsDigest(value), nil
}

func (p *DigestHooks) handleDigest(that *fixture.TestClass) int32 {
	if that == nil {
		return int32(NullHandle)
	}
	return saturate(p.objects.Intern(that))
}

// saturate narrows a handle to int32, clamping at math.MaxInt32.
func saturate(h int64) int32 {
	if h > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(h)
}

func sum(h hash.Hash32) int32 {
	return int32(h.Sum32())
}

func writeUnits(h hash.Hash32, s string) {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	_, _ = h.Write(buf)
}

func stringDigest(s string) int32 {
	h := murmur3.New32()
	writeUnits(h, s)
	return sum(h)
}

// stringsDigest length-prefixes every element so ["ab", "c"] and
// ["a", "bc"] differ.
func stringsDigest(values []string) int32 {
	h := murmur3.New32()
	var prefix [4]byte
	for _, v := range values {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(utf16.Encode([]rune(v)))))
		_, _ = h.Write(prefix[:])
		writeUnits(h, v)
	}
	return sum(h)
}

func doublesDigest(values []float64) int32 {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return int32(murmur3.Sum32(buf))
}

func handlesDigest(handles []int64) int32 {
	buf := make([]byte, 8*len(handles))
	for i, v := range handles {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(v))
	}
	return int32(murmur3.Sum32(buf))
}

func fail[T any](T) (int32, error) {
	return 0, ErrHookFailed
}

// failingHooks reports ErrHookFailed from every callback.
var failingHooks = fixture.HookFuncs{
	Object:      fail[*fixture.TestClass],
	ObjectRef:   fail[*fixture.TestClass],
	String:      fail[string],
	Byte:        fail[int8],
	Boolean:     fail[bool],
	Int:         fail[int32],
	Double:      fail[float64],
	DoubleArray: fail[[]float64],
	ObjectArray: fail[[]fixture.Object],
	DoubleList:  fail[[]float64],
	StringList:  fail[[]string],
}

// hookSet resolves a new_instance hooks name.
func hookSet(name string, objects *ObjectTable) (fixture.Hooks, bool) {
	switch name {
	case HooksDigest:
		return NewDigestHooks(objects), true
	case HooksFailing:
		return failingHooks, true
	case HooksNone:
		return nil, true
	}
	return nil, false
}
