// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"reflect"
	"sync/atomic"
	"unicode/utf16"
)

// Char is a single UTF-16 code unit.
type Char uint16

// Object is any value the bridge treats as an opaque reference.
type Object = any

// Class describes a fixture type. Two Class values compare equal when they
// describe the same type.
type Class = reflect.Type

// Opaque is a featureless object. Each call to NewOpaque yields a value with
// its own identity.
type Opaque struct {
	seq uint64
}

var opaqueSeq atomic.Uint64

// NewOpaque allocates a fresh Opaque.
func NewOpaque() *Opaque {
	return &Opaque{seq: opaqueSeq.Add(1)}
}

// Seq returns the allocation sequence number of o.
func (o *Opaque) Seq() uint64 {
	return o.seq
}

const (
	AByteValue    int8    = 127
	AShortValue   int16   = 32767
	AIntValue     int32   = 0o60701
	ALongValue    int64   = 0o60701
	AFloatValue   float32 = 1.0
	ADoubleValue  float64 = 1.0
	ABooleanValue bool    = true
	ACharValue    Char    = 'Q'
	AStringObject string  = "TEST_DATA_STRING"
)

var (
	AClassObject     Class      = reflect.TypeFor[TestClass]()
	AObjectObject    *TestClass = NewTestClass()
	AThrowableObject *Throwable = NewThrowable(AStringObject)
)

// CharsOf decomposes s into UTF-16 code units.
func CharsOf(s string) []Char {
	units := utf16.Encode([]rune(s))
	chars := make([]Char, len(units))
	for i, u := range units {
		chars[i] = Char(u)
	}
	return chars
}

// StringOf reassembles a string from UTF-16 code units.
func StringOf(chars []Char) string {
	units := make([]uint16, len(chars))
	for i, c := range chars {
		units[i] = uint16(c)
	}
	return string(utf16.Decode(units))
}
