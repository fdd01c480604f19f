// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Query-farm/vgi-typefixture/fixture"
	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

// Reserved handles.
const (
	NullHandle      int64 = 0
	CanonicalHandle int64 = 1
	ThrowableHandle int64 = 2
	ClassHandle     int64 = 3
)

// ObjectTable assigns stable int64 handles to fixture objects. Interning
// the same object twice yields the same handle, so identity survives the
// round trip. The fixture constants are pinned and cannot be released.
type ObjectTable struct {
	mu       sync.Mutex
	next     int64
	byHandle map[int64]fixture.Object
	byObject map[fixture.Object]int64
}

// NewObjectTable returns a table holding only the pinned constants.
func NewObjectTable() *ObjectTable {
	t := &ObjectTable{
		next:     ClassHandle + 1,
		byHandle: make(map[int64]fixture.Object),
		byObject: make(map[fixture.Object]int64),
	}
	t.pin(CanonicalHandle, fixture.AObjectObject)
	t.pin(ThrowableHandle, fixture.AThrowableObject)
	t.pin(ClassHandle, fixture.AClassObject)
	return t
}

func (t *ObjectTable) pin(h int64, obj fixture.Object) {
	t.byHandle[h] = obj
	t.byObject[obj] = h
}

func isNil(obj fixture.Object) bool {
	if obj == nil {
		return true
	}
	rv := reflect.ValueOf(obj)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// Intern returns the handle of obj, allocating one on first sight.
// A nil object maps to NullHandle.
func (t *ObjectTable) Intern(obj fixture.Object) int64 {
	if isNil(obj) {
		return NullHandle
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.byObject[obj]; ok {
		return h
	}
	h := t.next
	t.next++
	t.byHandle[h] = obj
	t.byObject[obj] = h
	return h
}

// InternAll interns every element of objs.
func (t *ObjectTable) InternAll(objs []fixture.Object) []int64 {
	handles := make([]int64, len(objs))
	for i, obj := range objs {
		handles[i] = t.Intern(obj)
	}
	return handles
}

// Lookup resolves h. NullHandle resolves to nil.
func (t *ObjectTable) Lookup(h int64) (fixture.Object, error) {
	if h == NullHandle {
		return nil, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	obj, ok := t.byHandle[h]
	if !ok {
		return nil, vgirpc.NewRpcError("ValueError", "unknown object handle %d", h)
	}
	return obj, nil
}

// LookupAll resolves every handle in hs.
func (t *ObjectTable) LookupAll(hs []int64) ([]fixture.Object, error) {
	objs := make([]fixture.Object, len(hs))
	for i, h := range hs {
		obj, err := t.Lookup(h)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}
	return objs, nil
}

// Instance resolves h to a *fixture.TestClass. NullHandle is allowed and
// yields nil.
func (t *ObjectTable) Instance(h int64) (*fixture.TestClass, error) {
	obj, err := t.Lookup(h)
	if err != nil || obj == nil {
		return nil, err
	}
	c, ok := obj.(*fixture.TestClass)
	if !ok {
		return nil, vgirpc.NewRpcError("TypeError", "handle %d is a %s, not a TestClass", h, kindOf(obj))
	}
	return c, nil
}

// Receiver resolves h to the instance a method is invoked on. Unlike
// Instance it rejects NullHandle.
func (t *ObjectTable) Receiver(h int64) (*fixture.TestClass, error) {
	if h == NullHandle {
		return nil, vgirpc.NewRpcError("NullPointerException", "method invoked on the null object")
	}
	return t.Instance(h)
}

// Release forgets h. Pinned and unknown handles are errors.
func (t *ObjectTable) Release(h int64) error {
	if isPinned(h) || h == NullHandle {
		return vgirpc.NewRpcError("ValueError", "handle %d is pinned", h)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	obj, ok := t.byHandle[h]
	if !ok {
		return vgirpc.NewRpcError("ValueError", "unknown object handle %d", h)
	}
	delete(t.byHandle, h)
	delete(t.byObject, obj)
	return nil
}

// Len returns the number of live handles, pinned ones included.
func (t *ObjectTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byHandle)
}

// Info describes the object behind h.
func (t *ObjectTable) Info(h int64) (ObjectInfo, error) {
	obj, err := t.Lookup(h)
	if err != nil {
		return ObjectInfo{}, err
	}
	info := ObjectInfo{Handle: h, Kind: kindOf(obj), Pinned: isPinned(h)}
	switch o := obj.(type) {
	case *fixture.Throwable:
		info.Text = o.Message
	case fixture.Class:
		info.Text = o.String()
	case *fixture.Opaque:
		info.Text = fmt.Sprintf("opaque#%d", o.Seq())
	}
	return info, nil
}

func isPinned(h int64) bool {
	return h >= CanonicalHandle && h <= ClassHandle
}

func kindOf(obj fixture.Object) string {
	switch obj.(type) {
	case nil:
		return "null"
	case *fixture.TestClass:
		return "TestClass"
	case *fixture.Throwable:
		return "Throwable"
	case *fixture.Opaque:
		return "Object"
	case fixture.Class:
		return "Class"
	default:
		return fmt.Sprintf("%T", obj)
	}
}
