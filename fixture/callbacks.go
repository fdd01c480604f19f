// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

// Hooks is the set of externally supplied callbacks the trampolines forward
// to. The fixture never implements them itself.
type Hooks interface {
	CallbackWithObject(that *TestClass) (int32, error)
	CallbackWithObjectRef(that *TestClass) (int32, error)
	CallbackWithString(value string) (int32, error)
	CallbackWithByte(value int8) (int32, error)
	CallbackWithBoolean(value bool) (int32, error)
	CallbackWithInt(value int32) (int32, error)
	CallbackWithDouble(value float64) (int32, error)
	// CallbackWithDoubleArray and CallbackWithDoubleList receive the same
	// kind through two different passing conventions on the bridge side.
	CallbackWithDoubleArray(value []float64) (int32, error)
	CallbackWithObjectArray(value []Object) (int32, error)
	CallbackWithDoubleList(value []float64) (int32, error)
	CallbackWithStringList(value []string) (int32, error)
}

// HookFuncs implements Hooks with optional funcs. A nil func reports
// ErrHookNotInstalled.
type HookFuncs struct {
	Object      func(that *TestClass) (int32, error)
	ObjectRef   func(that *TestClass) (int32, error)
	String      func(value string) (int32, error)
	Byte        func(value int8) (int32, error)
	Boolean     func(value bool) (int32, error)
	Int         func(value int32) (int32, error)
	Double      func(value float64) (int32, error)
	DoubleArray func(value []float64) (int32, error)
	ObjectArray func(value []Object) (int32, error)
	DoubleList  func(value []float64) (int32, error)
	StringList  func(value []string) (int32, error)
}

var _ Hooks = HookFuncs{}

func invoke[T any](fn func(T) (int32, error), v T) (int32, error) {
	if fn == nil {
		return 0, ErrHookNotInstalled
	}
	return fn(v)
}

func (h HookFuncs) CallbackWithObject(that *TestClass) (int32, error) {
	return invoke(h.Object, that)
}
func (h HookFuncs) CallbackWithObjectRef(that *TestClass) (int32, error) {
	return invoke(h.ObjectRef, that)
}
func (h HookFuncs) CallbackWithString(value string) (int32, error) {
	return invoke(h.String, value)
}
func (h HookFuncs) CallbackWithByte(value int8) (int32, error) {
	return invoke(h.Byte, value)
}
func (h HookFuncs) CallbackWithBoolean(value bool) (int32, error) {
	return invoke(h.Boolean, value)
}
func (h HookFuncs) CallbackWithInt(value int32) (int32, error) {
	return invoke(h.Int, value)
}
func (h HookFuncs) CallbackWithDouble(value float64) (int32, error) {
	return invoke(h.Double, value)
}
func (h HookFuncs) CallbackWithDoubleArray(value []float64) (int32, error) {
	return invoke(h.DoubleArray, value)
}
func (h HookFuncs) CallbackWithObjectArray(value []Object) (int32, error) {
	return invoke(h.ObjectArray, value)
}
func (h HookFuncs) CallbackWithDoubleList(value []float64) (int32, error) {
	return invoke(h.DoubleList, value)
}
func (h HookFuncs) CallbackWithStringList(value []string) (int32, error) {
	return invoke(h.StringList, value)
}

// hooksOrMissing returns the installed hooks, substituting an empty
// HookFuncs so every trampoline reports ErrHookNotInstalled.
func (c *TestClass) hooksOrMissing() Hooks {
	if c.hooks == nil {
		return HookFuncs{}
	}
	return c.hooks
}

func (c *TestClass) CallMeBackWithObject(that *TestClass) (int32, error) {
	return c.hooksOrMissing().CallbackWithObject(that)
}

func (c *TestClass) CallMeBackWithObjectRef(that *TestClass) (int32, error) {
	return c.hooksOrMissing().CallbackWithObjectRef(that)
}

func (c *TestClass) CallMeBackWithString(value string) (int32, error) {
	return c.hooksOrMissing().CallbackWithString(value)
}

func (c *TestClass) CallMeBackWithByte(value int8) (int32, error) {
	return c.hooksOrMissing().CallbackWithByte(value)
}

func (c *TestClass) CallMeBackWithBoolean(value bool) (int32, error) {
	return c.hooksOrMissing().CallbackWithBoolean(value)
}

func (c *TestClass) CallMeBackWithInt(value int32) (int32, error) {
	return c.hooksOrMissing().CallbackWithInt(value)
}

func (c *TestClass) CallMeBackWithDouble(value float64) (int32, error) {
	return c.hooksOrMissing().CallbackWithDouble(value)
}

func (c *TestClass) CallMeBackWithDoubleArray(value []float64) (int32, error) {
	return c.hooksOrMissing().CallbackWithDoubleArray(value)
}

func (c *TestClass) CallMeBackWithObjectArray(value []Object) (int32, error) {
	return c.hooksOrMissing().CallbackWithObjectArray(value)
}

func (c *TestClass) CallMeBackWithDoubleList(value []float64) (int32, error) {
	return c.hooksOrMissing().CallbackWithDoubleList(value)
}

func (c *TestClass) CallMeBackWithStringList(value []string) (int32, error) {
	return c.hooksOrMissing().CallbackWithStringList(value)
}
