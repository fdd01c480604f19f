// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

const (
	intFieldValue  int32 = 123
	boolFieldValue bool  = true
)

// TestClass is the fixture's instance form. The exported fields mirror
// SharedState and are independent per instance.
type TestClass struct {
	ByteVar         int8
	ShortVar        int16
	IntVar          int32
	LongVar         int64
	FloatVar        float32
	DoubleVar       float64
	BooleanVar      bool
	CharVar         Char
	StringObjectVar string

	intField  int32
	boolField bool
	hooks     Hooks
}

// Option configures a TestClass at construction.
type Option func(*TestClass)

// WithHooks installs the callback hooks used by the CallMeBackWith* methods.
func WithHooks(h Hooks) Option {
	return func(c *TestClass) {
		c.hooks = h
	}
}

// NewTestClass returns a TestClass with zero-valued mutable fields.
func NewTestClass(opts ...Option) *TestClass {
	c := &TestClass{
		intField:  intFieldValue,
		boolField: boolFieldValue,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IntField returns the read-only integer field.
func (c *TestClass) IntField() int32 {
	return c.intField
}

// BoolField returns the read-only boolean field.
func (c *TestClass) BoolField() bool {
	return c.boolField
}

// SetHooks replaces the callback hooks.
func (c *TestClass) SetHooks(h Hooks) {
	c.hooks = h
}

// Hooks returns the installed callback hooks, or nil.
func (c *TestClass) Hooks() Hooks {
	return c.hooks
}
