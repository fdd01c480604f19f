// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

// Reverse reverses array in place and returns it. Odd-length arrays keep
// their middle element; empty and single-element arrays are returned as is.
func Reverse[T any](array []T) []T {
	n := len(array)
	for i := 0; i < n/2; i++ {
		array[i], array[n-i-1] = array[n-i-1], array[i]
	}
	return array
}

// --- Object ---

// StaticObjectArrayMethod returns three newly allocated opaque objects.
func StaticObjectArrayMethod() []Object {
	return []Object{NewOpaque(), NewOpaque(), NewOpaque()}
}

// ObjectArrayMethod is the instance form of StaticObjectArrayMethod.
func (c *TestClass) ObjectArrayMethod() []Object { return StaticObjectArrayMethod() }

// StaticReverseObjectArray reverses array in place and returns it.
func StaticReverseObjectArray(array []Object) []Object { return Reverse(array) }

// ReverseObjectArray is the instance form of StaticReverseObjectArray.
func (c *TestClass) ReverseObjectArray(array []Object) []Object { return StaticReverseObjectArray(array) }

// --- String ---

// StaticStringArrayMethod returns a fresh copy of the fixed string array.
func StaticStringArrayMethod() []string {
	return []string{"First", "Second", "Third"}
}

// StringArrayMethod is the instance form of StaticStringArrayMethod.
func (c *TestClass) StringArrayMethod() []string { return StaticStringArrayMethod() }

// StaticReverseStringArray reverses array in place and returns it.
func StaticReverseStringArray(array []string) []string { return Reverse(array) }

// ReverseStringArray is the instance form of StaticReverseStringArray.
func (c *TestClass) ReverseStringArray(array []string) []string { return StaticReverseStringArray(array) }

// --- boolean ---

// StaticBooleanArrayMethod returns a fresh copy of the fixed boolean array.
func StaticBooleanArrayMethod() []bool {
	return []bool{true, true, true}
}

// BooleanArrayMethod is the instance form of StaticBooleanArrayMethod.
func (c *TestClass) BooleanArrayMethod() []bool { return StaticBooleanArrayMethod() }

// StaticReverseBooleanArray reverses array in place and returns it.
func StaticReverseBooleanArray(array []bool) []bool { return Reverse(array) }

// ReverseBooleanArray is the instance form of StaticReverseBooleanArray.
func (c *TestClass) ReverseBooleanArray(array []bool) []bool { return StaticReverseBooleanArray(array) }

// --- byte ---

// StaticByteArrayMethod returns a fresh copy of the fixed byte array.
func StaticByteArrayMethod() []int8 {
	return []int8{'a', 'b', 'c'}
}

// ByteArrayMethod is the instance form of StaticByteArrayMethod.
func (c *TestClass) ByteArrayMethod() []int8 { return StaticByteArrayMethod() }

// StaticReverseByteArray reverses array in place and returns it.
func StaticReverseByteArray(array []int8) []int8 { return Reverse(array) }

// ReverseByteArray is the instance form of StaticReverseByteArray.
func (c *TestClass) ReverseByteArray(array []int8) []int8 { return StaticReverseByteArray(array) }

// --- char ---

// StaticCharArrayMethod returns a fresh copy of the fixed char array.
func StaticCharArrayMethod() []Char {
	return []Char{'a', 'b', 'c'}
}

// CharArrayMethod is the instance form of StaticCharArrayMethod.
func (c *TestClass) CharArrayMethod() []Char { return StaticCharArrayMethod() }

// StaticReverseCharArray reverses array in place and returns it.
func StaticReverseCharArray(array []Char) []Char { return Reverse(array) }

// ReverseCharArray is the instance form of StaticReverseCharArray.
func (c *TestClass) ReverseCharArray(array []Char) []Char { return StaticReverseCharArray(array) }

// --- short ---

// StaticShortArrayMethod returns a fresh copy of the fixed short array.
func StaticShortArrayMethod() []int16 {
	return []int16{3, 2, 1}
}

// ShortArrayMethod is the instance form of StaticShortArrayMethod.
func (c *TestClass) ShortArrayMethod() []int16 { return StaticShortArrayMethod() }

// StaticReverseShortArray reverses array in place and returns it.
func StaticReverseShortArray(array []int16) []int16 { return Reverse(array) }

// ReverseShortArray is the instance form of StaticReverseShortArray.
func (c *TestClass) ReverseShortArray(array []int16) []int16 { return StaticReverseShortArray(array) }

// --- int ---

// StaticIntArrayMethod returns a fresh copy of the fixed int array.
func StaticIntArrayMethod() []int32 {
	return []int32{3, 2, 1}
}

// IntArrayMethod is the instance form of StaticIntArrayMethod.
func (c *TestClass) IntArrayMethod() []int32 { return StaticIntArrayMethod() }

// StaticReverseIntArray reverses array in place and returns it.
func StaticReverseIntArray(array []int32) []int32 { return Reverse(array) }

// ReverseIntArray is the instance form of StaticReverseIntArray.
func (c *TestClass) ReverseIntArray(array []int32) []int32 { return StaticReverseIntArray(array) }

// --- long ---

// StaticLongArrayMethod returns a fresh copy of the fixed long array.
func StaticLongArrayMethod() []int64 {
	return []int64{3, 2, 1}
}

// LongArrayMethod is the instance form of StaticLongArrayMethod.
func (c *TestClass) LongArrayMethod() []int64 { return StaticLongArrayMethod() }

// StaticReverseLongArray reverses array in place and returns it.
func StaticReverseLongArray(array []int64) []int64 { return Reverse(array) }

// ReverseLongArray is the instance form of StaticReverseLongArray.
func (c *TestClass) ReverseLongArray(array []int64) []int64 { return StaticReverseLongArray(array) }

// --- float ---

// StaticFloatArrayMethod returns a fresh copy of the fixed float array.
func StaticFloatArrayMethod() []float32 {
	return []float32{1.0, 2.0, 3.0}
}

// FloatArrayMethod is the instance form of StaticFloatArrayMethod.
func (c *TestClass) FloatArrayMethod() []float32 { return StaticFloatArrayMethod() }

// StaticReverseFloatArray reverses array in place and returns it.
func StaticReverseFloatArray(array []float32) []float32 { return Reverse(array) }

// ReverseFloatArray is the instance form of StaticReverseFloatArray.
func (c *TestClass) ReverseFloatArray(array []float32) []float32 { return StaticReverseFloatArray(array) }

// --- double ---

// StaticDoubleArrayMethod returns a fresh copy of the fixed double array.
func StaticDoubleArrayMethod() []float64 {
	return []float64{3.0, 2.0, 1.0}
}

// DoubleArrayMethod is the instance form of StaticDoubleArrayMethod.
func (c *TestClass) DoubleArrayMethod() []float64 { return StaticDoubleArrayMethod() }

// StaticReverseDoubleArray reverses array in place and returns it.
func StaticReverseDoubleArray(array []float64) []float64 { return Reverse(array) }

// ReverseDoubleArray is the instance form of StaticReverseDoubleArray.
func (c *TestClass) ReverseDoubleArray(array []float64) []float64 { return StaticReverseDoubleArray(array) }
