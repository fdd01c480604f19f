// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

// --- void ---

// StaticVoidMethod does nothing.
func StaticVoidMethod() {}

// StaticVoidMethodWithArgs ignores its arguments.
func StaticVoidMethodWithArgs(a int32, b bool, c Char) {}

// VoidMethod is the instance form of StaticVoidMethod.
func (c *TestClass) VoidMethod() { StaticVoidMethod() }

// VoidMethodWithArgs is the instance form of StaticVoidMethodWithArgs.
func (c *TestClass) VoidMethodWithArgs(a int32, b bool, ch Char) { StaticVoidMethodWithArgs(a, b, ch) }

// --- boolean ---

// StaticBooleanMethod returns ABooleanValue.
func StaticBooleanMethod() bool { return ABooleanValue }

// StaticBooleanMethodWithArgs ignores its arguments and returns StaticBooleanMethod().
func StaticBooleanMethodWithArgs(a, b, c bool) bool { return StaticBooleanMethod() }

// BooleanMethod is the instance form of StaticBooleanMethod.
func (c *TestClass) BooleanMethod() bool { return StaticBooleanMethod() }

// BooleanMethodWithArgs is the instance form of StaticBooleanMethodWithArgs.
func (c *TestClass) BooleanMethodWithArgs(a, b, d bool) bool {
	return StaticBooleanMethodWithArgs(a, b, d)
}

// --- byte ---

// StaticByteMethod returns AByteValue.
func StaticByteMethod() int8 { return AByteValue }

// StaticByteMethodWithArgs ignores its arguments and returns StaticByteMethod().
func StaticByteMethodWithArgs(a, b, c int8) int8 { return StaticByteMethod() }

// ByteMethod is the instance form of StaticByteMethod.
func (c *TestClass) ByteMethod() int8 { return StaticByteMethod() }

// ByteMethodWithArgs is the instance form of StaticByteMethodWithArgs.
func (c *TestClass) ByteMethodWithArgs(a, b, d int8) int8 { return StaticByteMethodWithArgs(a, b, d) }

// --- char ---

// StaticCharMethod returns ACharValue.
func StaticCharMethod() Char { return ACharValue }

// StaticCharMethodWithArgs ignores its arguments and returns StaticCharMethod().
func StaticCharMethodWithArgs(a, b, c Char) Char { return StaticCharMethod() }

// CharMethod is the instance form of StaticCharMethod.
func (c *TestClass) CharMethod() Char { return StaticCharMethod() }

// CharMethodWithArgs is the instance form of StaticCharMethodWithArgs.
func (c *TestClass) CharMethodWithArgs(a, b, d Char) Char { return StaticCharMethodWithArgs(a, b, d) }

// --- short ---

// StaticShortMethod returns AShortValue.
func StaticShortMethod() int16 { return AShortValue }

// StaticShortMethodWithArgs ignores its arguments and returns StaticShortMethod().
func StaticShortMethodWithArgs(a, b, c int16) int16 { return StaticShortMethod() }

// ShortMethod is the instance form of StaticShortMethod.
func (c *TestClass) ShortMethod() int16 { return StaticShortMethod() }

// ShortMethodWithArgs is the instance form of StaticShortMethodWithArgs.
func (c *TestClass) ShortMethodWithArgs(a, b, d int16) int16 {
	return StaticShortMethodWithArgs(a, b, d)
}

// --- int ---

// StaticIntMethod returns AIntValue.
func StaticIntMethod() int32 { return AIntValue }

// StaticIntMethodWithArgs ignores its arguments and returns StaticIntMethod().
func StaticIntMethodWithArgs(a, b, c int32) int32 { return StaticIntMethod() }

// IntMethod is the instance form of StaticIntMethod.
func (c *TestClass) IntMethod() int32 { return StaticIntMethod() }

// IntMethodWithArgs is the instance form of StaticIntMethodWithArgs.
func (c *TestClass) IntMethodWithArgs(a, b, d int32) int32 { return StaticIntMethodWithArgs(a, b, d) }

// --- long ---

// StaticLongMethod returns ALongValue.
func StaticLongMethod() int64 { return ALongValue }

// StaticLongMethodWithArgs ignores its arguments and returns StaticLongMethod().
func StaticLongMethodWithArgs(a, b, c int64) int64 { return StaticLongMethod() }

// LongMethod is the instance form of StaticLongMethod.
func (c *TestClass) LongMethod() int64 { return StaticLongMethod() }

// LongMethodWithArgs is the instance form of StaticLongMethodWithArgs.
func (c *TestClass) LongMethodWithArgs(a, b, d int64) int64 { return StaticLongMethodWithArgs(a, b, d) }

// --- float ---

// StaticFloatMethod returns AFloatValue.
func StaticFloatMethod() float32 { return AFloatValue }

// StaticFloatMethodWithArgs ignores its arguments and returns StaticFloatMethod().
func StaticFloatMethodWithArgs(a, b, c float32) float32 { return StaticFloatMethod() }

// FloatMethod is the instance form of StaticFloatMethod.
func (c *TestClass) FloatMethod() float32 { return StaticFloatMethod() }

// FloatMethodWithArgs is the instance form of StaticFloatMethodWithArgs.
func (c *TestClass) FloatMethodWithArgs(a, b, d float32) float32 {
	return StaticFloatMethodWithArgs(a, b, d)
}

// --- double ---

// StaticDoubleMethod returns ADoubleValue.
func StaticDoubleMethod() float64 { return ADoubleValue }

// StaticDoubleMethodWithArgs ignores its arguments and returns StaticDoubleMethod().
func StaticDoubleMethodWithArgs(a, b, c float64) float64 { return StaticDoubleMethod() }

// DoubleMethod is the instance form of StaticDoubleMethod.
func (c *TestClass) DoubleMethod() float64 { return StaticDoubleMethod() }

// DoubleMethodWithArgs is the instance form of StaticDoubleMethodWithArgs.
func (c *TestClass) DoubleMethodWithArgs(a, b, d float64) float64 {
	return StaticDoubleMethodWithArgs(a, b, d)
}

// --- object kinds ---

// StaticObjectMethod returns AObjectObject.
func StaticObjectMethod() Object { return AObjectObject }

// ObjectMethod is the instance form of StaticObjectMethod.
func (c *TestClass) ObjectMethod() Object { return StaticObjectMethod() }

// StaticClassMethod returns AClassObject.
func StaticClassMethod() Class { return AClassObject }

// ClassMethod is the instance form of StaticClassMethod.
func (c *TestClass) ClassMethod() Class { return StaticClassMethod() }

// StaticStringMethod returns AStringObject.
func StaticStringMethod() string { return AStringObject }

// StringMethod is the instance form of StaticStringMethod.
func (c *TestClass) StringMethod() string { return StaticStringMethod() }

// StaticEchoMethod returns value unchanged.
func StaticEchoMethod(value string) string { return value }

// StaticThrowableMethod returns AThrowableObject.
func StaticThrowableMethod() *Throwable { return AThrowableObject }

// ThrowableMethod is the instance form of StaticThrowableMethod.
func (c *TestClass) ThrowableMethod() *Throwable { return StaticThrowableMethod() }

// --- faults ---

// CallStaticMethodThrowsException always fails with ErrException.
func CallStaticMethodThrowsException() (Object, error) {
	return nil, ErrException
}

// CallMethodThrowsException always fails with ErrException.
func (c *TestClass) CallMethodThrowsException() (Object, error) {
	return nil, ErrException
}
