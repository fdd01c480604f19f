package fixture

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, int8(127), AByteValue)
	assert.Equal(t, int16(32767), AShortValue)
	assert.Equal(t, int32(25025), AIntValue)
	assert.Equal(t, int64(25025), ALongValue)
	assert.Equal(t, Char('Q'), ACharValue)
	assert.Equal(t, "TEST_DATA_STRING", AStringObject)
	assert.Equal(t, reflect.TypeFor[TestClass](), AClassObject)
	require.NotNil(t, AObjectObject)
	assert.Equal(t, AStringObject, AThrowableObject.Error())
}

func TestScalarAccessors(t *testing.T) {
	c := NewTestClass()
	tests := []struct {
		name     string
		static   func() any
		instance func() any
		want     any
	}{
		{"boolean", func() any { return StaticBooleanMethod() }, func() any { return c.BooleanMethod() }, ABooleanValue},
		{"byte", func() any { return StaticByteMethod() }, func() any { return c.ByteMethod() }, AByteValue},
		{"char", func() any { return StaticCharMethod() }, func() any { return c.CharMethod() }, ACharValue},
		{"short", func() any { return StaticShortMethod() }, func() any { return c.ShortMethod() }, AShortValue},
		{"int", func() any { return StaticIntMethod() }, func() any { return c.IntMethod() }, AIntValue},
		{"long", func() any { return StaticLongMethod() }, func() any { return c.LongMethod() }, ALongValue},
		{"float", func() any { return StaticFloatMethod() }, func() any { return c.FloatMethod() }, AFloatValue},
		{"double", func() any { return StaticDoubleMethod() }, func() any { return c.DoubleMethod() }, ADoubleValue},
		{"string", func() any { return StaticStringMethod() }, func() any { return c.StringMethod() }, AStringObject},
		{"class", func() any { return StaticClassMethod() }, func() any { return c.ClassMethod() }, AClassObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := tt.static(), tt.static()
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second)
			assert.Equal(t, first, tt.instance())
		})
	}
}

func TestObjectAccessorsShareIdentity(t *testing.T) {
	c := NewTestClass()
	assert.Same(t, AObjectObject, StaticObjectMethod())
	assert.Same(t, StaticObjectMethod(), c.ObjectMethod())
	assert.Same(t, AThrowableObject, StaticThrowableMethod())
	assert.Same(t, StaticThrowableMethod(), c.ThrowableMethod())
}

func TestWithArgsIgnoresArguments(t *testing.T) {
	c := NewTestClass()
	assert.Equal(t, ABooleanValue, StaticBooleanMethodWithArgs(false, false, false))
	assert.Equal(t, ABooleanValue, c.BooleanMethodWithArgs(false, true, false))
	assert.Equal(t, AByteValue, StaticByteMethodWithArgs(-1, 0, 1))
	assert.Equal(t, AByteValue, c.ByteMethodWithArgs(1, 2, 3))
	assert.Equal(t, ACharValue, StaticCharMethodWithArgs('x', 'y', 'z'))
	assert.Equal(t, ACharValue, c.CharMethodWithArgs('x', 'y', 'z'))
	assert.Equal(t, AShortValue, StaticShortMethodWithArgs(-32768, 0, 7))
	assert.Equal(t, AShortValue, c.ShortMethodWithArgs(1, 2, 3))
	assert.Equal(t, AIntValue, StaticIntMethodWithArgs(1, 2, 3))
	assert.Equal(t, AIntValue, c.IntMethodWithArgs(1, 2, 3))
	assert.Equal(t, ALongValue, StaticLongMethodWithArgs(1, 2, 3))
	assert.Equal(t, ALongValue, c.LongMethodWithArgs(1, 2, 3))
	assert.Equal(t, AFloatValue, StaticFloatMethodWithArgs(1.5, 2.5, 3.5))
	assert.Equal(t, AFloatValue, c.FloatMethodWithArgs(1.5, 2.5, 3.5))
	assert.Equal(t, ADoubleValue, StaticDoubleMethodWithArgs(1.5, 2.5, 3.5))
	assert.Equal(t, ADoubleValue, c.DoubleMethodWithArgs(1.5, 2.5, 3.5))

	assert.NotPanics(t, func() {
		StaticVoidMethod()
		StaticVoidMethodWithArgs(1, true, 'c')
		c.VoidMethod()
		c.VoidMethodWithArgs(1, true, 'c')
	})
}

func TestStaticEchoMethod(t *testing.T) {
	for _, s := range []string{"", "hello", AStringObject, "ünïcødé ✓"} {
		assert.Equal(t, s, StaticEchoMethod(s))
	}
}

func TestInstanceFields(t *testing.T) {
	a, b := NewTestClass(), NewTestClass()
	assert.Equal(t, int32(123), a.IntField())
	assert.True(t, a.BoolField())
	assert.Zero(t, a.IntVar)
	assert.Empty(t, a.StringObjectVar)

	a.IntVar = 42
	a.CharVar = 'z'
	assert.Equal(t, int32(42), a.IntVar)
	assert.Zero(t, b.IntVar, "instances must not share mutable fields")
	assert.Zero(t, b.CharVar)
}

func TestThrowingMethods(t *testing.T) {
	c := NewTestClass()
	for i := 0; i < 2; i++ {
		obj, err := CallStaticMethodThrowsException()
		assert.Nil(t, obj)
		assert.ErrorIs(t, err, ErrException)

		obj, err = c.CallMethodThrowsException()
		assert.Nil(t, obj)
		assert.ErrorIs(t, err, ErrException)
	}
}

func TestCharsRoundTrip(t *testing.T) {
	assert.Equal(t, "QtÆ😀", StringOf(CharsOf("QtÆ😀")))
	assert.Len(t, CharsOf("😀"), 2)
}
