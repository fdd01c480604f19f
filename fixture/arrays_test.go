package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	tests := []struct {
		name string
		in   []int32
		want []int32
	}{
		{"empty", []int32{}, []int32{}},
		{"single", []int32{7}, []int32{7}},
		{"pair", []int32{1, 2}, []int32{2, 1}},
		{"odd", []int32{3, 2, 1}, []int32{1, 2, 3}},
		{"even", []int32{1, 2, 3, 4}, []int32{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StaticReverseIntArray(tt.in)
			assert.Equal(t, tt.want, got)
			if len(tt.in) > 0 {
				assert.Same(t, &tt.in[0], &got[0], "reversal must not reallocate")
			}
		})
	}
}

func TestReverseNil(t *testing.T) {
	assert.Nil(t, Reverse[int64](nil))
}

func assertInvolution[T any](t *testing.T, array []T, reverse func([]T) []T) {
	t.Helper()
	original := append([]T(nil), array...)
	once := reverse(array)
	require.Len(t, once, len(original))
	assert.Same(t, &array[0], &once[0])
	twice := reverse(once)
	assert.Equal(t, original, twice)
}

func TestReverseInvolutionEveryKind(t *testing.T) {
	c := NewTestClass()

	assertInvolution(t, StaticObjectArrayMethod(), StaticReverseObjectArray)
	assertInvolution(t, c.ObjectArrayMethod(), c.ReverseObjectArray)
	assertInvolution(t, StaticStringArrayMethod(), StaticReverseStringArray)
	assertInvolution(t, c.StringArrayMethod(), c.ReverseStringArray)
	assertInvolution(t, []bool{true, false, false}, StaticReverseBooleanArray)
	assertInvolution(t, []bool{true, false}, c.ReverseBooleanArray)
	assertInvolution(t, StaticByteArrayMethod(), StaticReverseByteArray)
	assertInvolution(t, c.ByteArrayMethod(), c.ReverseByteArray)
	assertInvolution(t, StaticCharArrayMethod(), StaticReverseCharArray)
	assertInvolution(t, c.CharArrayMethod(), c.ReverseCharArray)
	assertInvolution(t, StaticShortArrayMethod(), StaticReverseShortArray)
	assertInvolution(t, c.ShortArrayMethod(), c.ReverseShortArray)
	assertInvolution(t, StaticIntArrayMethod(), StaticReverseIntArray)
	assertInvolution(t, c.IntArrayMethod(), c.ReverseIntArray)
	assertInvolution(t, StaticLongArrayMethod(), StaticReverseLongArray)
	assertInvolution(t, c.LongArrayMethod(), c.ReverseLongArray)
	assertInvolution(t, StaticFloatArrayMethod(), StaticReverseFloatArray)
	assertInvolution(t, c.FloatArrayMethod(), c.ReverseFloatArray)
	assertInvolution(t, StaticDoubleArrayMethod(), StaticReverseDoubleArray)
	assertInvolution(t, c.DoubleArrayMethod(), c.ReverseDoubleArray)
}

func TestArrayContents(t *testing.T) {
	c := NewTestClass()
	assert.Equal(t, []string{"First", "Second", "Third"}, StaticStringArrayMethod())
	assert.Equal(t, []bool{true, true, true}, c.BooleanArrayMethod())
	assert.Equal(t, []int8{'a', 'b', 'c'}, StaticByteArrayMethod())
	assert.Equal(t, []Char{'a', 'b', 'c'}, c.CharArrayMethod())
	assert.Equal(t, []int16{3, 2, 1}, StaticShortArrayMethod())
	assert.Equal(t, []int32{3, 2, 1}, c.IntArrayMethod())
	assert.Equal(t, []int64{3, 2, 1}, StaticLongArrayMethod())
	assert.Equal(t, []float32{1, 2, 3}, c.FloatArrayMethod())
	assert.Equal(t, []float64{3, 2, 1}, StaticDoubleArrayMethod())

	reversed := StaticReverseShortArray(StaticShortArrayMethod())
	assert.Equal(t, []int16{1, 2, 3}, reversed)
}

func TestArrayAccessorsAllocateFresh(t *testing.T) {
	a, b := StaticIntArrayMethod(), StaticIntArrayMethod()
	assert.Equal(t, a, b)
	assert.NotSame(t, &a[0], &b[0])

	a[0] = 99
	assert.Equal(t, []int32{3, 2, 1}, StaticIntArrayMethod())
}

func TestObjectArrayElementsAreDistinct(t *testing.T) {
	objs := StaticObjectArrayMethod()
	require.Len(t, objs, 3)
	seen := make(map[Object]bool)
	for _, o := range objs {
		require.IsType(t, &Opaque{}, o)
		assert.False(t, seen[o], "objects must be distinct")
		seen[o] = true
	}
	assert.NotEqual(t, objs[0], StaticObjectArrayMethod()[0])
}
