package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetShared(t *testing.T) {
	t.Helper()
	ResetShared()
	t.Cleanup(ResetShared)
}

func TestGetStaticCharArrayInitial(t *testing.T) {
	resetShared(t)
	assert.Equal(t, AStringObject, StringOf(GetStaticCharArray()))
	assert.Len(t, GetStaticCharArray(), len(AStringObject))
}

func TestGetStaticCharArrayIsNotACopy(t *testing.T) {
	resetShared(t)
	arr := GetStaticCharArray()
	arr[0] = 'X'
	assert.Equal(t, Char('X'), GetStaticCharArray()[0])
}

func TestMutateStaticCharArray(t *testing.T) {
	resetShared(t)
	require.NoError(t, MutateStaticCharArray([]Char{'X', 'Y'}))

	got := GetStaticCharArray()
	assert.Len(t, got, len(AStringObject))
	assert.Equal(t, "XY"+AStringObject[2:], StringOf(got))
}

func TestMutateStaticCharArrayEmpty(t *testing.T) {
	resetShared(t)
	require.NoError(t, MutateStaticCharArray(nil))
	assert.Equal(t, AStringObject, StringOf(GetStaticCharArray()))
}

func TestMutateStaticCharArrayOutOfRange(t *testing.T) {
	resetShared(t)
	ReplaceStaticCharArray([]Char{'a', 'b'})

	err := MutateStaticCharArray([]Char{'x', 'y', 'z'})
	var bounds *IndexOutOfRangeError
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, 2, bounds.Index)
	assert.Equal(t, 2, bounds.Length)
	assert.Equal(t, []Char{'x', 'y'}, GetStaticCharArray(), "writes before the fault stay applied")
}

func TestReplaceStaticCharArray(t *testing.T) {
	resetShared(t)
	old := GetStaticCharArray()
	replacement := CharsOf("short")
	ReplaceStaticCharArray(replacement)

	got := GetStaticCharArray()
	assert.Equal(t, replacement, got)
	assert.Same(t, &replacement[0], &got[0])
	assert.Equal(t, AStringObject, StringOf(old), "stale references keep the old storage")

	require.NoError(t, MutateStaticCharArray([]Char{'S'}))
	assert.Equal(t, "Short", StringOf(replacement))
}

func TestResetShared(t *testing.T) {
	resetShared(t)
	Shared().IntVar = 5
	Shared().StringObjectVar = "set"
	ReplaceStaticCharArray(nil)

	ResetShared()
	assert.Zero(t, Shared().IntVar)
	assert.Empty(t, Shared().StringObjectVar)
	assert.Equal(t, AStringObject, StringOf(GetStaticCharArray()))
}
