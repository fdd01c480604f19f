// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

// SharedState holds the class-level variables. The harness reads and writes
// the exported fields directly.
type SharedState struct {
	ByteVar         int8
	ShortVar        int16
	IntVar          int32
	LongVar         int64
	FloatVar        float32
	DoubleVar       float64
	BooleanVar      bool
	CharVar         Char
	StringObjectVar string

	charArray []Char
}

var shared = newSharedState()

func newSharedState() *SharedState {
	return &SharedState{charArray: CharsOf(AStringObject)}
}

// Shared returns the process-wide class-level state.
func Shared() *SharedState {
	return shared
}

// ResetShared zeroes the shared variables and restores the shared character
// sequence to the characters of AStringObject. References previously
// obtained from GetStaticCharArray keep pointing at the old storage.
func ResetShared() {
	*shared = *newSharedState()
}

// GetStaticCharArray returns the shared character sequence itself, not a copy.
func GetStaticCharArray() []Char {
	return shared.charArray
}

// MutateStaticCharArray overwrites the shared sequence index-for-index with
// values. Writes stop at the first index past the end of the shared
// sequence, which is reported as an *IndexOutOfRangeError; earlier writes
// stay applied. The length of the shared sequence never changes.
func MutateStaticCharArray(values []Char) error {
	dst := shared.charArray
	for i, v := range values {
		if i >= len(dst) {
			return &IndexOutOfRangeError{Index: i, Length: len(dst)}
		}
		dst[i] = v
	}
	return nil
}

// ReplaceStaticCharArray adopts array as the shared sequence without copying.
func ReplaceStaticCharArray(array []Char) {
	shared.charArray = array
}
