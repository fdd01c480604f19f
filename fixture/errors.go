// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"errors"
	"fmt"
)

// ErrException is the generic fault raised by the throwing methods. It
// carries no message payload.
var ErrException = errors.New("exception")

// ErrHookNotInstalled is returned by a trampoline whose hook was never supplied.
var ErrHookNotInstalled = errors.New("fixture: callback hook not installed")

// IndexOutOfRangeError is the bounds fault raised when a write runs past the
// end of the shared character sequence.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Length)
}

// Throwable is a fault value that can be returned like any other object.
type Throwable struct {
	Message string
}

// NewThrowable creates a Throwable carrying msg.
func NewThrowable(msg string) *Throwable {
	return &Throwable{Message: msg}
}

func (t *Throwable) Error() string {
	return t.Message
}
