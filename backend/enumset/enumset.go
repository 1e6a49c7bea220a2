// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package enumset

//go:generate mockgen -source enumset.go -destination enumset_mocks.go -package enumset

import (
	"errors"

	"github.com/0xsoniclabs/polystore/common"
)

// ErrOutOfRange is returned when accessing a position beyond the end of a set.
var ErrOutOfRange = errors.New("index out of range")

// Set is a collection of unique values supporting constant time insertion,
// removal and membership tests, as well as enumeration of its elements.
//
// Elements are kept in an array. A value is removed by moving the last
// element of the array into the slot of the removed value, so the order
// of elements is unspecified and may change with any removal. Positions are
// only stable between modifications.
//
// The type V is the type of the elements. Whether two elements are equal is
// decided by a common.Identity of V.
type Set[V any] interface {
	// Add inserts the value. It returns false if the value was already present.
	Add(value V) (bool, error)

	// Remove deletes the value. It returns false if the value was not present.
	Remove(value V) (bool, error)

	// Contains reports whether the value is present.
	Contains(value V) (bool, error)

	// Length returns the number of elements.
	Length() (uint64, error)

	// Get returns the element at the given position, or ErrOutOfRange if
	// position >= Length().
	Get(position uint64) (V, error)

	// Enumerate returns a copy of all elements. The runtime is linear in the
	// size of the set; large sets should be paged using Length and Get.
	Enumerate() ([]V, error)

	// Clear removes all elements.
	Clear() error

	// provides the size of the set in memory in bytes
	common.MemoryFootprintProvider
}
