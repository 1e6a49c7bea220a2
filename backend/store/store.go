// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"github.com/0xsoniclabs/polystore/common"
)

// Store is a mutable raw mapping from keys to values. Unlike a dictionary,
// it keeps no record of which keys are in use and can not be enumerated.
//
// The type V is the type of the values - fixed-width words or variable-width
// byte strings.
type Store[V any] interface {
	// Set creates or overwrites the mapping of the key to the value.
	Set(key common.Key, value V) error

	// Get returns the value associated with the key. The second result is
	// false if no value is associated, in which case the first is the zero value.
	Get(key common.Key) (V, bool, error)

	// Delete drops the mapping of the key, if present.
	Delete(key common.Key) error

	// provides the size of the store in memory in bytes
	common.MemoryFootprintProvider
}
