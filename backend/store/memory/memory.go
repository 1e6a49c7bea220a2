// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/polystore/common"
)

// Store is an in-memory store.Store implementation - it maps keys to values
type Store[V any] struct {
	data     map[common.Key]V
	identity common.Identity[V] // used to copy values in and out of the store
}

// NewStore constructs a new instance of Store.
func NewStore[V any](identity common.Identity[V]) *Store[V] {
	return &Store[V]{
		data:     map[common.Key]V{},
		identity: identity,
	}
}

// Set a value of an item
func (m *Store[V]) Set(key common.Key, value V) error {
	m.data[key] = m.identity.Clone(value)
	return nil
}

// Get a value of the item (or the zero value, if not defined)
func (m *Store[V]) Get(key common.Key) (V, bool, error) {
	value, found := m.data[key]
	if !found {
		return value, false, nil
	}
	return m.identity.Clone(value), true, nil
}

// Delete the value of an item
func (m *Store[V]) Delete(key common.Key) error {
	delete(m.data, key)
	return nil
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (m *Store[V]) GetMemoryFootprint() *common.MemoryFootprint {
	entrySize := unsafe.Sizeof(struct {
		key   common.Key
		value V
	}{})
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*m) + uintptr(len(m.data))*entrySize)
	mf.SetNote(fmt.Sprintf("(items: %d)", len(m.data)))
	return mf
}
