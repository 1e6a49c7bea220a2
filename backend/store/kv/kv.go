// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kv

import (
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/common"
)

// valueTag prefixes the value records of a store within its namespace.
const valueTag = 'R'

// Store is a store.Store laid out on a backend.Substrate, one record per key.
type Store[V any] struct {
	substrate  backend.Substrate
	namespace  backend.Namespace
	serializer common.Serializer[V]
}

// NewStore creates a view on the store located in the given namespace.
func NewStore[V any](substrate backend.Substrate, namespace backend.Namespace, serializer common.Serializer[V]) *Store[V] {
	return &Store[V]{
		substrate:  substrate,
		namespace:  namespace,
		serializer: serializer,
	}
}

func (m *Store[V]) Set(key common.Key, value V) error {
	data := m.serializer.ToBytes(value)
	if m.serializer.Size() == common.VariableSize {
		data = backend.EncodePayload(data)
	}
	var batch backend.Batch
	batch.Put(m.recordKey(key), data)
	return m.substrate.Apply(&batch)
}

func (m *Store[V]) Get(key common.Key) (value V, found bool, err error) {
	data, found, err := m.substrate.Get(m.recordKey(key))
	if err != nil || !found {
		return value, false, err
	}
	if m.serializer.Size() == common.VariableSize {
		data, err = backend.DecodePayload(data)
		if err != nil {
			return value, false, err
		}
	} else if len(data) != m.serializer.Size() {
		return value, false, fmt.Errorf("corrupted store: value of %d bytes, expected %d", len(data), m.serializer.Size())
	}
	return m.serializer.FromBytes(data), true, nil
}

func (m *Store[V]) Delete(key common.Key) error {
	var batch backend.Batch
	batch.Delete(m.recordKey(key))
	return m.substrate.Apply(&batch)
}

func (m *Store[V]) GetMemoryFootprint() *common.MemoryFootprint {
	return common.NewMemoryFootprint(unsafe.Sizeof(*m) + uintptr(len(m.namespace)))
}

func (m *Store[V]) recordKey(key common.Key) []byte {
	return m.namespace.Record(valueTag, key[:]...)
}
