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
	"github.com/0xsoniclabs/polystore/backend/enumset"
	"github.com/0xsoniclabs/polystore/common"
)

// Record tags of a set within its namespace:
//
//	<ns> 'L'                  -> number of elements
//	<ns> 'V' <position:8>     -> element at 0-based position
//	<ns> 'I' <identity:32>    -> 1-based position of the element
const (
	lengthTag = 'L'
	valueTag  = 'V'
	indexTag  = 'I'
)

// Set is an enumset.Set laid out on a backend.Substrate. Each modification
// is written as a single batch, so the set is never observed in a partially
// updated state.
type Set[V any] struct {
	substrate  backend.Substrate
	namespace  backend.Namespace
	serializer common.Serializer[V]
	identity   common.Identity[V]
}

// NewSet creates a view on the set stored in the given namespace of the
// substrate. Creating a view performs no I/O; a namespace without records
// is an empty set.
func NewSet[V any](
	substrate backend.Substrate,
	namespace backend.Namespace,
	serializer common.Serializer[V],
	identity common.Identity[V],
) *Set[V] {
	return &Set[V]{
		substrate:  substrate,
		namespace:  namespace,
		serializer: serializer,
		identity:   identity,
	}
}

func (s *Set[V]) Add(value V) (bool, error) {
	id := s.identity.Of(value)
	position, err := s.getPosition(id)
	if err != nil || position != 0 {
		return false, err
	}
	length, err := s.Length()
	if err != nil {
		return false, err
	}

	var batch backend.Batch
	batch.Put(s.namespace.PositionRecord(valueTag, length), s.encode(value))
	batch.Put(s.indexKey(id), backend.EncodeUint64(length+1))
	batch.Put(s.lengthKey(), backend.EncodeUint64(length+1))
	if err := s.substrate.Apply(&batch); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Set[V]) Remove(value V) (bool, error) {
	id := s.identity.Of(value)
	position, err := s.getPosition(id)
	if err != nil || position == 0 {
		return false, err
	}
	length, err := s.Length()
	if err != nil {
		return false, err
	}
	if length < position {
		return false, fmt.Errorf("corrupted set: position %d exceeds length %d", position, length)
	}

	toDelete := position - 1
	last := length - 1

	var batch backend.Batch
	if toDelete != last {
		moved, found, err := s.substrate.Get(s.namespace.PositionRecord(valueTag, last))
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("corrupted set: missing element at position %d", last)
		}
		movedValue, err := s.decode(moved)
		if err != nil {
			return false, err
		}
		batch.Put(s.namespace.PositionRecord(valueTag, toDelete), moved)
		batch.Put(s.indexKey(s.identity.Of(movedValue)), backend.EncodeUint64(toDelete+1))
	}
	batch.Delete(s.namespace.PositionRecord(valueTag, last))
	batch.Delete(s.indexKey(id))
	batch.Put(s.lengthKey(), backend.EncodeUint64(last))
	if err := s.substrate.Apply(&batch); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Set[V]) Contains(value V) (bool, error) {
	return s.substrate.Has(s.indexKey(s.identity.Of(value)))
}

func (s *Set[V]) Length() (uint64, error) {
	data, found, err := s.substrate.Get(s.lengthKey())
	if err != nil || !found {
		return 0, err
	}
	return backend.DecodeUint64(data)
}

func (s *Set[V]) Get(position uint64) (V, error) {
	var zero V
	length, err := s.Length()
	if err != nil {
		return zero, err
	}
	if position >= length {
		return zero, fmt.Errorf("%w: position %d, length %d", enumset.ErrOutOfRange, position, length)
	}
	return s.get(position)
}

func (s *Set[V]) get(position uint64) (V, error) {
	var zero V
	data, found, err := s.substrate.Get(s.namespace.PositionRecord(valueTag, position))
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("corrupted set: missing element at position %d", position)
	}
	return s.decode(data)
}

func (s *Set[V]) Enumerate() ([]V, error) {
	length, err := s.Length()
	if err != nil {
		return nil, err
	}
	res := make([]V, 0, length)
	for i := uint64(0); i < length; i++ {
		value, err := s.get(i)
		if err != nil {
			return nil, err
		}
		res = append(res, value)
	}
	return res, nil
}

// Clear removes all elements in a single batch.
func (s *Set[V]) Clear() error {
	values, err := s.Enumerate()
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	var batch backend.Batch
	for i, value := range values {
		batch.Delete(s.namespace.PositionRecord(valueTag, uint64(i)))
		batch.Delete(s.indexKey(s.identity.Of(value)))
	}
	batch.Delete(s.lengthKey())
	return s.substrate.Apply(&batch)
}

// GetMemoryFootprint provides the size of the view in memory in bytes; the
// elements themselves are owned by the substrate.
func (s *Set[V]) GetMemoryFootprint() *common.MemoryFootprint {
	return common.NewMemoryFootprint(unsafe.Sizeof(*s) + uintptr(len(s.namespace)))
}

func (s *Set[V]) getPosition(id common.Hash) (uint64, error) {
	data, found, err := s.substrate.Get(s.indexKey(id))
	if err != nil || !found {
		return 0, err
	}
	return backend.DecodeUint64(data)
}

func (s *Set[V]) lengthKey() []byte {
	return s.namespace.Record(lengthTag)
}

func (s *Set[V]) indexKey(id common.Hash) []byte {
	return s.namespace.Record(indexTag, id[:]...)
}

func (s *Set[V]) encode(value V) []byte {
	data := s.serializer.ToBytes(value)
	if s.serializer.Size() == common.VariableSize {
		return backend.EncodePayload(data)
	}
	return data
}

func (s *Set[V]) decode(data []byte) (V, error) {
	if s.serializer.Size() == common.VariableSize {
		payload, err := backend.DecodePayload(data)
		if err != nil {
			var zero V
			return zero, err
		}
		return s.serializer.FromBytes(payload), nil
	}
	if len(data) != s.serializer.Size() {
		var zero V
		return zero, fmt.Errorf("corrupted set: element of %d bytes, expected %d", len(data), s.serializer.Size())
	}
	return s.serializer.FromBytes(data), nil
}
