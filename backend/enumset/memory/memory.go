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

	"github.com/0xsoniclabs/polystore/backend/enumset"
	"github.com/0xsoniclabs/polystore/common"
)

// Set is an in-memory implementation of enumset.Set.
type Set[V any] struct {
	values   []V
	index    map[common.Hash]uint64 // < identity of value -> 1-based position in values
	identity common.Identity[V]
}

// NewSet creates an empty set using the given identity to compare elements.
func NewSet[V any](identity common.Identity[V]) *Set[V] {
	return &Set[V]{
		index:    map[common.Hash]uint64{},
		identity: identity,
	}
}

func (s *Set[V]) Add(value V) (bool, error) {
	id := s.identity.Of(value)
	if s.index[id] != 0 {
		return false, nil
	}
	s.values = append(s.values, s.identity.Clone(value))
	s.index[id] = uint64(len(s.values))
	return true, nil
}

func (s *Set[V]) Remove(value V) (bool, error) {
	id := s.identity.Of(value)
	position := s.index[id]
	if position == 0 {
		return false, nil
	}

	toDelete := position - 1
	last := uint64(len(s.values) - 1)
	if toDelete != last {
		moved := s.values[last]
		s.values[toDelete] = moved
		s.index[s.identity.Of(moved)] = toDelete + 1
	}

	var zero V
	s.values[last] = zero
	s.values = s.values[:last]
	delete(s.index, id)
	return true, nil
}

func (s *Set[V]) Contains(value V) (bool, error) {
	return s.index[s.identity.Of(value)] != 0, nil
}

func (s *Set[V]) Length() (uint64, error) {
	return uint64(len(s.values)), nil
}

func (s *Set[V]) Get(position uint64) (V, error) {
	if position >= uint64(len(s.values)) {
		var zero V
		return zero, fmt.Errorf("%w: position %d, length %d", enumset.ErrOutOfRange, position, len(s.values))
	}
	return s.identity.Clone(s.values[position]), nil
}

func (s *Set[V]) Enumerate() ([]V, error) {
	res := make([]V, len(s.values))
	for i, value := range s.values {
		res[i] = s.identity.Clone(value)
	}
	return res, nil
}

func (s *Set[V]) Clear() error {
	s.values = nil
	s.index = map[common.Hash]uint64{}
	return nil
}

// GetMemoryFootprint provides the size of the set in memory in bytes.
func (s *Set[V]) GetMemoryFootprint() *common.MemoryFootprint {
	var value V
	indexEntrySize := unsafe.Sizeof(struct {
		id  common.Hash
		pos uint64
	}{})
	size := unsafe.Sizeof(*s) +
		uintptr(cap(s.values))*unsafe.Sizeof(value) +
		uintptr(len(s.index))*indexEntrySize
	mf := common.NewMemoryFootprint(size)
	mf.SetNote(fmt.Sprintf("(items: %d)", len(s.values)))
	return mf
}
