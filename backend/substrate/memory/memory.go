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

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/common"
)

// Substrate is an in-memory implementation of backend.Substrate.
type Substrate struct {
	data   map[string][]byte
	size   uintptr // the amount of bytes of keys and values
	closed bool
}

// NewSubstrate creates an empty in-memory substrate.
func NewSubstrate() *Substrate {
	return &Substrate{
		data: map[string][]byte{},
	}
}

func (s *Substrate) Get(key []byte) ([]byte, bool, error) {
	if s.closed {
		return nil, false, backend.ErrClosed
	}
	value, found := s.data[string(key)]
	if !found {
		return nil, false, nil
	}
	res := make([]byte, len(value))
	copy(res, value)
	return res, true, nil
}

func (s *Substrate) Has(key []byte) (bool, error) {
	if s.closed {
		return false, backend.ErrClosed
	}
	_, found := s.data[string(key)]
	return found, nil
}

func (s *Substrate) Apply(batch *backend.Batch) error {
	if s.closed {
		return backend.ErrClosed
	}
	for _, op := range batch.Ops() {
		key := string(op.Key)
		if old, found := s.data[key]; found {
			s.size -= uintptr(len(key) + len(old))
		}
		if op.IsDelete() {
			delete(s.data, key)
			continue
		}
		// batches copy their content, so values may be retained
		s.data[key] = op.Value
		s.size += uintptr(len(key) + len(op.Value))
	}
	return nil
}

// Len returns the number of stored records.
func (s *Substrate) Len() int {
	return len(s.data)
}

// Flush does nothing besides checking that the substrate is open.
func (s *Substrate) Flush() error {
	if s.closed {
		return backend.ErrClosed
	}
	return nil
}

// Close marks the substrate closed; the content is dropped.
func (s *Substrate) Close() error {
	s.closed = true
	s.data = nil
	s.size = 0
	return nil
}

func (s *Substrate) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s) + s.size)
	mf.SetNote(fmt.Sprintf("(records: %d)", len(s.data)))
	return mf
}
