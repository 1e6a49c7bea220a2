// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"encoding/binary"
	"fmt"

	"github.com/0xsoniclabs/polystore/common"
)

// TableSpace divides the key space of a substrate among independent
// structures sharing the same substrate.
type TableSpace byte

const (
	// OneToOneFixedTable hosts the dictionary of fixed-width scalar values.
	OneToOneFixedTable TableSpace = 'f'
	// OneToOneVariableTable hosts the dictionary of variable-width scalar values.
	OneToOneVariableTable TableSpace = 'v'
	// OneToManyFixedTable hosts the dictionary of fixed-width value sets.
	OneToManyFixedTable TableSpace = 'F'
	// OneToManyVariableTable hosts the dictionary of variable-width value sets.
	OneToManyVariableTable TableSpace = 'V'
	// TestTable is reserved for tests.
	TestTable TableSpace = 't'
)

func (t TableSpace) String() string {
	return fmt.Sprintf("table-%c", byte(t))
}

// Namespace is the key prefix of a single structure on a substrate. The
// namespaces of structures sharing a substrate must be prefix free: no
// namespace may be a prefix of any key of another structure.
type Namespace []byte

// NewNamespace creates the root namespace of the given table.
func NewNamespace(table TableSpace) Namespace {
	return Namespace{byte(table)}
}

// Sub derives a nested namespace identified by the given tag.
func (n Namespace) Sub(tag byte) Namespace {
	res := make(Namespace, 0, len(n)+1)
	res = append(res, n...)
	return append(res, tag)
}

// WithKey derives a nested namespace identified by the given key. Since all
// keys have the same length, namespaces derived this way are prefix free.
func (n Namespace) WithKey(key common.Key) Namespace {
	res := make(Namespace, 0, len(n)+len(key))
	res = append(res, n...)
	return append(res, key[:]...)
}

// Record forms the substrate key of a record within this namespace.
func (n Namespace) Record(tag byte, suffix ...byte) []byte {
	res := make([]byte, 0, len(n)+1+len(suffix))
	res = append(res, n...)
	res = append(res, tag)
	return append(res, suffix...)
}

// PositionRecord forms the substrate key of a record addressed by a position.
func (n Namespace) PositionRecord(tag byte, position uint64) []byte {
	return binary.BigEndian.AppendUint64(n.Record(tag), position)
}

// EncodeUint64 is the encoding used for counters and positions on a substrate.
func EncodeUint64(value uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, value)
}

// DecodeUint64 reverses EncodeUint64.
func DecodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid encoded integer of length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
