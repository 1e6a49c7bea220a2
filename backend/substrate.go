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

//go:generate mockgen -source substrate.go -destination substrate_mocks.go -package backend

import (
	"errors"

	"github.com/0xsoniclabs/polystore/common"
)

// ErrClosed is returned when a substrate is used after it has been closed.
var ErrClosed = errors.New("substrate closed")

// Substrate is the persistent key/value storage the persistent data
// structures are laid out on. Single reads are served by Get and Has, while
// all modifications are grouped into batches which are applied atomically:
// either all updates of a batch become visible, or none of them.
type Substrate interface {
	// Get returns the value stored for the key. The second result is false
	// if there is no such key.
	Get(key []byte) ([]byte, bool, error)

	// Has reports whether a value is stored for the key.
	Has(key []byte) (bool, error)

	// Apply atomically applies all operations of the batch in order.
	Apply(batch *Batch) error

	// provides the size of the substrate in memory in bytes
	common.MemoryFootprintProvider

	// Also, substrates need to be flush and closable.
	common.FlushAndCloser
}

// Batch collects a sequence of updates to be applied to a substrate.
type Batch struct {
	ops []BatchOp
}

// BatchOp is a single update of a batch. A nil Value marks a deletion.
type BatchOp struct {
	Key   []byte
	Value []byte
}

// IsDelete reports whether this operation deletes its key.
func (o BatchOp) IsDelete() bool {
	return o.Value == nil
}

// Put records the insertion or update of the given key. Both key and value
// are copied.
func (b *Batch) Put(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, BatchOp{Key: copyOf(key), Value: v})
}

// Delete records the deletion of the given key.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, BatchOp{Key: copyOf(key)})
}

// Len returns the number of recorded operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Ops returns the recorded operations in recording order.
func (b *Batch) Ops() []BatchOp {
	return b.ops
}

// Reset drops all recorded operations.
func (b *Batch) Reset() {
	b.ops = b.ops[:0]
}

func copyOf(data []byte) []byte {
	res := make([]byte, len(data))
	copy(res, data)
	return res
}
