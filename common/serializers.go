// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

// VariableSize is reported by serializers of values without a fixed width.
const VariableSize = -1

// Serializer allows to convert the type to a slice of bytes and back.
type Serializer[T any] interface {
	// ToBytes serializes the type to bytes.
	ToBytes(T) []byte
	// CopyBytes serializes the type into the provided slice, which needs to
	// have at least Size() bytes for fixed-width types.
	CopyBytes(T, []byte)
	// FromBytes deserializes the type from bytes.
	FromBytes([]byte) T
	// Size is the size of the serialized type in bytes, or VariableSize.
	Size() int
}

// Identity derives the value used to decide equality of set members. Two
// values are considered equal iff their identities are equal.
type Identity[T any] interface {
	// Of returns the identity of the value.
	Of(T) Hash
	// Clone returns a copy of the value sharing no memory with the original.
	Clone(T) T
}

// WordSerializer serializes any 32-byte word type.
type WordSerializer[T ~[WordSize]byte] struct{}

func (WordSerializer[T]) ToBytes(value T) []byte {
	res := make([]byte, WordSize)
	copy(res, value[:])
	return res
}

func (WordSerializer[T]) CopyBytes(value T, out []byte) {
	copy(out, value[:])
}

func (WordSerializer[T]) FromBytes(bytes []byte) T {
	var res T
	copy(res[:], bytes)
	return res
}

func (WordSerializer[T]) Size() int {
	return WordSize
}

// KeySerializer is the serializer of dictionary keys.
type KeySerializer = WordSerializer[Key]

// ValueSerializer is the serializer of fixed-width values.
type ValueSerializer = WordSerializer[Value]

// BytesSerializer serializes variable-width byte strings. Results are
// always copies, so callers may retain and modify them.
type BytesSerializer struct{}

func (BytesSerializer) ToBytes(value []byte) []byte {
	return clone(value)
}

func (BytesSerializer) CopyBytes(value []byte, out []byte) {
	copy(out, value)
}

func (BytesSerializer) FromBytes(bytes []byte) []byte {
	return clone(bytes)
}

func (BytesSerializer) Size() int {
	return VariableSize
}

// WordIdentity identifies words by their raw content.
type WordIdentity[T ~[WordSize]byte] struct{}

func (WordIdentity[T]) Of(value T) Hash {
	return Hash(value)
}

func (WordIdentity[T]) Clone(value T) T {
	return value
}

// KeyIdentity is the identity of dictionary keys.
type KeyIdentity = WordIdentity[Key]

// ValueIdentity is the identity of fixed-width values.
type ValueIdentity = WordIdentity[Value]

// BytesIdentity identifies variable-width values by their Keccak-256 hash.
type BytesIdentity struct{}

func (BytesIdentity) Of(value []byte) Hash {
	return Keccak256(value)
}

func (BytesIdentity) Clone(value []byte) []byte {
	return clone(value)
}

func clone(data []byte) []byte {
	res := make([]byte, len(data))
	copy(res, data)
	return res
}
