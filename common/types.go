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

import (
	"fmt"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// WordSize is the size of fixed-width keys and values in bytes.
const WordSize = 32

// AddressSize is the size of an address-like identifier in bytes.
const AddressSize = 20

// Key is the 32-byte key type used by all dictionaries.
type Key [WordSize]byte

// Value is a fixed-width 32-byte value.
type Value [WordSize]byte

// Hash is a 32-byte content hash.
type Hash [WordSize]byte

// Address is a 160-bit identifier stored in the low-order bytes of a Value.
type Address [AddressSize]byte

func (k Key) String() string {
	return hexutil.Encode(k[:])
}

func (v Value) String() string {
	return hexutil.Encode(v[:])
}

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

func (h Hash) ToBytes() []byte {
	return h[:]
}

// String renders the address in its EIP-55 checksum form.
func (a Address) String() string {
	return gethcommon.Address(a).Hex()
}

// KeyFromBytes creates a key from the given bytes, left padding with zeros
// if fewer than 32 bytes are provided. Longer inputs are rejected.
func KeyFromBytes(data []byte) (Key, error) {
	var res Key
	if len(data) > WordSize {
		return res, fmt.Errorf("key too long: %d bytes (max %d)", len(data), WordSize)
	}
	copy(res[WordSize-len(data):], data)
	return res, nil
}

// ValueFromBytes creates a fixed-width value from the given bytes, left
// padding with zeros if fewer than 32 bytes are provided.
func ValueFromBytes(data []byte) (Value, error) {
	var res Value
	if len(data) > WordSize {
		return res, fmt.Errorf("value too long: %d bytes (max %d)", len(data), WordSize)
	}
	copy(res[WordSize-len(data):], data)
	return res, nil
}

// KeyFromNumber creates a key holding the big-endian encoding of the given number.
func KeyFromNumber(i int) Key {
	var res Key
	for j := 0; j < 8; j++ {
		res[WordSize-1-j] = byte(i >> (8 * j))
	}
	return res
}

// HexToAddress parses a hex string into an address, following the
// conventions of go-ethereum (optional 0x prefix, left padding).
func HexToAddress(s string) (Address, error) {
	if !gethcommon.IsHexAddress(s) {
		return Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return Address(gethcommon.HexToAddress(s)), nil
}

// Keccak256 computes the Keccak-256 hash of the given data. It is the
// content hash used to identify variable-width values.
func Keccak256(data []byte) Hash {
	var res Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	hasher.Sum(res[:0])
	return res
}
