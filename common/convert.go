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
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// The functions in this file reinterpret the bits of a single 32-byte Value.
// No conversion loses information within the documented domain, so a value
// written through one accessor can always be read back through the same one.

// ErrValueOutOfRange is returned when a number can not be represented in a
// 32-byte word.
var ErrValueOutOfRange = errors.New("value out of range")

// ErrNilNumber is returned when converting a nil integer.
var ErrNilNumber = errors.New("nil number")

var (
	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
)

// BoolToValue encodes true as 1 and false as 0.
func BoolToValue(b bool) Value {
	var res Value
	if b {
		res[WordSize-1] = 1
	}
	return res
}

// ValueToBool reports whether any bit of the value is set.
func ValueToBool(v Value) bool {
	return v != Value{}
}

// UintToValue stores the unsigned integer as a big-endian word. A nil
// integer is rejected with ErrNilNumber.
func UintToValue(i *uint256.Int) (Value, error) {
	if i == nil {
		return Value{}, ErrNilNumber
	}
	return Value(i.Bytes32()), nil
}

// ValueToUint interprets the word as a big-endian unsigned integer.
func ValueToUint(v Value) *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

// IntToValue stores a signed integer in two's complement. Integers outside
// of [-2^255, 2^255-1] are rejected with ErrValueOutOfRange, nil with
// ErrNilNumber.
func IntToValue(i *big.Int) (Value, error) {
	if i == nil {
		return Value{}, ErrNilNumber
	}
	if i.Cmp(minInt256) < 0 || i.Cmp(maxInt256) > 0 {
		return Value{}, fmt.Errorf("%w: %v does not fit into a signed 256-bit integer", ErrValueOutOfRange, i)
	}
	res, overflow := uint256.FromBig(new(big.Int).Abs(i))
	if overflow {
		return Value{}, fmt.Errorf("%w: %v", ErrValueOutOfRange, i)
	}
	if i.Sign() < 0 {
		res.Neg(res)
	}
	return Value(res.Bytes32()), nil
}

// ValueToInt interprets the word as a two's complement signed integer.
func ValueToInt(v Value) *big.Int {
	u := ValueToUint(v)
	if u.Sign() >= 0 {
		return u.ToBig()
	}
	abs := new(uint256.Int).Neg(u)
	return new(big.Int).Neg(abs.ToBig())
}

// AddressToValue places the address in the low-order 20 bytes of the word.
func AddressToValue(a Address) Value {
	var res Value
	copy(res[WordSize-AddressSize:], a[:])
	return res
}

// ValueToAddress extracts the low-order 20 bytes of the word.
func ValueToAddress(v Value) Address {
	var res Address
	copy(res[:], v[WordSize-AddressSize:])
	return res
}
