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
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestBoolToValue_RoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		require.Equal(t, b, ValueToBool(BoolToValue(b)))
	}
}

func TestValueToBool_AnyNonZeroBitIsTrue(t *testing.T) {
	require.False(t, ValueToBool(Value{}))
	for i := 0; i < WordSize; i++ {
		v := Value{}
		v[i] = 0x80
		require.True(t, ValueToBool(v), "byte %d", i)
	}
}

func TestUintToValue_IsBigEndian(t *testing.T) {
	v, err := UintToValue(uint256.NewInt(0x0102))
	require.NoError(t, err)
	require.Equal(t, Value{30: 0x01, 31: 0x02}, v)
}

func TestUintToValue_RoundTrip(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	for _, i := range []*uint256.Int{uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(1 << 63), max} {
		v, err := UintToValue(i)
		require.NoError(t, err)
		require.Equal(t, i, ValueToUint(v))
	}
}

func TestIntToValue_NegativeNumbersUseTwosComplement(t *testing.T) {
	v, err := IntToValue(big.NewInt(-1))
	require.NoError(t, err)
	for _, b := range v {
		require.Equal(t, byte(0xff), b)
	}

	v, err = IntToValue(big.NewInt(-2))
	require.NoError(t, err)
	require.Equal(t, byte(0xfe), v[WordSize-1])
	require.Equal(t, byte(0xff), v[0])
}

func TestIntToValue_RoundTrip(t *testing.T) {
	tests := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		big.NewInt(12345678),
		big.NewInt(-12345678),
		new(big.Int).Set(minInt256),
		new(big.Int).Set(maxInt256),
	}
	for _, i := range tests {
		v, err := IntToValue(i)
		require.NoError(t, err)
		require.Equal(t, 0, i.Cmp(ValueToInt(v)), "want %v, got %v", i, ValueToInt(v))
	}
}

func TestIntToValue_RejectsOutOfRangeNumbers(t *testing.T) {
	tooLarge := new(big.Int).Add(maxInt256, big.NewInt(1))
	tooSmall := new(big.Int).Sub(minInt256, big.NewInt(1))
	for _, i := range []*big.Int{tooLarge, tooSmall} {
		_, err := IntToValue(i)
		require.ErrorIs(t, err, ErrValueOutOfRange)
	}
}

func TestUintToValue_AndIntToValue_RejectNil(t *testing.T) {
	_, err := UintToValue(nil)
	require.ErrorIs(t, err, ErrNilNumber)
	_, err = IntToValue(nil)
	require.ErrorIs(t, err, ErrNilNumber)
}

func TestValueToInt_AndValueToUint_ShareBits(t *testing.T) {
	v, err := IntToValue(big.NewInt(-1))
	require.NoError(t, err)
	require.Equal(t, new(uint256.Int).SetAllOne(), ValueToUint(v))
}

func TestAddressToValue_UsesLowOrderBytes(t *testing.T) {
	a := Address{0: 0xaa, 19: 0xbb}
	v := AddressToValue(a)
	require.Equal(t, Value{12: 0xaa, 31: 0xbb}, v)
	require.Equal(t, a, ValueToAddress(v))
}

func TestValueToAddress_IgnoresHighOrderBytes(t *testing.T) {
	v := Value{0: 0xff, 11: 0xff, 12: 0x01}
	require.Equal(t, Address{0: 0x01}, ValueToAddress(v))
}
