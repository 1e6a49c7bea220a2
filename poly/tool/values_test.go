// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"testing"

	"github.com/0xsoniclabs/polystore/common"
	"github.com/stretchr/testify/require"
)

func TestParseKey_HexKeysAreLeftPadded(t *testing.T) {
	key, err := parseKey("0x0102")
	require.NoError(t, err)
	require.Equal(t, common.Key{30: 1, 31: 2}, key)
}

func TestParseKey_NamesAreHashed(t *testing.T) {
	key, err := parseKey("alice")
	require.NoError(t, err)
	require.Equal(t, common.Key(common.Keccak256([]byte("alice"))), key)

	other, err := parseKey("bob")
	require.NoError(t, err)
	require.NotEqual(t, key, other)
}

func TestParseFixed_RoundTripsThroughFormat(t *testing.T) {
	tests := []struct {
		t     valueType
		input string
	}{
		{wordType, common.Value{31: 0x2a}.String()},
		{boolType, "true"},
		{boolType, "false"},
		{uintType, "1234567890123456789012345678901234567890"},
		{intType, "-42"},
		{addressType, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
	}
	for _, test := range tests {
		value, err := parseFixed(test.t, test.input)
		require.NoError(t, err, "%v %v", test.t, test.input)
		require.Equal(t, test.input, formatFixed(test.t, value))
	}
}

func TestParseFixed_HexUnsignedIntegers(t *testing.T) {
	value, err := parseFixed(uintType, "0xff")
	require.NoError(t, err)
	require.Equal(t, common.Value{31: 0xff}, value)
}

func TestParseValueType_RejectsUnknownTypes(t *testing.T) {
	_, err := parseValueType("float")
	require.Error(t, err)
	got, err := parseValueType("address")
	require.NoError(t, err)
	require.Equal(t, addressType, got)
}

func TestParseBytes(t *testing.T) {
	data, err := parseBytes("0x00ff")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0xff}, data)

	data, err = parseBytes("text")
	require.NoError(t, err)
	require.Equal(t, []byte("text"), data)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, `"text"`, formatBytes([]byte("text")))
	require.Equal(t, "0xff00", formatBytes([]byte{0xff, 0x00}))
}
