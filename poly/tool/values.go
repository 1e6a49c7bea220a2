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
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/0xsoniclabs/polystore/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// valueType selects how fixed-width values are written on the command line.
type valueType string

const (
	wordType    valueType = "word"
	boolType    valueType = "bool"
	uintType    valueType = "uint"
	intType     valueType = "int"
	addressType valueType = "address"
)

func parseValueType(s string) (valueType, error) {
	switch t := valueType(s); t {
	case wordType, boolType, uintType, intType, addressType:
		return t, nil
	}
	return "", fmt.Errorf("unknown value type %q", s)
}

// parseKey accepts hex keys with 0x prefix; any other string is hashed into
// a key.
func parseKey(s string) (common.Key, error) {
	if strings.HasPrefix(s, "0x") {
		data, err := hexutil.Decode(s)
		if err != nil {
			return common.Key{}, fmt.Errorf("invalid key %q: %w", s, err)
		}
		return common.KeyFromBytes(data)
	}
	return common.Key(common.Keccak256([]byte(s))), nil
}

func parseFixed(t valueType, s string) (common.Value, error) {
	switch t {
	case boolType:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return common.Value{}, err
		}
		return common.BoolToValue(b), nil
	case uintType:
		var i *uint256.Int
		var err error
		if strings.HasPrefix(s, "0x") {
			i, err = uint256.FromHex(s)
		} else {
			i, err = uint256.FromDecimal(s)
		}
		if err != nil {
			return common.Value{}, fmt.Errorf("invalid unsigned integer %q: %w", s, err)
		}
		return common.UintToValue(i)
	case intType:
		i, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return common.Value{}, fmt.Errorf("invalid integer %q", s)
		}
		return common.IntToValue(i)
	case addressType:
		a, err := common.HexToAddress(s)
		if err != nil {
			return common.Value{}, err
		}
		return common.AddressToValue(a), nil
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return common.Value{}, fmt.Errorf("invalid word %q: %w", s, err)
	}
	return common.ValueFromBytes(data)
}

func formatFixed(t valueType, v common.Value) string {
	switch t {
	case boolType:
		return strconv.FormatBool(common.ValueToBool(v))
	case uintType:
		return common.ValueToUint(v).Dec()
	case intType:
		return common.ValueToInt(v).String()
	case addressType:
		return common.ValueToAddress(v).String()
	}
	return v.String()
}

// parseBytes accepts hex strings with 0x prefix; any other string is taken
// verbatim.
func parseBytes(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		return hexutil.Decode(s)
	}
	return []byte(s), nil
}

func formatBytes(data []byte) string {
	if utf8.Valid(data) {
		return strconv.Quote(string(data))
	}
	return hexutil.Encode(data)
}
