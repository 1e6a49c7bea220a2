// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package poly

import (
	"math/big"

	"github.com/0xsoniclabs/polystore/common"
	"github.com/holiman/uint256"
)

// Typed accessors view fixed-width values as booleans, integers or
// addresses. They are conversions of the single 32-byte slot of a key, see
// the conversion functions of the common package for the encodings.

func (d *Dictionary) SetBoolForKey(key common.Key, value bool) (bool, error) {
	return d.SetValueForKey(key, common.BoolToValue(value))
}

func (d *Dictionary) GetBoolForKey(key common.Key) (bool, error) {
	value, err := d.GetValueForKey(key)
	return common.ValueToBool(value), err
}

// SetUintForKey stores an unsigned integer as a big-endian word. A nil
// integer fails with common.ErrNilNumber.
func (d *Dictionary) SetUintForKey(key common.Key, value *uint256.Int) (bool, error) {
	v, err := common.UintToValue(value)
	if err != nil {
		return false, err
	}
	return d.SetValueForKey(key, v)
}

func (d *Dictionary) GetUintForKey(key common.Key) (*uint256.Int, error) {
	value, err := d.GetValueForKey(key)
	if err != nil {
		return nil, err
	}
	return common.ValueToUint(value), nil
}

// SetIntForKey stores a signed integer in two's complement. Integers not
// fitting into 256 bits fail with common.ErrValueOutOfRange, nil integers
// with common.ErrNilNumber, before the dictionary is modified.
func (d *Dictionary) SetIntForKey(key common.Key, value *big.Int) (bool, error) {
	v, err := common.IntToValue(value)
	if err != nil {
		return false, err
	}
	return d.SetValueForKey(key, v)
}

func (d *Dictionary) GetIntForKey(key common.Key) (*big.Int, error) {
	value, err := d.GetValueForKey(key)
	if err != nil {
		return nil, err
	}
	return common.ValueToInt(value), nil
}

func (d *Dictionary) SetAddressForKey(key common.Key, value common.Address) (bool, error) {
	return d.SetValueForKey(key, common.AddressToValue(value))
}

func (d *Dictionary) GetAddressForKey(key common.Key) (common.Address, error) {
	value, err := d.GetValueForKey(key)
	return common.ValueToAddress(value), err
}

// --- typed one-to-many accessors ---

func (d *Dictionary) AddBoolForKey(key common.Key, value bool) (bool, error) {
	return d.AddValueForKey(key, common.BoolToValue(value))
}

func (d *Dictionary) RemoveBoolForKey(key common.Key, value bool) (bool, error) {
	return d.RemoveValueForKey(key, common.BoolToValue(value))
}

func (d *Dictionary) ContainsBoolForKey(key common.Key, value bool) (bool, error) {
	return d.ContainsValueForKey(key, common.BoolToValue(value))
}

func (d *Dictionary) AddUintForKey(key common.Key, value *uint256.Int) (bool, error) {
	v, err := common.UintToValue(value)
	if err != nil {
		return false, err
	}
	return d.AddValueForKey(key, v)
}

func (d *Dictionary) RemoveUintForKey(key common.Key, value *uint256.Int) (bool, error) {
	v, err := common.UintToValue(value)
	if err != nil {
		return false, err
	}
	return d.RemoveValueForKey(key, v)
}

func (d *Dictionary) ContainsUintForKey(key common.Key, value *uint256.Int) (bool, error) {
	v, err := common.UintToValue(value)
	if err != nil {
		return false, err
	}
	return d.ContainsValueForKey(key, v)
}

func (d *Dictionary) AddIntForKey(key common.Key, value *big.Int) (bool, error) {
	v, err := common.IntToValue(value)
	if err != nil {
		return false, err
	}
	return d.AddValueForKey(key, v)
}

func (d *Dictionary) RemoveIntForKey(key common.Key, value *big.Int) (bool, error) {
	v, err := common.IntToValue(value)
	if err != nil {
		return false, err
	}
	return d.RemoveValueForKey(key, v)
}

func (d *Dictionary) ContainsIntForKey(key common.Key, value *big.Int) (bool, error) {
	v, err := common.IntToValue(value)
	if err != nil {
		return false, err
	}
	return d.ContainsValueForKey(key, v)
}

func (d *Dictionary) AddAddressForKey(key common.Key, value common.Address) (bool, error) {
	return d.AddValueForKey(key, common.AddressToValue(value))
}

func (d *Dictionary) RemoveAddressForKey(key common.Key, value common.Address) (bool, error) {
	return d.RemoveValueForKey(key, common.AddressToValue(value))
}

func (d *Dictionary) ContainsAddressForKey(key common.Key, value common.Address) (bool, error) {
	return d.ContainsValueForKey(key, common.AddressToValue(value))
}

// EnumerateAddressesForKey returns the values of a one-to-many fixed key
// viewed as addresses.
func (d *Dictionary) EnumerateAddressesForKey(key common.Key) ([]common.Address, error) {
	values, err := d.EnumerateForKey(key)
	if err != nil {
		return nil, err
	}
	res := make([]common.Address, len(values))
	for i, value := range values {
		res[i] = common.ValueToAddress(value)
	}
	return res, nil
}
