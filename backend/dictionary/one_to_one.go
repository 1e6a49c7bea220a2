// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dictionary

import (
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/backend/enumset"
	"github.com/0xsoniclabs/polystore/backend/store"
	"github.com/0xsoniclabs/polystore/common"
)

// OneToOne maps keys to single values. A value is only meaningful while its
// key is registered in the key set; removing a key also drops its value.
type OneToOne[V any] struct {
	keys   enumset.Set[common.Key]
	values store.Store[V]
}

// NewOneToOne creates the dictionary located in the given namespace.
func NewOneToOne[V any](backing Backing[V], ns backend.Namespace) *OneToOne[V] {
	return newOneToOne[V](backing.NewKeySet(ns.Sub(keysTag)), backing.NewStore(ns.Sub(dataTag)))
}

func newOneToOne[V any](keys enumset.Set[common.Key], values store.Store[V]) *OneToOne[V] {
	return &OneToOne[V]{
		keys:   keys,
		values: values,
	}
}

// SetValueForKey sets the value of the key, registering the key if needed.
// The result reports whether the key was newly added, not whether the value
// changed.
func (d *OneToOne[V]) SetValueForKey(key common.Key, value V) (bool, error) {
	if err := d.values.Set(key, value); err != nil {
		return false, err
	}
	return d.keys.Add(key)
}

// GetValueForKey returns the value of the key or ErrKeyNotFound.
func (d *OneToOne[V]) GetValueForKey(key common.Key) (V, error) {
	var zero V
	contains, err := d.keys.Contains(key)
	if err != nil {
		return zero, err
	}
	if !contains {
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	value, found, err := d.values.Get(key)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("inconsistent dictionary: no value for registered key %v", key)
	}
	return value, nil
}

// RemoveKey removes the key and its value. It returns false if the key was
// not present. The key is unregistered first; a value left behind by a
// failed deletion is unreachable and overwritten when the key is set again.
func (d *OneToOne[V]) RemoveKey(key common.Key) (bool, error) {
	removed, err := d.keys.Remove(key)
	if err != nil || !removed {
		return false, err
	}
	if err := d.values.Delete(key); err != nil {
		return false, fmt.Errorf("failed to delete value of key %v; %w", key, err)
	}
	return true, nil
}

func (d *OneToOne[V]) ContainsKey(key common.Key) (bool, error) {
	return d.keys.Contains(key)
}

func (d *OneToOne[V]) Length() (uint64, error) {
	return d.keys.Length()
}

func (d *OneToOne[V]) EnumerateKeys() ([]common.Key, error) {
	return d.keys.Enumerate()
}

func (d *OneToOne[V]) GetKeyAtIndex(index uint64) (common.Key, error) {
	return d.keys.Get(index)
}

// GetMemoryFootprint provides the size of the dictionary in memory in bytes.
func (d *OneToOne[V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*d))
	mf.AddChild("keys", d.keys.GetMemoryFootprint())
	mf.AddChild("values", d.values.GetMemoryFootprint())
	return mf
}
