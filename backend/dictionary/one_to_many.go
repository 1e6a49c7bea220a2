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
	"github.com/0xsoniclabs/polystore/common"
)

// OneToMany maps keys to sets of values. Each key owns a distinct value set,
// which may be empty.
//
// Writes on absent keys are no-ops reporting false, reads on absent keys
// return zero results. This differs from OneToOne, where reading the value
// of an absent key fails.
type OneToMany[V any] struct {
	keys      enumset.Set[common.Key]
	values    map[common.Key]enumset.Set[V] // < in-memory value sets, unused for persistent backings
	backing   Backing[V]
	namespace backend.Namespace
	policy    RemovalPolicy
}

// NewOneToMany creates the dictionary located in the given namespace. The
// policy must be valid, see RemovalPolicy.Check.
func NewOneToMany[V any](backing Backing[V], ns backend.Namespace, policy RemovalPolicy) *OneToMany[V] {
	if err := policy.Check(); err != nil {
		panic(err)
	}
	return &OneToMany[V]{
		keys:      backing.NewKeySet(ns.Sub(keysTag)),
		values:    map[common.Key]enumset.Set[V]{},
		backing:   backing,
		namespace: ns.Sub(valuesTag),
		policy:    policy,
	}
}

// valueSet returns the value set of the given key. Persistent backings
// provide stateless views, which are created per call; in-memory sets are
// the storage itself and are created on first use.
func (d *OneToMany[V]) valueSet(key common.Key) enumset.Set[V] {
	if d.backing.Persistent() {
		return d.backing.NewValueSet(d.namespace.WithKey(key))
	}
	set, found := d.values[key]
	if !found {
		set = d.backing.NewValueSet(d.namespace.WithKey(key))
		d.values[key] = set
	}
	return set
}

// AddKey registers the key without adding values. It returns false if the
// key was already present.
func (d *OneToMany[V]) AddKey(key common.Key) (bool, error) {
	return d.keys.Add(key)
}

// AddValueForKey adds the value to the set of the key. It returns false if
// the key is absent or the value was already present.
func (d *OneToMany[V]) AddValueForKey(key common.Key, value V) (bool, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return false, err
	}
	return d.valueSet(key).Add(value)
}

// RemoveValueForKey removes the value from the set of the key. It returns
// false if the key is absent or the value was not present.
func (d *OneToMany[V]) RemoveValueForKey(key common.Key, value V) (bool, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return false, err
	}
	return d.valueSet(key).Remove(value)
}

// RemoveKey unregisters the key. Whether its values are deleted as well is
// defined by the removal policy of the dictionary. Values are cleared before
// the key is unregistered, so a failed removal leaves the key in place.
func (d *OneToMany[V]) RemoveKey(key common.Key) (bool, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return false, err
	}
	if d.policy == ClearValues {
		if err := d.valueSet(key).Clear(); err != nil {
			return false, fmt.Errorf("failed to clear values of key %v; %w", key, err)
		}
	}
	removed, err := d.keys.Remove(key)
	if err != nil {
		return false, err
	}
	if d.policy == ClearValues {
		delete(d.values, key)
	}
	return removed, nil
}

func (d *OneToMany[V]) ContainsKey(key common.Key) (bool, error) {
	return d.keys.Contains(key)
}

func (d *OneToMany[V]) Length() (uint64, error) {
	return d.keys.Length()
}

func (d *OneToMany[V]) EnumerateKeys() ([]common.Key, error) {
	return d.keys.Enumerate()
}

func (d *OneToMany[V]) GetKeyAtIndex(index uint64) (common.Key, error) {
	return d.keys.Get(index)
}

// ContainsValueForKey reports whether the value is in the set of the key;
// false for absent keys.
func (d *OneToMany[V]) ContainsValueForKey(key common.Key, value V) (bool, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return false, err
	}
	return d.valueSet(key).Contains(value)
}

// LengthForKey returns the number of values of the key; 0 for absent keys.
func (d *OneToMany[V]) LengthForKey(key common.Key) (uint64, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return 0, err
	}
	return d.valueSet(key).Length()
}

// EnumerateForKey returns all values of the key; empty for absent keys.
func (d *OneToMany[V]) EnumerateForKey(key common.Key) ([]V, error) {
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return []V{}, err
	}
	return d.valueSet(key).Enumerate()
}

// GetValueAtIndexForKey returns the value at the given position of the set
// of the key. Absent keys yield the zero value, while positions beyond the
// end of the set of a present key fail with enumset.ErrOutOfRange.
func (d *OneToMany[V]) GetValueAtIndexForKey(key common.Key, index uint64) (V, error) {
	var zero V
	contains, err := d.keys.Contains(key)
	if err != nil || !contains {
		return zero, err
	}
	return d.valueSet(key).Get(index)
}

// GetMemoryFootprint provides the size of the dictionary in memory in bytes.
func (d *OneToMany[V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*d))
	mf.AddChild("keys", d.keys.GetMemoryFootprint())
	values := common.NewMemoryFootprint(0)
	for key, set := range d.values {
		values.AddChild(key.String(), set.GetMemoryFootprint())
	}
	values.SetNote(fmt.Sprintf("(sets: %d)", len(d.values)))
	mf.AddChild("values", values)
	return mf
}
