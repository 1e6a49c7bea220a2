// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package poly provides a Dictionary combining four dictionary shapes in a
// single key space: one-to-one and one-to-many dictionaries, each for fixed
// 32-byte values and for variable-width byte strings.
//
// Every key is associated with at most one shape at a time. A key enters a
// shape through the first write in that shape and leaves it when removed;
// writes through any other shape in between fail with ErrKeyShapeConflict.
// Conflicts are detected before any modification, so a failed write leaves
// the dictionary unchanged.
//
// A Dictionary is not safe for concurrent use; callers must serialize all
// operations.
package poly

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/backend/dictionary"
	"github.com/0xsoniclabs/polystore/common"
)

// ErrKeyShapeConflict is returned by writes targeting a key currently
// associated with a different shape.
var ErrKeyShapeConflict = errors.New("key shape conflict")

// Dictionary is the polymorphic dictionary.
type Dictionary struct {
	oneToOneFixed     *dictionary.OneToOne[common.Value]
	oneToOneVariable  *dictionary.OneToOne[[]byte]
	oneToManyFixed    *dictionary.OneToMany[common.Value]
	oneToManyVariable *dictionary.OneToMany[[]byte]
	shapes            [numShapes]keySpace // < the four dictionaries in dispatch order
	substrate         backend.Substrate   // < nil for in-memory dictionaries
}

// keySpace is the part of the dictionary interface shared by all shapes.
type keySpace interface {
	ContainsKey(key common.Key) (bool, error)
	Length() (uint64, error)
	EnumerateKeys() ([]common.Key, error)
	GetKeyAtIndex(index uint64) (common.Key, error)
	RemoveKey(key common.Key) (bool, error)
	common.MemoryFootprintProvider
}

// NewMemoryDictionary creates an empty dictionary kept in memory.
func NewMemoryDictionary(policy dictionary.RemovalPolicy) *Dictionary {
	return newDictionary(
		dictionary.NewFixedMemoryBacking(),
		dictionary.NewVariableMemoryBacking(),
		policy,
		nil,
	)
}

// NewDictionary creates a dictionary stored in the given substrate. The
// dictionary takes ownership of the substrate and closes it on Close.
func NewDictionary(substrate backend.Substrate, policy dictionary.RemovalPolicy) *Dictionary {
	return newDictionary(
		dictionary.NewFixedSubstrateBacking(substrate),
		dictionary.NewVariableSubstrateBacking(substrate),
		policy,
		substrate,
	)
}

func newDictionary(
	fixed dictionary.Backing[common.Value],
	variable dictionary.Backing[[]byte],
	policy dictionary.RemovalPolicy,
	substrate backend.Substrate,
) *Dictionary {
	ns := func(s Shape) backend.Namespace {
		return backend.NewNamespace(s.table())
	}
	d := &Dictionary{
		oneToOneFixed:     dictionary.NewOneToOne(fixed, ns(OneToOneFixed)),
		oneToOneVariable:  dictionary.NewOneToOne(variable, ns(OneToOneVariable)),
		oneToManyFixed:    dictionary.NewOneToMany(fixed, ns(OneToManyFixed), policy),
		oneToManyVariable: dictionary.NewOneToMany(variable, ns(OneToManyVariable), policy),
		substrate:         substrate,
	}
	d.shapes = [numShapes]keySpace{
		OneToOneFixed:     d.oneToOneFixed,
		OneToOneVariable:  d.oneToOneVariable,
		OneToManyFixed:    d.oneToManyFixed,
		OneToManyVariable: d.oneToManyVariable,
	}
	return d
}

// ensureAvailableFor checks that the key is not associated with any shape
// other than the target shape.
func (d *Dictionary) ensureAvailableFor(key common.Key, target Shape) error {
	for _, shape := range AllShapes {
		if shape == target {
			continue
		}
		contains, err := d.shapes[shape].ContainsKey(key)
		if err != nil {
			return err
		}
		if contains {
			return fmt.Errorf("%w: key %v is %v, can not be used as %v", ErrKeyShapeConflict, key, shape, target)
		}
	}
	return nil
}

// --- One-to-one writes and reads ---

// SetValueForKey sets the fixed-width value of a one-to-one key. It returns
// true if the key was newly added.
func (d *Dictionary) SetValueForKey(key common.Key, value common.Value) (bool, error) {
	if err := d.ensureAvailableFor(key, OneToOneFixed); err != nil {
		return false, err
	}
	return d.oneToOneFixed.SetValueForKey(key, value)
}

// SetBytesForKey sets the variable-width value of a one-to-one key. It
// returns true if the key was newly added.
func (d *Dictionary) SetBytesForKey(key common.Key, value []byte) (bool, error) {
	if err := d.ensureAvailableFor(key, OneToOneVariable); err != nil {
		return false, err
	}
	return d.oneToOneVariable.SetValueForKey(key, value)
}

// GetValueForKey returns the value of a one-to-one fixed key, or
// dictionary.ErrKeyNotFound if the key is not of that shape.
func (d *Dictionary) GetValueForKey(key common.Key) (common.Value, error) {
	return d.oneToOneFixed.GetValueForKey(key)
}

// GetBytesForKey returns the value of a one-to-one variable key, or
// dictionary.ErrKeyNotFound if the key is not of that shape.
func (d *Dictionary) GetBytesForKey(key common.Key) ([]byte, error) {
	return d.oneToOneVariable.GetValueForKey(key)
}

// --- One-to-many writes ---

// AddKey registers a key with an empty value set in the given one-to-many
// shape. One-to-one shapes have no empty state and are rejected with
// ErrInvalidShape. It returns false if the key was already present.
func (d *Dictionary) AddKey(key common.Key, shape Shape) (bool, error) {
	if err := checkShape(shape); err != nil {
		return false, err
	}
	if !shape.IsOneToMany() {
		return false, fmt.Errorf("%w: keys of shape %v can not be added without a value", ErrInvalidShape, shape)
	}
	if err := d.ensureAvailableFor(key, shape); err != nil {
		return false, err
	}
	if shape == OneToManyFixed {
		return d.oneToManyFixed.AddKey(key)
	}
	return d.oneToManyVariable.AddKey(key)
}

// AddValueForKey adds a fixed-width value to the set of a one-to-many key.
// Absent keys are added. It returns false if the value was already present.
func (d *Dictionary) AddValueForKey(key common.Key, value common.Value) (bool, error) {
	if err := d.ensureAvailableFor(key, OneToManyFixed); err != nil {
		return false, err
	}
	if _, err := d.oneToManyFixed.AddKey(key); err != nil {
		return false, err
	}
	return d.oneToManyFixed.AddValueForKey(key, value)
}

// AddBytesForKey adds a variable-width value to the set of a one-to-many
// key. Absent keys are added. It returns false if the value was already present.
func (d *Dictionary) AddBytesForKey(key common.Key, value []byte) (bool, error) {
	if err := d.ensureAvailableFor(key, OneToManyVariable); err != nil {
		return false, err
	}
	if _, err := d.oneToManyVariable.AddKey(key); err != nil {
		return false, err
	}
	return d.oneToManyVariable.AddValueForKey(key, value)
}

// RemoveValueForKey removes a fixed-width value from the set of a key. It
// returns false if the key is not a one-to-many fixed key or the value is
// not present.
func (d *Dictionary) RemoveValueForKey(key common.Key, value common.Value) (bool, error) {
	return d.oneToManyFixed.RemoveValueForKey(key, value)
}

// RemoveBytesForKey removes a variable-width value from the set of a key. It
// returns false if the key is not a one-to-many variable key or the value is
// not present.
func (d *Dictionary) RemoveBytesForKey(key common.Key, value []byte) (bool, error) {
	return d.oneToManyVariable.RemoveValueForKey(key, value)
}

// --- One-to-many reads; absent keys yield empty results ---

func (d *Dictionary) ContainsValueForKey(key common.Key, value common.Value) (bool, error) {
	return d.oneToManyFixed.ContainsValueForKey(key, value)
}

func (d *Dictionary) ContainsBytesForKey(key common.Key, value []byte) (bool, error) {
	return d.oneToManyVariable.ContainsValueForKey(key, value)
}

func (d *Dictionary) EnumerateForKey(key common.Key) ([]common.Value, error) {
	return d.oneToManyFixed.EnumerateForKey(key)
}

func (d *Dictionary) EnumerateBytesForKey(key common.Key) ([][]byte, error) {
	return d.oneToManyVariable.EnumerateForKey(key)
}

func (d *Dictionary) GetValueAtIndexForKey(key common.Key, index uint64) (common.Value, error) {
	return d.oneToManyFixed.GetValueAtIndexForKey(key, index)
}

func (d *Dictionary) GetBytesAtIndexForKey(key common.Key, index uint64) ([]byte, error) {
	return d.oneToManyVariable.GetValueAtIndexForKey(key, index)
}

// LengthForKey returns the number of values of a one-to-many key. One-to-one
// keys and absent keys have no value set and yield 0.
func (d *Dictionary) LengthForKey(key common.Key) (uint64, error) {
	fixed, err := d.oneToManyFixed.LengthForKey(key)
	if err != nil {
		return 0, err
	}
	variable, err := d.oneToManyVariable.LengthForKey(key)
	if err != nil {
		return 0, err
	}
	return fixed + variable, nil
}

// --- Key space ---

// ContainsKey reports whether the key is present in any shape.
func (d *Dictionary) ContainsKey(key common.Key) (bool, error) {
	_, found, err := d.GetShape(key)
	return found, err
}

// ContainsKeyForShape reports whether the key is present in the given shape.
func (d *Dictionary) ContainsKeyForShape(key common.Key, shape Shape) (bool, error) {
	if err := checkShape(shape); err != nil {
		return false, err
	}
	return d.shapes[shape].ContainsKey(key)
}

// GetShape returns the shape the key is associated with. The second result
// is false if the key is absent.
func (d *Dictionary) GetShape(key common.Key) (Shape, bool, error) {
	for _, shape := range AllShapes {
		contains, err := d.shapes[shape].ContainsKey(key)
		if err != nil {
			return 0, false, err
		}
		if contains {
			return shape, true, nil
		}
	}
	return 0, false, nil
}

// Length returns the number of keys over all shapes.
func (d *Dictionary) Length() (uint64, error) {
	var sum uint64
	for _, shape := range AllShapes {
		length, err := d.shapes[shape].Length()
		if err != nil {
			return 0, err
		}
		sum += length
	}
	return sum, nil
}

// LengthForShape returns the number of keys of the given shape.
func (d *Dictionary) LengthForShape(shape Shape) (uint64, error) {
	if err := checkShape(shape); err != nil {
		return 0, err
	}
	return d.shapes[shape].Length()
}

// Enumerate returns all keys, grouped by shape in dispatch order. Since no
// key is associated with two shapes, the result has no duplicates. The
// runtime is linear in the number of keys; large dictionaries should be
// paged using LengthForShape and GetKeyAtIndexForShape.
func (d *Dictionary) Enumerate() ([]common.Key, error) {
	var res []common.Key
	for _, shape := range AllShapes {
		keys, err := d.shapes[shape].EnumerateKeys()
		if err != nil {
			return nil, err
		}
		res = append(res, keys...)
	}
	if res == nil {
		res = []common.Key{}
	}
	return res, nil
}

// EnumerateForShape returns all keys of the given shape.
func (d *Dictionary) EnumerateForShape(shape Shape) ([]common.Key, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	return d.shapes[shape].EnumerateKeys()
}

// GetKeyAtIndexForShape returns the key at the given position of the key set
// of a shape, or enumset.ErrOutOfRange.
func (d *Dictionary) GetKeyAtIndexForShape(shape Shape, index uint64) (common.Key, error) {
	if err := checkShape(shape); err != nil {
		return common.Key{}, err
	}
	return d.shapes[shape].GetKeyAtIndex(index)
}

// RemoveKey removes the key from whichever shape it is associated with. It
// returns false if the key was absent.
func (d *Dictionary) RemoveKey(key common.Key) (bool, error) {
	for _, shape := range AllShapes {
		removed, err := d.shapes[shape].RemoveKey(key)
		if err != nil || removed {
			return removed, err
		}
	}
	return false, nil
}

// Flush writes buffered data of the underlying substrate, if any.
func (d *Dictionary) Flush() error {
	if d.substrate == nil {
		return nil
	}
	return d.substrate.Flush()
}

// Close flushes and releases the underlying substrate, if any.
func (d *Dictionary) Close() error {
	if d.substrate == nil {
		return nil
	}
	return errors.Join(d.substrate.Flush(), d.substrate.Close())
}

// GetMemoryFootprint provides the size of the dictionary in memory in bytes.
func (d *Dictionary) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*d))
	for _, shape := range AllShapes {
		mf.AddChild(shape.String(), d.shapes[shape].GetMemoryFootprint())
	}
	if d.substrate != nil {
		mf.AddChild("substrate", d.substrate.GetMemoryFootprint())
	}
	return mf
}
