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
	"errors"
	"fmt"

	"github.com/0xsoniclabs/polystore/backend"
)

// ErrInvalidShape is returned for shape tags not denoting a supported shape
// for the requested operation.
var ErrInvalidShape = errors.New("invalid shape")

// Shape is the storage kind a key of a Dictionary is associated with.
type Shape uint8

const (
	// OneToOneFixed keys map to a single 32-byte value.
	OneToOneFixed Shape = iota
	// OneToOneVariable keys map to a single byte string.
	OneToOneVariable
	// OneToManyFixed keys map to a set of 32-byte values.
	OneToManyFixed
	// OneToManyVariable keys map to a set of byte strings.
	OneToManyVariable
)

// numShapes is the number of valid shapes; valid shapes are [0, numShapes).
const numShapes = 4

// AllShapes lists all shapes in dispatch order.
var AllShapes = []Shape{OneToOneFixed, OneToOneVariable, OneToManyFixed, OneToManyVariable}

func (s Shape) String() string {
	switch s {
	case OneToOneFixed:
		return "one-to-one-fixed"
	case OneToOneVariable:
		return "one-to-one-variable"
	case OneToManyFixed:
		return "one-to-many-fixed"
	case OneToManyVariable:
		return "one-to-many-variable"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Valid reports whether s denotes one of the four shapes.
func (s Shape) Valid() bool {
	return s < numShapes
}

// IsOneToMany reports whether keys of this shape map to value sets.
func (s Shape) IsOneToMany() bool {
	return s == OneToManyFixed || s == OneToManyVariable
}

// IsVariable reports whether values of this shape are variable-width.
func (s Shape) IsVariable() bool {
	return s == OneToOneVariable || s == OneToManyVariable
}

// ParseShape is the inverse of Shape.String.
func ParseShape(s string) (Shape, error) {
	for _, shape := range AllShapes {
		if shape.String() == s {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidShape, s)
}

func (s Shape) table() backend.TableSpace {
	switch s {
	case OneToOneFixed:
		return backend.OneToOneFixedTable
	case OneToOneVariable:
		return backend.OneToOneVariableTable
	case OneToManyFixed:
		return backend.OneToManyFixedTable
	default:
		return backend.OneToManyVariableTable
	}
}

func checkShape(s Shape) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidShape, s)
	}
	return nil
}
