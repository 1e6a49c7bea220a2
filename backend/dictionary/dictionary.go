// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dictionary provides key/value dictionaries built on enumerable
// sets. A OneToOne dictionary maps each key to a single value, a OneToMany
// dictionary maps each key to a set of values. Both track their keys in an
// enumset.Set, so keys can be enumerated and paged.
//
// The structures a dictionary is composed of are created by a Backing, which
// either keeps them in memory or lays them out on a backend.Substrate.
package dictionary

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/backend/enumset"
	kvset "github.com/0xsoniclabs/polystore/backend/enumset/kv"
	memset "github.com/0xsoniclabs/polystore/backend/enumset/memory"
	"github.com/0xsoniclabs/polystore/backend/store"
	kvstore "github.com/0xsoniclabs/polystore/backend/store/kv"
	memstore "github.com/0xsoniclabs/polystore/backend/store/memory"
	"github.com/0xsoniclabs/polystore/common"
)

// ErrKeyNotFound is returned when reading the value of an absent key from a
// OneToOne dictionary.
var ErrKeyNotFound = errors.New("key not found")

// Namespace tags of the structures of a dictionary.
const (
	keysTag   = 'K'
	valuesTag = 'S'
	dataTag   = 'D'
)

// RemovalPolicy defines what happens to the values of a OneToMany key when
// the key is removed.
type RemovalPolicy byte

const (
	// ClearValues deletes all values of a removed key. Re-adding the key
	// starts with an empty value set.
	ClearValues RemovalPolicy = iota
	// RetainValues only unregisters the key. Its values are kept in
	// storage and become visible again when the key is re-added.
	RetainValues
)

func (p RemovalPolicy) String() string {
	switch p {
	case ClearValues:
		return "clear"
	case RetainValues:
		return "retain"
	}
	return fmt.Sprintf("RemovalPolicy(%d)", byte(p))
}

// ErrInvalidRemovalPolicy is returned for removal policies other than
// ClearValues and RetainValues.
var ErrInvalidRemovalPolicy = errors.New("invalid removal policy")

// Check fails with ErrInvalidRemovalPolicy for unknown policies.
func (p RemovalPolicy) Check() error {
	if p != ClearValues && p != RetainValues {
		return fmt.Errorf("%w: %v", ErrInvalidRemovalPolicy, p)
	}
	return nil
}

// ParseRemovalPolicy is the inverse of RemovalPolicy.String.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch s {
	case "clear":
		return ClearValues, nil
	case "retain":
		return RetainValues, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRemovalPolicy, s)
}

// Backing creates the structures dictionaries are composed of.
type Backing[V any] interface {
	// NewKeySet provides the key set located in the given namespace.
	NewKeySet(ns backend.Namespace) enumset.Set[common.Key]
	// NewValueSet provides the value set located in the given namespace.
	NewValueSet(ns backend.Namespace) enumset.Set[V]
	// NewStore provides the raw value store located in the given namespace.
	NewStore(ns backend.Namespace) store.Store[V]
	// Persistent reports whether created structures are views on content
	// kept elsewhere. Such views need not be retained by their users.
	Persistent() bool
}

// MemoryBacking creates in-memory structures. Namespaces are ignored, each
// call creates a new, empty structure.
type MemoryBacking[V any] struct {
	Identity common.Identity[V]
}

func (b MemoryBacking[V]) NewKeySet(backend.Namespace) enumset.Set[common.Key] {
	return memset.NewSet[common.Key](common.KeyIdentity{})
}

func (b MemoryBacking[V]) NewValueSet(backend.Namespace) enumset.Set[V] {
	return memset.NewSet[V](b.Identity)
}

func (b MemoryBacking[V]) NewStore(backend.Namespace) store.Store[V] {
	return memstore.NewStore[V](b.Identity)
}

func (b MemoryBacking[V]) Persistent() bool {
	return false
}

// SubstrateBacking creates views on structures stored in a substrate. Views
// of the same namespace share their content.
type SubstrateBacking[V any] struct {
	Substrate  backend.Substrate
	Serializer common.Serializer[V]
	Identity   common.Identity[V]
}

func (b SubstrateBacking[V]) NewKeySet(ns backend.Namespace) enumset.Set[common.Key] {
	return kvset.NewSet[common.Key](b.Substrate, ns, common.KeySerializer{}, common.KeyIdentity{})
}

func (b SubstrateBacking[V]) NewValueSet(ns backend.Namespace) enumset.Set[V] {
	return kvset.NewSet[V](b.Substrate, ns, b.Serializer, b.Identity)
}

func (b SubstrateBacking[V]) NewStore(ns backend.Namespace) store.Store[V] {
	return kvstore.NewStore[V](b.Substrate, ns, b.Serializer)
}

func (b SubstrateBacking[V]) Persistent() bool {
	return true
}

// NewFixedMemoryBacking creates an in-memory backing for fixed-width values.
func NewFixedMemoryBacking() MemoryBacking[common.Value] {
	return MemoryBacking[common.Value]{Identity: common.ValueIdentity{}}
}

// NewVariableMemoryBacking creates an in-memory backing for variable-width values.
func NewVariableMemoryBacking() MemoryBacking[[]byte] {
	return MemoryBacking[[]byte]{Identity: common.BytesIdentity{}}
}

// NewFixedSubstrateBacking creates a substrate backing for fixed-width values.
func NewFixedSubstrateBacking(substrate backend.Substrate) SubstrateBacking[common.Value] {
	return SubstrateBacking[common.Value]{
		Substrate:  substrate,
		Serializer: common.ValueSerializer{},
		Identity:   common.ValueIdentity{},
	}
}

// NewVariableSubstrateBacking creates a substrate backing for variable-width values.
func NewVariableSubstrateBacking(substrate backend.Substrate) SubstrateBacking[[]byte] {
	return SubstrateBacking[[]byte]{
		Substrate:  substrate,
		Serializer: common.BytesSerializer{},
		Identity:   common.BytesIdentity{},
	}
}
