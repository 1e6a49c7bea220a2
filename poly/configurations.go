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
	"os"
	"sort"

	"github.com/0xsoniclabs/polystore/backend/dictionary"
	"github.com/0xsoniclabs/polystore/backend/substrate/ldb"
	"github.com/0xsoniclabs/polystore/backend/substrate/memory"
	"github.com/0xsoniclabs/polystore/backend/substrate/sqlite"
)

// ErrUnsupportedVariant is returned by Open for unknown variants.
var ErrUnsupportedVariant = errors.New("unsupported variant")

// Variant names an implementation of the Dictionary storage.
type Variant string

const (
	// VariantMemory keeps all structures as native in-memory collections.
	VariantMemory Variant = "memory"
	// VariantKvMemory lays the structures out on an in-memory substrate.
	VariantKvMemory Variant = "kv-memory"
	// VariantLevelDb lays the structures out on a LevelDB substrate.
	VariantLevelDb Variant = "ldb"
	// VariantSqlite lays the structures out on a SQLite substrate.
	VariantSqlite Variant = "sqlite"
)

// Parameters define the configuration of a Dictionary to be opened.
type Parameters struct {
	Variant       Variant
	Directory     string // < ignored by in-memory variants
	RemovalPolicy dictionary.RemovalPolicy
}

// Factory opens a Dictionary for the given parameters.
type Factory func(params Parameters) (*Dictionary, error)

var factories = map[Variant]Factory{}

// RegisterFactory registers the factory of a variant. Registering the same
// variant twice is a programming error and panics.
func RegisterFactory(variant Variant, factory Factory) {
	if _, found := factories[variant]; found {
		panic(fmt.Sprintf("factory for variant %q registered twice", variant))
	}
	factories[variant] = factory
}

// GetAllVariants returns all registered variants in alphabetical order.
func GetAllVariants() []Variant {
	res := make([]Variant, 0, len(factories))
	for variant := range factories {
		res = append(res, variant)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Open opens a Dictionary with the given parameters.
func Open(params Parameters) (*Dictionary, error) {
	factory, found := factories[params.Variant]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVariant, params.Variant)
	}
	if err := params.RemovalPolicy.Check(); err != nil {
		return nil, err
	}
	return factory(params)
}

func init() {
	RegisterFactory(VariantMemory, func(params Parameters) (*Dictionary, error) {
		return NewMemoryDictionary(params.RemovalPolicy), nil
	})
	RegisterFactory(VariantKvMemory, func(params Parameters) (*Dictionary, error) {
		return NewDictionary(memory.NewSubstrate(), params.RemovalPolicy), nil
	})
	RegisterFactory(VariantLevelDb, func(params Parameters) (*Dictionary, error) {
		if err := prepareDirectory(params.Directory); err != nil {
			return nil, err
		}
		substrate, err := ldb.Open(params.Directory, nil)
		if err != nil {
			return nil, err
		}
		return NewDictionary(substrate, params.RemovalPolicy), nil
	})
	RegisterFactory(VariantSqlite, func(params Parameters) (*Dictionary, error) {
		if err := prepareDirectory(params.Directory); err != nil {
			return nil, err
		}
		substrate, err := sqlite.Open(params.Directory)
		if err != nil {
			return nil, err
		}
		return NewDictionary(substrate, params.RemovalPolicy), nil
	})
}

func prepareDirectory(directory string) error {
	if directory == "" {
		return fmt.Errorf("no directory specified")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s; %w", directory, err)
	}
	return nil
}
