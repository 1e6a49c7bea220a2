// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"bytes"
	"testing"

	"github.com/0xsoniclabs/polystore/common"
	"github.com/stretchr/testify/require"
)

func TestNamespace_DerivedNamespacesDoNotAliasTheirParent(t *testing.T) {
	root := NewNamespace(TestTable)
	a := root.Sub('a')
	b := root.Sub('b')
	require.Equal(t, Namespace{'t', 'a'}, a)
	require.Equal(t, Namespace{'t', 'b'}, b)
	require.Equal(t, Namespace{'t'}, root)
}

func TestNamespace_WithKeyAppendsFullKey(t *testing.T) {
	ns := NewNamespace(TestTable).WithKey(common.Key{31: 7})
	require.Len(t, ns, 1+common.WordSize)
	require.Equal(t, byte(7), ns[len(ns)-1])
}

func TestNamespace_RecordsOfDifferentKeysAreDisjoint(t *testing.T) {
	root := NewNamespace(TestTable).Sub('S')
	a := root.WithKey(common.Key{1}).Record('V')
	b := root.WithKey(common.Key{2}).Record('V')
	require.False(t, bytes.HasPrefix(a, b))
	require.False(t, bytes.HasPrefix(b, a))
}

func TestNamespace_PositionRecordsAreOrderedByPosition(t *testing.T) {
	ns := NewNamespace(TestTable)
	first := ns.PositionRecord('V', 1)
	second := ns.PositionRecord('V', 256)
	require.Equal(t, -1, bytes.Compare(first, second))
}

func TestEncodeUint64_RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 40, ^uint64(0)} {
		got, err := DecodeUint64(EncodeUint64(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	_, err := DecodeUint64([]byte{1, 2})
	require.Error(t, err)
}

func TestTableSpace_String(t *testing.T) {
	require.Equal(t, "table-f", OneToOneFixedTable.String())
}
