// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kv

import (
	"errors"
	"testing"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/backend/enumset"
	"github.com/0xsoniclabs/polystore/backend/substrate/ldb"
	"github.com/0xsoniclabs/polystore/backend/substrate/memory"
	"github.com/0xsoniclabs/polystore/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var _ enumset.Set[common.Value] = (*Set[common.Value])(nil)

func newFixedSet(substrate backend.Substrate, ns backend.Namespace) *Set[common.Value] {
	return NewSet[common.Value](substrate, ns, common.ValueSerializer{}, common.ValueIdentity{})
}

func TestSet_ContentSurvivesReopeningTheSubstrate(t *testing.T) {
	dir := t.TempDir()
	ns := backend.NewNamespace(backend.TestTable)

	substrate, err := ldb.Open(dir, nil)
	require.NoError(t, err)
	set := newFixedSet(substrate, ns)
	for _, v := range []common.Value{{1}, {2}, {3}} {
		_, err := set.Add(v)
		require.NoError(t, err)
	}
	_, err = set.Remove(common.Value{1})
	require.NoError(t, err)
	require.NoError(t, substrate.Close())

	substrate, err = ldb.Open(dir, nil)
	require.NoError(t, err)
	defer substrate.Close()
	set = newFixedSet(substrate, ns)

	got, err := set.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []common.Value{{3}, {2}}, got)
}

func TestSet_SetsInDifferentNamespacesAreIndependent(t *testing.T) {
	substrate := memory.NewSubstrate()
	a := newFixedSet(substrate, backend.NewNamespace(backend.TestTable).WithKey(common.Key{1}))
	b := newFixedSet(substrate, backend.NewNamespace(backend.TestTable).WithKey(common.Key{2}))

	_, err := a.Add(common.Value{1})
	require.NoError(t, err)

	contains, err := b.Contains(common.Value{1})
	require.NoError(t, err)
	require.False(t, contains)

	length, err := b.Length()
	require.NoError(t, err)
	require.Zero(t, length)
}

func TestSet_EachModificationIsASingleBatch(t *testing.T) {
	substrate := memory.NewSubstrate()
	set := newFixedSet(substrate, backend.NewNamespace(backend.TestTable))

	_, err := set.Add(common.Value{1})
	require.NoError(t, err)
	// length, one element record, one index record
	require.Equal(t, 3, substrate.Len())

	_, err = set.Add(common.Value{2})
	require.NoError(t, err)
	require.Equal(t, 5, substrate.Len())

	_, err = set.Remove(common.Value{1})
	require.NoError(t, err)
	require.Equal(t, 3, substrate.Len())

	require.NoError(t, set.Clear())
	require.Equal(t, 0, substrate.Len())
}

func TestSet_FailingBatchLeavesSetUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	substrate := backend.NewMockSubstrate(ctrl)
	set := newFixedSet(substrate, backend.NewNamespace(backend.TestTable))

	injected := errors.New("injected")
	substrate.EXPECT().Get(gomock.Any()).Return(nil, false, nil).Times(2)
	substrate.EXPECT().Apply(gomock.Any()).Return(injected)

	added, err := set.Add(common.Value{1})
	require.ErrorIs(t, err, injected)
	require.False(t, added)
}

func TestSet_ReadErrorsArePropagatedBeforeWriting(t *testing.T) {
	ctrl := gomock.NewController(t)
	substrate := backend.NewMockSubstrate(ctrl)
	set := newFixedSet(substrate, backend.NewNamespace(backend.TestTable))

	injected := errors.New("injected")
	substrate.EXPECT().Get(gomock.Any()).Return(nil, false, injected).Times(4)
	substrate.EXPECT().Has(gomock.Any()).Return(false, injected)

	_, err := set.Add(common.Value{1})
	require.ErrorIs(t, err, injected)
	_, err = set.Remove(common.Value{1})
	require.ErrorIs(t, err, injected)
	_, err = set.Contains(common.Value{1})
	require.ErrorIs(t, err, injected)
	_, err = set.Length()
	require.ErrorIs(t, err, injected)
	_, err = set.Enumerate()
	require.ErrorIs(t, err, injected)
}

func TestSet_CorruptedRecordsAreDetected(t *testing.T) {
	substrate := memory.NewSubstrate()
	ns := backend.NewNamespace(backend.TestTable)
	set := newFixedSet(substrate, ns)
	_, err := set.Add(common.Value{1})
	require.NoError(t, err)

	var batch backend.Batch
	batch.Put(ns.PositionRecord(valueTag, 0), []byte{1, 2, 3})
	require.NoError(t, substrate.Apply(&batch))

	_, err = set.Get(0)
	require.Error(t, err)

	batch.Reset()
	batch.Delete(ns.PositionRecord(valueTag, 0))
	require.NoError(t, substrate.Apply(&batch))

	_, err = set.Get(0)
	require.Error(t, err)
}
