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
	"math/rand"
	"slices"
	"testing"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/backend/dictionary"
	"github.com/0xsoniclabs/polystore/backend/enumset"
	"github.com/0xsoniclabs/polystore/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func initDictionaries(policy dictionary.RemovalPolicy) map[Variant]func(t *testing.T) *Dictionary {
	res := map[Variant]func(t *testing.T) *Dictionary{}
	for _, variant := range GetAllVariants() {
		res[variant] = func(t *testing.T) *Dictionary {
			d, err := Open(Parameters{
				Variant:       variant,
				Directory:     t.TempDir(),
				RemovalPolicy: policy,
			})
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, d.Close()) })
			return d
		}
	}
	return res
}

// populate associates key i with shape i%4 for the given number of keys.
func populate(t *testing.T, d *Dictionary, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		key := common.KeyFromNumber(i)
		var err error
		switch Shape(i % numShapes) {
		case OneToOneFixed:
			_, err = d.SetValueForKey(key, common.Value{byte(i)})
		case OneToOneVariable:
			_, err = d.SetBytesForKey(key, []byte{byte(i), 1, 2})
		case OneToManyFixed:
			_, err = d.AddValueForKey(key, common.Value{byte(i)})
		case OneToManyVariable:
			_, err = d.AddBytesForKey(key, []byte{byte(i)})
		}
		require.NoError(t, err)
	}
}

// snapshot captures the observable content of all shapes.
func snapshot(t *testing.T, d *Dictionary) string {
	t.Helper()
	res := ""
	for _, shape := range AllShapes {
		keys, err := d.EnumerateForShape(shape)
		require.NoError(t, err)
		res += fmt.Sprintf("%v:", shape)
		for _, key := range keys {
			switch shape {
			case OneToOneFixed:
				value, err := d.GetValueForKey(key)
				require.NoError(t, err)
				res += fmt.Sprintf(" %v=%v", key, value)
			case OneToOneVariable:
				value, err := d.GetBytesForKey(key)
				require.NoError(t, err)
				res += fmt.Sprintf(" %v=%x", key, value)
			case OneToManyFixed:
				values, err := d.EnumerateForKey(key)
				require.NoError(t, err)
				res += fmt.Sprintf(" %v=%v", key, values)
			case OneToManyVariable:
				values, err := d.EnumerateBytesForKey(key)
				require.NoError(t, err)
				res += fmt.Sprintf(" %v=%x", key, values)
			}
		}
		res += "\n"
	}
	return res
}

// writeAs performs a write associating the key with the given shape.
func writeAs(d *Dictionary, key common.Key, shape Shape) error {
	var err error
	switch shape {
	case OneToOneFixed:
		_, err = d.SetValueForKey(key, common.Value{0xAA})
	case OneToOneVariable:
		_, err = d.SetBytesForKey(key, []byte{0xAA, 0xBB})
	case OneToManyFixed:
		_, err = d.AddValueForKey(key, common.Value{0xAA})
	case OneToManyVariable:
		_, err = d.AddBytesForKey(key, []byte{0xAA, 0xBB})
	}
	return err
}

func TestDictionary_EmptyDictionaryHasNoKeys(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)

			length, err := d.Length()
			require.NoError(t, err)
			require.Zero(t, length)

			keys, err := d.Enumerate()
			require.NoError(t, err)
			require.Empty(t, keys)

			_, found, err := d.GetShape(common.Key{1})
			require.NoError(t, err)
			require.False(t, found)

			_, err = d.GetValueForKey(common.Key{1})
			require.ErrorIs(t, err, dictionary.ErrKeyNotFound)
			_, err = d.GetBytesForKey(common.Key{1})
			require.ErrorIs(t, err, dictionary.ErrKeyNotFound)
		})
	}
}

func TestDictionary_WriteThroughOtherShapeFailsAndLeavesValueUnchanged(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			key := common.Key{1}

			_, err := d.SetValueForKey(key, common.Value{0x01})
			require.NoError(t, err)

			_, err = d.AddValueForKey(key, common.Value{0x02})
			require.ErrorIs(t, err, ErrKeyShapeConflict)

			value, err := d.GetValueForKey(key)
			require.NoError(t, err)
			require.Equal(t, common.Value{0x01}, value)

			contains, err := d.ContainsKeyForShape(key, OneToManyFixed)
			require.NoError(t, err)
			require.False(t, contains)
		})
	}
}

func TestDictionary_ConflictingWritesAreRejectedForAllShapePairs(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			for _, present := range AllShapes {
				for _, other := range AllShapes {
					if present == other {
						continue
					}
					t.Run(fmt.Sprintf("%v/%v", present, other), func(t *testing.T) {
						d := open(t)
						populate(t, d, 12)
						key := common.Key{0xFF}
						require.NoError(t, writeAs(d, key, present))
						before := snapshot(t, d)

						err := writeAs(d, key, other)
						require.ErrorIs(t, err, ErrKeyShapeConflict)
						if other.IsOneToMany() {
							_, err = d.AddKey(key, other)
							require.ErrorIs(t, err, ErrKeyShapeConflict)
						}

						require.Equal(t, before, snapshot(t, d))
						shape, found, err := d.GetShape(key)
						require.NoError(t, err)
						require.True(t, found)
						require.Equal(t, present, shape)
					})
				}
			}
		})
	}
}

func TestDictionary_KeyLifecycleInOneToManyShape(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			key := common.Key{2}

			added, err := d.AddKey(key, OneToManyVariable)
			require.NoError(t, err)
			require.True(t, added)

			added, err = d.AddBytesForKey(key, []byte("a"))
			require.NoError(t, err)
			require.True(t, added)
			added, err = d.AddBytesForKey(key, []byte("b"))
			require.NoError(t, err)
			require.True(t, added)

			length, err := d.LengthForKey(key)
			require.NoError(t, err)
			require.Equal(t, uint64(2), length)

			removed, err := d.RemoveKey(key)
			require.NoError(t, err)
			require.True(t, removed)

			length, err = d.LengthForKey(key)
			require.NoError(t, err)
			require.Zero(t, length)

			contains, err := d.ContainsKey(key)
			require.NoError(t, err)
			require.False(t, contains)
		})
	}
}

func TestDictionary_RemovedKeyCanBeReusedInAnyShape(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			key := common.Key{3}
			for _, shape := range AllShapes {
				require.NoError(t, writeAs(d, key, shape))
				got, found, err := d.GetShape(key)
				require.NoError(t, err)
				require.True(t, found)
				require.Equal(t, shape, got)

				removed, err := d.RemoveKey(key)
				require.NoError(t, err)
				require.True(t, removed)

				removed, err = d.RemoveKey(key)
				require.NoError(t, err)
				require.False(t, removed)
			}
		})
	}
}

func TestDictionary_EnumerateListsEveryKeyOnceInShapeOrder(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			populate(t, d, 20)

			// removals and re-additions in between
			for _, i := range []int{3, 6, 9} {
				removed, err := d.RemoveKey(common.KeyFromNumber(i))
				require.NoError(t, err)
				require.True(t, removed)
			}
			_, err := d.SetValueForKey(common.KeyFromNumber(3), common.Value{1})
			require.NoError(t, err)
			_, err = d.AddKey(common.KeyFromNumber(6), OneToManyFixed)
			require.NoError(t, err)

			keys, err := d.Enumerate()
			require.NoError(t, err)

			want := map[common.Key]bool{}
			for i := 0; i < 20; i++ {
				if i != 9 {
					want[common.KeyFromNumber(i)] = true
				}
			}
			got := map[common.Key]bool{}
			for _, key := range keys {
				require.False(t, got[key], "duplicate key %v", key)
				got[key] = true
			}
			require.Equal(t, want, got)

			length, err := d.Length()
			require.NoError(t, err)
			require.Equal(t, uint64(len(keys)), length)

			// keys are grouped by shape in dispatch order
			var expected []common.Key
			for _, shape := range AllShapes {
				forShape, err := d.EnumerateForShape(shape)
				require.NoError(t, err)
				expected = append(expected, forShape...)
			}
			require.Equal(t, expected, keys)
		})
	}
}

func TestDictionary_KeysCanBePagedPerShape(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			populate(t, d, 16)

			for _, shape := range AllShapes {
				length, err := d.LengthForShape(shape)
				require.NoError(t, err)
				require.Equal(t, uint64(4), length)

				keys, err := d.EnumerateForShape(shape)
				require.NoError(t, err)
				for i := uint64(0); i < length; i++ {
					key, err := d.GetKeyAtIndexForShape(shape, i)
					require.NoError(t, err)
					require.Equal(t, keys[i], key)
				}
				_, err = d.GetKeyAtIndexForShape(shape, length)
				require.ErrorIs(t, err, enumset.ErrOutOfRange)
			}
		})
	}
}

func TestDictionary_LengthForKeyCountsOnlyOneToManyValues(t *testing.T) {
	d := NewMemoryDictionary(dictionary.ClearValues)
	_, err := d.SetValueForKey(common.Key{1}, common.Value{1})
	require.NoError(t, err)
	_, err = d.SetBytesForKey(common.Key{2}, []byte("abc"))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = d.AddValueForKey(common.Key{3}, common.Value{byte(i)})
		require.NoError(t, err)
		_, err = d.AddBytesForKey(common.Key{4}, []byte{byte(i)})
		require.NoError(t, err)
	}
	_, err = d.AddKey(common.Key{5}, OneToManyFixed)
	require.NoError(t, err)

	want := map[common.Key]uint64{
		{1}: 0, {2}: 0, {3}: 3, {4}: 3, {5}: 0, {6}: 0,
	}
	for key, expected := range want {
		length, err := d.LengthForKey(key)
		require.NoError(t, err)
		require.Equal(t, expected, length, "key %v", key)
	}
}

func TestDictionary_OneToManyReadsOfOtherShapesReturnDefaults(t *testing.T) {
	d := NewMemoryDictionary(dictionary.ClearValues)
	key := common.Key{1}
	_, err := d.SetValueForKey(key, common.Value{1})
	require.NoError(t, err)

	contains, err := d.ContainsValueForKey(key, common.Value{1})
	require.NoError(t, err)
	require.False(t, contains)

	values, err := d.EnumerateForKey(key)
	require.NoError(t, err)
	require.Empty(t, values)

	value, err := d.GetValueAtIndexForKey(key, 0)
	require.NoError(t, err)
	require.Equal(t, common.Value{}, value)

	bytes, err := d.GetBytesAtIndexForKey(key, 0)
	require.NoError(t, err)
	require.Empty(t, bytes)

	removed, err := d.RemoveValueForKey(key, common.Value{1})
	require.NoError(t, err)
	require.False(t, removed)

	// the one-to-one value is untouched
	got, err := d.GetValueForKey(key)
	require.NoError(t, err)
	require.Equal(t, common.Value{1}, got)
}

func TestDictionary_ValuesOfOneToManyKeysCanBeIndexed(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			key := common.Key{7}
			for _, v := range []string{"x", "y", "z"} {
				_, err := d.AddBytesForKey(key, []byte(v))
				require.NoError(t, err)
			}
			removed, err := d.RemoveBytesForKey(key, []byte("x"))
			require.NoError(t, err)
			require.True(t, removed)

			// swap-and-pop moved the last value into the vacated slot
			values, err := d.EnumerateBytesForKey(key)
			require.NoError(t, err)
			require.Equal(t, [][]byte{[]byte("z"), []byte("y")}, values)

			for i, want := range values {
				got, err := d.GetBytesAtIndexForKey(key, uint64(i))
				require.NoError(t, err)
				require.Equal(t, want, got)
			}
			_, err = d.GetBytesAtIndexForKey(key, 2)
			require.ErrorIs(t, err, enumset.ErrOutOfRange)

			contains, err := d.ContainsBytesForKey(key, []byte("y"))
			require.NoError(t, err)
			require.True(t, contains)
			contains, err = d.ContainsBytesForKey(key, []byte("x"))
			require.NoError(t, err)
			require.False(t, contains)
		})
	}
}

func TestDictionary_InvalidShapesAreRejected(t *testing.T) {
	d := NewMemoryDictionary(dictionary.ClearValues)
	invalid := Shape(numShapes)

	_, err := d.AddKey(common.Key{1}, invalid)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = d.ContainsKeyForShape(common.Key{1}, invalid)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = d.LengthForShape(invalid)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = d.EnumerateForShape(invalid)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = d.GetKeyAtIndexForShape(invalid, 0)
	require.ErrorIs(t, err, ErrInvalidShape)

	// one-to-one keys can not exist without a value
	for _, shape := range []Shape{OneToOneFixed, OneToOneVariable} {
		_, err = d.AddKey(common.Key{1}, shape)
		require.ErrorIs(t, err, ErrInvalidShape)
	}

	length, err := d.Length()
	require.NoError(t, err)
	require.Zero(t, length)
}

func TestDictionary_RemovalPolicyGovernsValuesOfReaddedKeys(t *testing.T) {
	tests := map[dictionary.RemovalPolicy][]common.Value{
		dictionary.ClearValues:  {},
		dictionary.RetainValues: {{1}, {2}},
	}
	for policy, want := range tests {
		for variant, open := range initDictionaries(policy) {
			t.Run(fmt.Sprintf("%v/%v", policy, variant), func(t *testing.T) {
				d := open(t)
				key := common.Key{1}
				for _, v := range []common.Value{{1}, {2}} {
					_, err := d.AddValueForKey(key, v)
					require.NoError(t, err)
				}
				removed, err := d.RemoveKey(key)
				require.NoError(t, err)
				require.True(t, removed)

				_, err = d.AddKey(key, OneToManyFixed)
				require.NoError(t, err)
				values, err := d.EnumerateForKey(key)
				require.NoError(t, err)
				require.Equal(t, want, values)
			})
		}
	}
}

func TestDictionary_RetainedValuesAreHiddenWhileKeyHasOtherShape(t *testing.T) {
	d := NewMemoryDictionary(dictionary.RetainValues)
	key := common.Key{1}
	_, err := d.AddValueForKey(key, common.Value{1})
	require.NoError(t, err)
	_, err = d.RemoveKey(key)
	require.NoError(t, err)

	_, err = d.SetValueForKey(key, common.Value{2})
	require.NoError(t, err)

	length, err := d.LengthForKey(key)
	require.NoError(t, err)
	require.Zero(t, length)
	contains, err := d.ContainsValueForKey(key, common.Value{1})
	require.NoError(t, err)
	require.False(t, contains)
}

func TestDictionary_ContentSurvivesReopening(t *testing.T) {
	for _, variant := range []Variant{VariantLevelDb, VariantSqlite} {
		t.Run(string(variant), func(t *testing.T) {
			params := Parameters{Variant: variant, Directory: t.TempDir()}
			d, err := Open(params)
			require.NoError(t, err)
			populate(t, d, 12)
			before := snapshot(t, d)
			require.NoError(t, d.Close())

			d, err = Open(params)
			require.NoError(t, err)
			defer func() { require.NoError(t, d.Close()) }()
			require.Equal(t, before, snapshot(t, d))

			require.ErrorIs(t, writeAs(d, common.KeyFromNumber(0), OneToManyVariable), ErrKeyShapeConflict)
		})
	}
}

func TestDictionary_KeysHaveAtMostOneShapeUnderRandomOperations(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			r := rand.New(rand.NewSource(42))
			reference := map[common.Key]Shape{}

			const numKeys = 16
			for i := 0; i < 1000; i++ {
				key := common.KeyFromNumber(r.Intn(numKeys))
				if r.Intn(5) == 0 {
					removed, err := d.RemoveKey(key)
					require.NoError(t, err)
					_, present := reference[key]
					require.Equal(t, present, removed)
					delete(reference, key)
					continue
				}
				shape := AllShapes[r.Intn(numShapes)]
				err := writeAs(d, key, shape)
				if current, present := reference[key]; present && current != shape {
					require.ErrorIs(t, err, ErrKeyShapeConflict)
				} else {
					require.NoError(t, err)
					reference[key] = shape
				}
			}

			for i := 0; i < numKeys; i++ {
				key := common.KeyFromNumber(i)
				want, present := reference[key]
				count := 0
				for _, shape := range AllShapes {
					contains, err := d.ContainsKeyForShape(key, shape)
					require.NoError(t, err)
					if contains {
						count++
						require.Equal(t, want, shape)
					}
				}
				if present {
					require.Equal(t, 1, count)
				} else {
					require.Zero(t, count)
				}
			}

			keys, err := d.Enumerate()
			require.NoError(t, err)
			require.Len(t, keys, len(reference))
			sorted := slices.Clone(keys)
			slices.SortFunc(sorted, func(a, b common.Key) int { return slices.Compare(a[:], b[:]) })
			require.Len(t, slices.Compact(sorted), len(reference))
		})
	}
}

func TestDictionary_SubstrateFailuresAreReportedBeforeAnyWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	substrate := backend.NewMockSubstrate(ctrl)
	injectedErr := errors.New("injected error")

	// the conflict check fails on its first lookup; nothing is applied
	substrate.EXPECT().Has(gomock.Any()).Return(false, injectedErr)

	d := NewDictionary(substrate, dictionary.ClearValues)
	_, err := d.SetValueForKey(common.Key{1}, common.Value{1})
	require.ErrorIs(t, err, injectedErr)
}

func TestDictionary_ConflictsAreDetectedBeforeAnyWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	substrate := backend.NewMockSubstrate(ctrl)

	// the key is found in the first shape checked; nothing is applied
	substrate.EXPECT().Has(gomock.Any()).Return(true, nil)

	d := NewDictionary(substrate, dictionary.ClearValues)
	_, err := d.AddBytesForKey(common.Key{1}, []byte{1})
	require.ErrorIs(t, err, ErrKeyShapeConflict)
}

func TestDictionary_CloseReleasesSubstrate(t *testing.T) {
	ctrl := gomock.NewController(t)
	substrate := backend.NewMockSubstrate(ctrl)
	gomock.InOrder(
		substrate.EXPECT().Flush(),
		substrate.EXPECT().Close(),
	)
	d := NewDictionary(substrate, dictionary.ClearValues)
	require.NoError(t, d.Close())
}

func TestDictionary_InMemoryDictionaryNeedsNoClosing(t *testing.T) {
	d := NewMemoryDictionary(dictionary.ClearValues)
	require.NoError(t, d.Flush())
	require.NoError(t, d.Close())
}

func TestDictionary_ProvidesMemoryFootprint(t *testing.T) {
	for variant, open := range initDictionaries(dictionary.ClearValues) {
		t.Run(string(variant), func(t *testing.T) {
			d := open(t)
			populate(t, d, 8)
			mf := d.GetMemoryFootprint()
			require.NotNil(t, mf)
			for _, shape := range AllShapes {
				require.NotNil(t, mf.GetChild(shape.String()), "missing %v", shape)
			}
			require.Greater(t, mf.Total(), uintptr(0))
		})
	}
}
