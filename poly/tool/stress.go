// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/0xsoniclabs/polystore/backend/dictionary"
	"github.com/0xsoniclabs/polystore/common"
	"github.com/0xsoniclabs/polystore/common/diagnostics"
	"github.com/0xsoniclabs/polystore/poly"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
)

var (
	numOpsFlag = cli.IntFlag{
		Name:  "num-ops",
		Usage: "number of random operations to perform",
		Value: 10_000,
	}
	numKeysFlag = cli.IntFlag{
		Name:  "num-keys",
		Usage: "number of distinct keys operations are performed on",
		Value: 256,
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "seed of the random operation sequence",
		Value: 1,
	}
	tmpDirFlag = cli.StringFlag{
		Name:  "tmp-dir",
		Usage: "directory the temporary dictionary is created in, the system default if empty",
	}
	reportPeriodFlag = cli.DurationFlag{
		Name:  "report-period",
		Usage: "time between progress reports",
		Value: 5 * time.Second,
	}
)

var StressTestCmd = cli.Command{
	Action: diagnostics.AddPerformanceDiagnosticsAction(stressTest),
	Name:   "stress-test",
	Usage:  "applies random operations on a temporary dictionary and checks the outcome against a reference model",
	Flags: []cli.Flag{
		&numOpsFlag,
		&numKeysFlag,
		&seedFlag,
		&tmpDirFlag,
		&reportPeriodFlag,
	},
}

func stressTest(context *cli.Context) (err error) {
	params, err := getParameters(context)
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp(context.String(tmpDirFlag.Name), "polystore-stress-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory; %w", err)
	}
	defer func() {
		err = errors.Join(err, os.RemoveAll(dir))
	}()
	params.Directory = dir

	d, err := poly.Open(params)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Close())
	}()

	numOps := context.Int(numOpsFlag.Name)
	numKeys := context.Int(numKeysFlag.Name)
	if numKeys <= 0 {
		return fmt.Errorf("number of keys must be positive, got %d", numKeys)
	}
	reportPeriod := context.Duration(reportPeriodFlag.Name)
	r := rand.New(rand.NewSource(context.Int64(seedFlag.Name)))
	model := newModel(params.RemovalPolicy)

	slog.Info("starting stress test", "variant", params.Variant, "dir", dir, "ops", numOps, "keys", numKeys)
	start := time.Now()
	lastReport := start
	for i := 0; i < numOps; i++ {
		key := common.KeyFromNumber(r.Intn(numKeys))
		if err := applyRandomOperation(r, d, model, key); err != nil {
			return fmt.Errorf("operation %d failed: %w", i, err)
		}
		if now := time.Now(); now.Sub(lastReport) >= reportPeriod {
			if err := model.check(d); err != nil {
				return fmt.Errorf("check after operation %d failed: %w", i, err)
			}
			slog.Info("progress",
				"ops", i+1,
				"keys", len(model.shapes),
				"ops/s", float64(i+1)/now.Sub(start).Seconds(),
				"process memory", getMemoryUsage(),
				"free host memory", memory.FreeMemory(),
			)
			lastReport = now
		}
	}
	if err := model.check(d); err != nil {
		return fmt.Errorf("final check failed: %w", err)
	}
	slog.Info("stress test completed", "ops", numOps, "duration", time.Since(start), "storage", getDirectorySize(dir))
	fmt.Fprintf(context.App.Writer, "passed %d operations on %d keys\n", numOps, len(model.shapes))
	return nil
}

// testValue returns a fixed-width value from a small domain so that
// operations frequently hit present values.
func testValue(r *rand.Rand) common.Value {
	return common.Value{31: byte(r.Intn(8))}
}

// testBytes returns a byte string from a small domain, with lengths below
// and above the compression threshold of the substrate payloads.
func testBytes(r *rand.Rand) []byte {
	v := r.Intn(8)
	return bytes.Repeat([]byte{byte('a' + v)}, 1+v*40)
}

func applyRandomOperation(r *rand.Rand, d *poly.Dictionary, m *model, key common.Key) error {
	var shape poly.Shape
	var err error
	switch r.Intn(8) {
	case 0:
		shape = poly.OneToOneFixed
		value := testValue(r)
		if _, err = d.SetValueForKey(key, value); err == nil {
			m.fixed[key] = value
		}
	case 1:
		shape = poly.OneToOneVariable
		value := testBytes(r)
		if _, err = d.SetBytesForKey(key, value); err == nil {
			m.variable[key] = value
		}
	case 2:
		shape = poly.OneToManyFixed
		value := testValue(r)
		if _, err = d.AddValueForKey(key, value); err == nil {
			m.fixedSet(key)[value] = struct{}{}
		}
	case 3:
		shape = poly.OneToManyVariable
		value := testBytes(r)
		if _, err = d.AddBytesForKey(key, value); err == nil {
			m.variableSet(key)[string(value)] = struct{}{}
		}
	case 4:
		shape = poly.AllShapes[2+r.Intn(2)]
		if _, err = d.AddKey(key, shape); err == nil {
			if shape == poly.OneToManyFixed {
				m.fixedSet(key)
			} else {
				m.variableSet(key)
			}
		}
	case 5:
		value := testValue(r)
		removed, err := d.RemoveValueForKey(key, value)
		if err != nil {
			return err
		}
		_, want := m.fixedSets[key][value]
		want = want && m.shapes[key] == poly.OneToManyFixed && m.present(key)
		if removed != want {
			return fmt.Errorf("removal of %v from %v reported %t, expected %t", value, key, removed, want)
		}
		if removed {
			delete(m.fixedSets[key], value)
		}
		return nil
	case 6:
		value := testBytes(r)
		removed, err := d.RemoveBytesForKey(key, value)
		if err != nil {
			return err
		}
		_, want := m.variableSets[key][string(value)]
		want = want && m.shapes[key] == poly.OneToManyVariable && m.present(key)
		if removed != want {
			return fmt.Errorf("removal of %x from %v reported %t, expected %t", value, key, removed, want)
		}
		if removed {
			delete(m.variableSets[key], string(value))
		}
		return nil
	default:
		removed, err := d.RemoveKey(key)
		if err != nil {
			return err
		}
		if removed != m.present(key) {
			return fmt.Errorf("removal of key %v reported %t, expected %t", key, removed, m.present(key))
		}
		m.removeKey(key)
		return nil
	}

	// write operations must fail if and only if the key has another shape
	current, present := m.shapes[key]
	conflict := present && current != shape
	if conflict {
		if !errors.Is(err, poly.ErrKeyShapeConflict) {
			return fmt.Errorf("write of %v as %v with shape %v: expected conflict, got %v", key, shape, current, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	m.shapes[key] = shape
	return nil
}

// model is the reference the dictionary is checked against.
type model struct {
	policy       dictionary.RemovalPolicy
	shapes       map[common.Key]poly.Shape
	fixed        map[common.Key]common.Value
	variable     map[common.Key][]byte
	fixedSets    map[common.Key]map[common.Value]struct{}
	variableSets map[common.Key]map[string]struct{}
}

func newModel(policy dictionary.RemovalPolicy) *model {
	return &model{
		policy:       policy,
		shapes:       map[common.Key]poly.Shape{},
		fixed:        map[common.Key]common.Value{},
		variable:     map[common.Key][]byte{},
		fixedSets:    map[common.Key]map[common.Value]struct{}{},
		variableSets: map[common.Key]map[string]struct{}{},
	}
}

func (m *model) present(key common.Key) bool {
	_, found := m.shapes[key]
	return found
}

func (m *model) fixedSet(key common.Key) map[common.Value]struct{} {
	set, found := m.fixedSets[key]
	if !found {
		set = map[common.Value]struct{}{}
		m.fixedSets[key] = set
	}
	return set
}

func (m *model) variableSet(key common.Key) map[string]struct{} {
	set, found := m.variableSets[key]
	if !found {
		set = map[string]struct{}{}
		m.variableSets[key] = set
	}
	return set
}

func (m *model) removeKey(key common.Key) {
	shape, found := m.shapes[key]
	if !found {
		return
	}
	delete(m.shapes, key)
	switch shape {
	case poly.OneToOneFixed:
		delete(m.fixed, key)
	case poly.OneToOneVariable:
		delete(m.variable, key)
	case poly.OneToManyFixed:
		if m.policy == dictionary.ClearValues {
			delete(m.fixedSets, key)
		}
	case poly.OneToManyVariable:
		if m.policy == dictionary.ClearValues {
			delete(m.variableSets, key)
		}
	}
}

// check compares the full content of the dictionary with the model.
func (m *model) check(d *poly.Dictionary) error {
	length, err := d.Length()
	if err != nil {
		return err
	}
	if want := uint64(len(m.shapes)); length != want {
		return fmt.Errorf("dictionary has %d keys, expected %d", length, want)
	}
	keys, err := d.Enumerate()
	if err != nil {
		return err
	}
	seen := map[common.Key]bool{}
	for _, key := range keys {
		if seen[key] {
			return fmt.Errorf("key %v enumerated twice", key)
		}
		seen[key] = true
		want, found := m.shapes[key]
		if !found {
			return fmt.Errorf("unexpected key %v", key)
		}
		shape, _, err := d.GetShape(key)
		if err != nil {
			return err
		}
		if shape != want {
			return fmt.Errorf("key %v has shape %v, expected %v", key, shape, want)
		}
		if err := m.checkValues(d, key, shape); err != nil {
			return err
		}
	}
	return nil
}

func (m *model) checkValues(d *poly.Dictionary, key common.Key, shape poly.Shape) error {
	switch shape {
	case poly.OneToOneFixed:
		value, err := d.GetValueForKey(key)
		if err != nil {
			return err
		}
		if value != m.fixed[key] {
			return fmt.Errorf("key %v has value %v, expected %v", key, value, m.fixed[key])
		}
	case poly.OneToOneVariable:
		value, err := d.GetBytesForKey(key)
		if err != nil {
			return err
		}
		if !bytes.Equal(value, m.variable[key]) {
			return fmt.Errorf("key %v has value %x, expected %x", key, value, m.variable[key])
		}
	case poly.OneToManyFixed:
		values, err := d.EnumerateForKey(key)
		if err != nil {
			return err
		}
		want := m.fixedSets[key]
		if len(values) != len(want) {
			return fmt.Errorf("key %v has %d values, expected %d", key, len(values), len(want))
		}
		for _, value := range values {
			if _, found := want[value]; !found {
				return fmt.Errorf("key %v has unexpected value %v", key, value)
			}
		}
	case poly.OneToManyVariable:
		values, err := d.EnumerateBytesForKey(key)
		if err != nil {
			return err
		}
		want := m.variableSets[key]
		if len(values) != len(want) {
			return fmt.Errorf("key %v has %d values, expected %d", key, len(values), len(want))
		}
		for _, value := range values {
			if _, found := want[string(value)]; !found {
				return fmt.Errorf("key %v has unexpected value %x", key, value)
			}
		}
	}
	return nil
}
