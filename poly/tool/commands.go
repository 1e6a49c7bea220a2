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
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xsoniclabs/polystore/backend/dictionary"
	"github.com/0xsoniclabs/polystore/common"
	"github.com/0xsoniclabs/polystore/common/diagnostics"
	"github.com/0xsoniclabs/polystore/poly"
	"github.com/urfave/cli/v2"
)

var (
	scalarShapeFlag = cli.StringFlag{
		Name:  "shape",
		Usage: "one-to-one shape of the key (one-to-one-fixed, one-to-one-variable)",
		Value: poly.OneToOneFixed.String(),
	}
	setShapeFlag = cli.StringFlag{
		Name:  "shape",
		Usage: "one-to-many shape of the key (one-to-many-fixed, one-to-many-variable)",
		Value: poly.OneToManyFixed.String(),
	}
	shapeFilterFlag = cli.StringFlag{
		Name:  "shape",
		Usage: "restrict the operation to keys of the given shape, all shapes if empty",
	}
	typeFlag = cli.StringFlag{
		Name:  "type",
		Usage: "interpretation of fixed-width values (word, bool, uint, int, address)",
		Value: string(wordType),
	}
	offsetFlag = cli.Uint64Flag{
		Name:  "offset",
		Usage: "position of the first listed element",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Usage: "maximum number of listed elements",
		Value: 100,
	}
)

var SetCmd = cli.Command{
	Action:    runOnDictionary(doSet),
	Name:      "set",
	Usage:     "sets the value of a one-to-one key",
	ArgsUsage: "<key> <value>",
	Flags:     []cli.Flag{&scalarShapeFlag, &typeFlag},
}

var GetCmd = cli.Command{
	Action:    runOnDictionary(doGet),
	Name:      "get",
	Usage:     "prints the shape and value(s) of a key",
	ArgsUsage: "<key>",
	Flags:     []cli.Flag{&typeFlag},
}

var AddKeyCmd = cli.Command{
	Action:    runOnDictionary(doAddKey),
	Name:      "add-key",
	Usage:     "adds a one-to-many key without values",
	ArgsUsage: "<key>",
	Flags:     []cli.Flag{&setShapeFlag},
}

var AddCmd = cli.Command{
	Action:    runOnDictionary(doAdd),
	Name:      "add",
	Usage:     "adds a value to the set of a one-to-many key",
	ArgsUsage: "<key> <value>",
	Flags:     []cli.Flag{&setShapeFlag, &typeFlag},
}

var RemoveValueCmd = cli.Command{
	Action:    runOnDictionary(doRemoveValue),
	Name:      "remove-value",
	Usage:     "removes a value from the set of a one-to-many key",
	ArgsUsage: "<key> <value>",
	Flags:     []cli.Flag{&setShapeFlag, &typeFlag},
}

var RemoveKeyCmd = cli.Command{
	Action:    runOnDictionary(doRemoveKey),
	Name:      "remove-key",
	Usage:     "removes a key of any shape",
	ArgsUsage: "<key>",
}

var ContainsCmd = cli.Command{
	Action:    runOnDictionary(doContains),
	Name:      "contains",
	Usage:     "checks for a key, or for a value in the set of a one-to-many key",
	ArgsUsage: "<key> [<value>]",
	Flags:     []cli.Flag{&setShapeFlag, &typeFlag},
}

var ListCmd = cli.Command{
	Action: runOnDictionary(doList),
	Name:   "list",
	Usage:  "lists keys and their shapes page by page",
	Flags:  []cli.Flag{&shapeFilterFlag, &offsetFlag, &limitFlag},
}

var ValuesCmd = cli.Command{
	Action:    runOnDictionary(doValues),
	Name:      "values",
	Usage:     "lists the values of a one-to-many key page by page",
	ArgsUsage: "<key>",
	Flags:     []cli.Flag{&typeFlag, &offsetFlag, &limitFlag},
}

// runOnDictionary opens the dictionary configured by the global flags for
// the duration of the given operation.
func runOnDictionary(op func(*cli.Context, *poly.Dictionary) error) cli.ActionFunc {
	return diagnostics.AddPerformanceDiagnosticsAction(func(context *cli.Context) (err error) {
		d, err := openDictionary(context)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, d.Close())
		}()
		return op(context, d)
	})
}

func openDictionary(context *cli.Context) (*poly.Dictionary, error) {
	params, err := getParameters(context)
	if err != nil {
		return nil, err
	}
	slog.Debug("opening dictionary", "variant", params.Variant, "dir", params.Directory, "policy", params.RemovalPolicy)
	return poly.Open(params)
}

func getParameters(context *cli.Context) (poly.Parameters, error) {
	policy, err := dictionary.ParseRemovalPolicy(context.String(policyFlag.Name))
	if err != nil {
		return poly.Parameters{}, err
	}
	return poly.Parameters{
		Variant:       poly.Variant(context.String(variantFlag.Name)),
		Directory:     context.String(directoryFlag.Name),
		RemovalPolicy: policy,
	}, nil
}

// args parses the key and the given number of further positional arguments.
func args(context *cli.Context, lo, hi int) (common.Key, []string, error) {
	if n := context.Args().Len(); n < lo || n > hi {
		return common.Key{}, nil, fmt.Errorf("expected %d to %d arguments, got %d; usage: %s %s", lo, hi, n, context.Command.Name, context.Command.ArgsUsage)
	}
	key, err := parseKey(context.Args().First())
	if err != nil {
		return common.Key{}, nil, err
	}
	return key, context.Args().Tail(), nil
}

func getShape(context *cli.Context, oneToMany bool) (poly.Shape, error) {
	shape, err := poly.ParseShape(context.String("shape"))
	if err != nil {
		return 0, err
	}
	if shape.IsOneToMany() != oneToMany {
		return 0, fmt.Errorf("%w: %v not supported by %s", poly.ErrInvalidShape, shape, context.Command.Name)
	}
	return shape, nil
}

func doSet(context *cli.Context, d *poly.Dictionary) error {
	key, rest, err := args(context, 2, 2)
	if err != nil {
		return err
	}
	shape, err := getShape(context, false)
	if err != nil {
		return err
	}
	var added bool
	if shape.IsVariable() {
		value, err := parseBytes(rest[0])
		if err != nil {
			return err
		}
		added, err = d.SetBytesForKey(key, value)
		if err != nil {
			return err
		}
	} else {
		value, err := parseValue(context, rest[0])
		if err != nil {
			return err
		}
		added, err = d.SetValueForKey(key, value)
		if err != nil {
			return err
		}
	}
	slog.Debug("value set", "key", key, "shape", shape, "new", added)
	return printResult(context, added, "added", "updated")
}

func doGet(context *cli.Context, d *poly.Dictionary) error {
	key, _, err := args(context, 1, 1)
	if err != nil {
		return err
	}
	shape, found, err := d.GetShape(key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %v", dictionary.ErrKeyNotFound, key)
	}
	out := context.App.Writer
	fmt.Fprintf(out, "%v\n", common.MapEntry[common.Key, poly.Shape]{Key: key, Val: shape})
	switch shape {
	case poly.OneToOneFixed:
		value, err := d.GetValueForKey(key)
		if err != nil {
			return err
		}
		return printFixed(context, value)
	case poly.OneToOneVariable:
		value, err := d.GetBytesForKey(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatBytes(value))
		return nil
	}
	return printValues(context, d, key, shape, 0, ^uint64(0))
}

func doAddKey(context *cli.Context, d *poly.Dictionary) error {
	key, _, err := args(context, 1, 1)
	if err != nil {
		return err
	}
	shape, err := getShape(context, true)
	if err != nil {
		return err
	}
	added, err := d.AddKey(key, shape)
	if err != nil {
		return err
	}
	return printResult(context, added, "added", "already present")
}

func doAdd(context *cli.Context, d *poly.Dictionary) error {
	key, rest, err := args(context, 2, 2)
	if err != nil {
		return err
	}
	shape, err := getShape(context, true)
	if err != nil {
		return err
	}
	var added bool
	if shape.IsVariable() {
		value, err := parseBytes(rest[0])
		if err != nil {
			return err
		}
		added, err = d.AddBytesForKey(key, value)
		if err != nil {
			return err
		}
	} else {
		value, err := parseValue(context, rest[0])
		if err != nil {
			return err
		}
		added, err = d.AddValueForKey(key, value)
		if err != nil {
			return err
		}
	}
	return printResult(context, added, "added", "already present")
}

func doRemoveValue(context *cli.Context, d *poly.Dictionary) error {
	key, rest, err := args(context, 2, 2)
	if err != nil {
		return err
	}
	shape, err := getShape(context, true)
	if err != nil {
		return err
	}
	var removed bool
	if shape.IsVariable() {
		value, err := parseBytes(rest[0])
		if err != nil {
			return err
		}
		removed, err = d.RemoveBytesForKey(key, value)
		if err != nil {
			return err
		}
	} else {
		value, err := parseValue(context, rest[0])
		if err != nil {
			return err
		}
		removed, err = d.RemoveValueForKey(key, value)
		if err != nil {
			return err
		}
	}
	return printResult(context, removed, "removed", "not present")
}

func doRemoveKey(context *cli.Context, d *poly.Dictionary) error {
	key, _, err := args(context, 1, 1)
	if err != nil {
		return err
	}
	removed, err := d.RemoveKey(key)
	if err != nil {
		return err
	}
	return printResult(context, removed, "removed", "not present")
}

func doContains(context *cli.Context, d *poly.Dictionary) error {
	key, rest, err := args(context, 1, 2)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		contains, err := d.ContainsKey(key)
		if err != nil {
			return err
		}
		return printResult(context, contains, "present", "not present")
	}
	shape, err := getShape(context, true)
	if err != nil {
		return err
	}
	var contains bool
	if shape.IsVariable() {
		value, err := parseBytes(rest[0])
		if err != nil {
			return err
		}
		contains, err = d.ContainsBytesForKey(key, value)
		if err != nil {
			return err
		}
	} else {
		value, err := parseValue(context, rest[0])
		if err != nil {
			return err
		}
		contains, err = d.ContainsValueForKey(key, value)
		if err != nil {
			return err
		}
	}
	return printResult(context, contains, "present", "not present")
}

func doList(context *cli.Context, d *poly.Dictionary) error {
	shapes := poly.AllShapes
	if name := context.String(shapeFilterFlag.Name); name != "" {
		shape, err := poly.ParseShape(name)
		if err != nil {
			return err
		}
		shapes = []poly.Shape{shape}
	}

	// the offset runs over the concatenation of the selected shapes
	offset := context.Uint64(offsetFlag.Name)
	limit := context.Uint64(limitFlag.Name)
	out := context.App.Writer
	for _, shape := range shapes {
		length, err := d.LengthForShape(shape)
		if err != nil {
			return err
		}
		if offset >= length {
			offset -= length
			continue
		}
		for i := offset; i < length && limit > 0; i++ {
			key, err := d.GetKeyAtIndexForShape(shape, i)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%v\n", common.MapEntry[common.Key, poly.Shape]{Key: key, Val: shape})
			limit--
		}
		offset = 0
	}
	return nil
}

func doValues(context *cli.Context, d *poly.Dictionary) error {
	key, _, err := args(context, 1, 1)
	if err != nil {
		return err
	}
	shape, found, err := d.GetShape(key)
	if err != nil {
		return err
	}
	if !found || !shape.IsOneToMany() {
		return nil
	}
	return printValues(context, d, key, shape, context.Uint64(offsetFlag.Name), context.Uint64(limitFlag.Name))
}

// printValues prints a page of the values of a one-to-many key.
func printValues(context *cli.Context, d *poly.Dictionary, key common.Key, shape poly.Shape, offset, limit uint64) error {
	length, err := d.LengthForKey(key)
	if err != nil {
		return err
	}
	for i := offset; i < length && limit > 0; i++ {
		if shape.IsVariable() {
			value, err := d.GetBytesAtIndexForKey(key, i)
			if err != nil {
				return err
			}
			fmt.Fprintln(context.App.Writer, formatBytes(value))
		} else {
			value, err := d.GetValueAtIndexForKey(key, i)
			if err != nil {
				return err
			}
			if err := printFixed(context, value); err != nil {
				return err
			}
		}
		limit--
	}
	return nil
}

func parseValue(context *cli.Context, s string) (common.Value, error) {
	t, err := parseValueType(context.String(typeFlag.Name))
	if err != nil {
		return common.Value{}, err
	}
	return parseFixed(t, s)
}

func printFixed(context *cli.Context, value common.Value) error {
	t, err := parseValueType(context.String(typeFlag.Name))
	if err != nil {
		return err
	}
	fmt.Fprintln(context.App.Writer, formatFixed(t, value))
	return nil
}

func printResult(context *cli.Context, ok bool, yes, no string) error {
	if ok {
		fmt.Fprintln(context.App.Writer, yes)
	} else {
		fmt.Fprintln(context.App.Writer, no)
	}
	return nil
}
