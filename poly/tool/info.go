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
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/0xsoniclabs/polystore/poly"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
)

var InfoCmd = cli.Command{
	Action: runOnDictionary(doInfo),
	Name:   "info",
	Usage:  "prints key counts, memory usage and storage size of the dictionary",
}

func doInfo(context *cli.Context, d *poly.Dictionary) error {
	out := context.App.Writer
	for _, shape := range poly.AllShapes {
		length, err := d.LengthForShape(shape)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-22v %d keys\n", shape, length)
	}
	total, err := d.Length()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-22v %d keys\n", "total", total)

	fmt.Fprintf(out, "\nMemory footprint:\n%v", d.GetMemoryFootprint())
	fmt.Fprintf(out, "\nProcess memory usage: %d bytes\n", getMemoryUsage())
	fmt.Fprintf(out, "Host memory: %d bytes total, %d bytes free\n", memory.TotalMemory(), memory.FreeMemory())

	switch poly.Variant(context.String(variantFlag.Name)) {
	case poly.VariantLevelDb, poly.VariantSqlite:
		dir := context.String(directoryFlag.Name)
		fmt.Fprintf(out, "Storage size: %d bytes in %s\n", getDirectorySize(dir), dir)
	}
	return nil
}

// getMemoryUsage returns the memory obtained from the OS by the process.
func getMemoryUsage() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Sys
}

// getDirectorySize sums up the sizes of all files in the given directory;
// unreadable entries are ignored.
func getDirectorySize(directory string) int64 {
	var sum int64
	_ = filepath.WalkDir(directory, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, err := entry.Info(); err == nil {
				sum += info.Size()
			}
		}
		return nil
	})
	return sum
}
