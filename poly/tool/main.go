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
	"log/slog"
	"os"

	"github.com/0xsoniclabs/polystore/common/diagnostics"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./poly/tool <command> <flags>

var (
	variantFlag = cli.StringFlag{
		Name:  "variant",
		Usage: "storage variant of the dictionary (memory, kv-memory, ldb, sqlite)",
		Value: "ldb",
	}
	directoryFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "directory the dictionary is stored in",
		Value: "polystore",
	}
	policyFlag = cli.StringFlag{
		Name:  "policy",
		Usage: "handling of the values of removed one-to-many keys (clear, retain)",
		Value: "clear",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
)

var commands = []*cli.Command{
	&SetCmd,
	&GetCmd,
	&AddKeyCmd,
	&AddCmd,
	&RemoveValueCmd,
	&RemoveKeyCmd,
	&ContainsCmd,
	&ListCmd,
	&ValuesCmd,
	&InfoCmd,
	&StressTestCmd,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tool",
		Usage:     "polymorphic dictionary toolbox",
		Copyright: "(c) 2025 Sonic Operations Ltd",
		Flags: append([]cli.Flag{
			&variantFlag,
			&directoryFlag,
			&policyFlag,
			&verboseFlag,
		}, diagnostics.Flags()...),
		Before: func(context *cli.Context) error {
			level := slog.LevelInfo
			if context.Bool(verboseFlag.Name) {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(context.App.ErrWriter, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
