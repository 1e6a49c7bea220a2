// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package diagnostics adds opt-in profiling facilities to command line tools.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

var (
	DiagnosticsFlag = cli.IntFlag{
		Name:  "diagnostic-port",
		Usage: "enable hosting of a realtime diagnostic server by providing a port",
		Value: 0,
	}
	CpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	TraceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
)

// Flags returns the flags evaluated by AddPerformanceDiagnosticsAction.
func Flags() []cli.Flag {
	return []cli.Flag{&DiagnosticsFlag, &CpuProfileFlag, &TraceFlag}
}

// AddPerformanceDiagnosticsAction wraps an action function to add performance
// diagnostics: a pprof server on the port given by DiagnosticsFlag, CPU
// profiling into the file given by CpuProfileFlag and execution tracing into
// the file given by TraceFlag. All facilities are stopped when the action
// returns. Progress is reported to the default slog logger.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc) cli.ActionFunc {
	return func(context *cli.Context) error {
		logger := slog.Default()

		if port := context.Int(DiagnosticsFlag.Name); port > 0 && port < (1<<16) {
			server, err := startDiagnosticServer(logger, port)
			if err != nil {
				return err
			}
			defer stopDiagnosticServer(logger, server)
		}

		if fileName := strings.TrimSpace(context.String(CpuProfileFlag.Name)); fileName != "" {
			stop, err := startCpuProfiler(fileName)
			if err != nil {
				return err
			}
			logger.Info("recording CPU profile", "file", fileName)
			defer stop()
		}

		if fileName := strings.TrimSpace(context.String(TraceFlag.Name)); fileName != "" {
			stop, err := startTracer(fileName)
			if err != nil {
				return err
			}
			logger.Info("recording trace", "file", fileName)
			defer stop()
		}

		return action(context)
	}
}

func startDiagnosticServer(logger *slog.Logger, port int) (*http.Server, error) {
	addr := fmt.Sprintf("localhost:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start diagnostic server; %w", err)
	}
	logger.Info("diagnostic server started",
		"url", "http://"+addr+"/debug/pprof/",
		"usage", "https://pkg.go.dev/net/http/pprof#hdr-Usage_examples",
	)
	logger.Warn("block and mutex sampling rate is set to 100% for diagnostics, which may impact overall performance")
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	server := &http.Server{Handler: http.DefaultServeMux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("diagnostic server failed", "err", err)
		}
	}()
	return server, nil
}

func stopDiagnosticServer(logger *slog.Logger, server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("failed to stop diagnostic server", "err", err)
	}
	runtime.SetBlockProfileRate(0)
	runtime.SetMutexProfileFraction(0)
}

func startCpuProfiler(filename string) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Join(fmt.Errorf("could not start CPU profile: %w", err), f.Close())
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

func startTracer(filename string) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start trace: %w", err), f.Close())
	}
	return func() {
		trace.Stop()
		_ = f.Close()
	}, nil
}
