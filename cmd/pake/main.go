// pake is a content-addressed build engine.
// Copyright (C) 2026 The pake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command pake is a thin CLI wrapper around pkg/pake: it wires
// internal/samplehost's rules into an Engine rooted at -C and builds the
// targets given on the command line, or "default" if none are given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pake/internal/logging"
	"pake/internal/samplehost"
	"pake/pkg/pake"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is kept separate from main for testability, mirroring the
// teacher's cmd/*/main.go thin-wrapper convention.
func run(args []string) int {
	fs := flag.NewFlagSet("pake", flag.ContinueOnError)
	dir := fs.String("C", ".", "use `dir` as the engine root")
	statePath := fs.String("state", "", "override the state file path (default: <dir>/.pake-state)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return int(pake.ExitUsage)
	}

	logger := logging.New(*logLevel)
	slog.SetDefault(logger)

	root, err := filepath.Abs(*dir)
	if err != nil {
		logger.Error(err.Error())
		return int(pake.ExitUsage)
	}

	opts := []pake.Option{pake.WithLogger(logger)}
	if *statePath != "" {
		opts = append(opts, pake.WithStatePath(*statePath))
	}

	engine, err := pake.NewEngine(root, opts...)
	if err != nil {
		logger.Error(err.Error())
		return int(pake.ExitUsage)
	}
	if err := samplehost.Register(engine); err != nil {
		logger.Error(err.Error())
		return int(pake.ExitUsage)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			logger.Warn("interrupt received, finishing the in-flight recipe before exiting")
			cancel()
		}
	}()

	n, buildErr := engine.Build(ctx, fs.Args()...)
	if buildErr != nil {
		var be pake.BuildError
		if errors.As(buildErr, &be) {
			logger.Error(be.Line())
			return int(be.ExitCode())
		}
		logger.Error(buildErr.Error())
		return int(pake.ExitUsage)
	}

	logger.Info(fmt.Sprintf("build complete: %d recipe(s) invoked", n))
	return int(pake.ExitOK)
}
