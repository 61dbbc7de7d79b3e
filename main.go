// SPDX-License-Identifier: GPL-2.0-or-later

// q2view loads Quake 2 maps and reports what a viewer inside them can see.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"q2view/commandline"
	"q2view/config"
	"q2view/console"
	"q2view/filesystem"
	"q2view/history"
	"q2view/level"
	"q2view/maps"
	"q2view/report"
	"q2view/viewer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "q2view: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := commandline.Parse(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	if opts.Game != "" {
		cfg.Game = opts.Game
	}
	h, err := cfg.Logging.Handler(stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	settings := level.SettingsFrom(cfg.View)

	// A missing game directory is only fatal once a catalog map is opened.
	var fs level.Opener
	if fsys, err := filesystem.New(cfg.BaseDir, cfg.Game); err != nil {
		slog.Warn("no game data", "basedir", cfg.BaseDir, "game", cfg.Game, "err", err)
	} else {
		defer fsys.Close()
		slog.Debug("search path", "dirs", strings.Join(fsys.SearchPath(), ":"))
		fs = fsys
	}

	err = execute(ctx, opts, fs, cat, settings, cfg.BaseDir, stdin, stdout)
	if opts.Metrics != "" {
		if werr := prometheus.WriteToTextfile(opts.Metrics, prometheus.DefaultGatherer); werr != nil {
			slog.Error("writing metrics", "path", opts.Metrics, "err", werr)
		}
	}
	return err
}

func execute(ctx context.Context, opts *commandline.Options, fs level.Opener, cat *maps.Catalog, settings level.Settings, baseDir string, stdin io.Reader, stdout io.Writer) error {
	if len(opts.Maps) > 0 {
		o := report.Options{Settings: settings}
		if p, ok := opts.Pos.Get(); ok {
			o.At = &p
			o.Angles, _ = opts.Angles.Get()
		}
		rs, err := report.LoadAll(ctx, fs, cat, opts.Maps, o)
		if err != nil {
			return err
		}
		if opts.JSON {
			err = report.WriteJSON(stdout, rs)
		} else {
			err = report.WriteText(stdout, rs)
		}
		if err != nil {
			return err
		}
	}

	if len(opts.Exec) == 0 && !opts.Interactive {
		return nil
	}
	s := viewer.New(fs, cat, settings, stdout)
	defer s.Close()
	for _, e := range opts.Exec {
		if err := s.Exec(e); err != nil {
			return err
		}
	}
	if !opts.Interactive {
		return nil
	}
	return interactive(ctx, s, filepath.Join(baseDir, historyFile), stdin, stdout)
}

const historyFile = "q2view_history"

// interactive runs the lines of stdin until quit or EOF. Errors are printed
// and do not stop the loop.
func interactive(ctx context.Context, s *viewer.Session, historyPath string, stdin io.Reader, stdout io.Writer) error {
	h := &history.History{}
	if err := h.Load(historyPath); err != nil {
		slog.Warn("ignoring console history", "path", historyPath, "err", err)
	}
	if err := s.Commands().Add("history", "history: list the previous commands", func(console.Arguments) error {
		for i, l := range h.Lines() {
			fmt.Fprintf(stdout, "%3d %s\n", i, l)
		}
		return nil
	}); err != nil {
		return err
	}
	defer func() {
		if err := h.Save(historyPath); err != nil {
			slog.Warn("console history not saved", "path", historyPath, "err", err)
		}
	}()

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line == "" {
			continue
		}
		h.Add(line)
		if err := s.Exec(line); err != nil {
			fmt.Fprintf(stdout, "%v\n", err)
		}
	}
	return sc.Err()
}
