// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline parses the arguments of the q2view binary.
package commandline

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q2view/math/vec"
)

type Options struct {
	Config  string
	BaseDir string
	Game    string
	JSON    bool
	// Metrics is a file the prometheus metrics are written to on exit.
	Metrics string
	// Interactive reads console commands from stdin after the batch.
	Interactive bool
	Exec        []string
	Pos         vecFlag
	Angles      vecFlag
	// Maps are catalog ids or .bsp paths.
	Maps []string
}

// vecFlag is a position given as "x,y,z".
type vecFlag struct {
	set bool
	v   vec.Vec3
}

func (f *vecFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return errors.Errorf("want x,y,z, got %q", s)
	}
	var v vec.Vec3
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return errors.Errorf("bad coordinate %q", p)
		}
		v[i] = float32(x)
	}
	f.v = v
	f.set = true
	return nil
}

func (f *vecFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v[0], f.v[1], f.v[2])
}

// Get returns the vector and whether it was given.
func (f *vecFlag) Get() (vec.Vec3, bool) {
	return f.v, f.set
}

// execFlag collects every -exec.
type execFlag []string

func (e *execFlag) Set(s string) error {
	*e = append(*e, s)
	return nil
}

func (e *execFlag) String() string {
	if e == nil {
		return ""
	}
	return strings.Join(*e, "; ")
}

// Parse reads args without the program name. Usage and errors go to out.
func Parse(args []string, out io.Writer) (*Options, error) {
	o := &Options{}
	flags := flag.NewFlagSet("q2view", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.StringVar(&o.Config, "config", "", "YAML config file (default $Q2VIEW_CONFIG)")
	flags.StringVar(&o.BaseDir, "basedir", "", "directory containing the game directories")
	flags.StringVar(&o.Game, "game", "", "game directory on top of baseq2")
	flags.BoolVar(&o.JSON, "json", false, "print reports as JSON")
	flags.StringVar(&o.Metrics, "metrics", "", "write metrics in the prometheus text format to this file")
	flags.BoolVar(&o.Interactive, "i", false, "read console commands from stdin")
	flags.Var((*execFlag)(&o.Exec), "exec", "console commands to run, may be repeated")
	flags.Var(&o.Pos, "pos", "viewer position x,y,z in map units (default player start)")
	flags.Var(&o.Angles, "angles", "view angles pitch,yaw,roll in degrees")
	flags.Usage = func() {
		fmt.Fprintf(out, "usage: q2view [flags] [map id or file.bsp ...]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	o.Maps = flags.Args()
	return o, nil
}
