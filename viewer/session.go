// SPDX-License-Identifier: GPL-2.0-or-later

// Package viewer binds console commands to a loaded level.
package viewer

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"q2view/alias"
	"q2view/bsp"
	"q2view/console"
	"q2view/cvar"
	"q2view/filesystem"
	"q2view/level"
	"q2view/maps"
	"q2view/math/vec"
)

var (
	ErrNoLevel = errors.New("no map loaded")
	ErrUsage   = errors.New("usage")
)

// Lister is implemented by openers that can enumerate files.
type Lister interface {
	List(dir, ext string) []string
}

type Session struct {
	fs       level.Opener
	catalog  *maps.Catalog
	settings level.Settings
	out      io.Writer
	cmds     *console.Commands
	buf      *console.Buffer
	vars     *cvar.Vars
	aliases  *alias.Aliases
	level    *level.Level
}

func New(fs level.Opener, catalog *maps.Catalog, settings level.Settings, out io.Writer) *Session {
	s := &Session{
		fs:       fs,
		catalog:  catalog,
		settings: settings,
		out:      out,
		cmds:     console.NewCommands(),
	}
	s.buf = console.NewBuffer(s.cmds)
	s.vars = cvar.New(out)
	s.aliases = alias.New(s.buf, out)
	s.addCommands()
	s.addVars()
	s.buf.SetExecutors(s.cmds.Execute, s.aliases.Execute, s.vars.Execute)
	return s
}

func (s *Session) addCommands() {
	for _, c := range []struct {
		name, help string
		f          console.Func
	}{
		{"map", "map <id|file.bsp>: load a map", s.mapCmd},
		{"showmaps", "showmaps: list the known maps", s.showMapsCmd},
		{"unload", "unload: drop the current map", s.unloadCmd},
		{"leaf", "leaf x y z: the leaf containing a point", s.leafCmd},
		{"vis", "vis x y z: the clusters visible from a point", s.visCmd},
		{"cull", "cull x y z [pitch yaw roll]: face counts for a view", s.cullCmd},
		{"entities", "entities [classname prefix]: list entities", s.entitiesCmd},
		{"lights", "lights x y z [n]: the n lights closest to a point", s.lightsCmd},
		{"stats", "stats: numbers of the current map", s.statsCmd},
		{"cmdlist", "cmdlist [prefix]: list commands", s.cmdListCmd},
		{"echo", "echo text: print text", s.echoCmd},
	} {
		if err := s.cmds.Add(c.name, c.help, c.f); err != nil {
			panic(err)
		}
	}
	if err := s.vars.Commands(s.cmds); err != nil {
		panic(err)
	}
	if err := s.aliases.Register(s.cmds); err != nil {
		panic(err)
	}
}

func (s *Session) Commands() *console.Commands {
	return s.cmds
}

// Level returns the current level or nil.
func (s *Session) Level() *level.Level {
	return s.level
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Exec runs text as console input. It stops at the first error.
func (s *Session) Exec(text string) error {
	s.buf.AddText(text + "\n")
	for s.buf.Pending() {
		if err := s.buf.Execute(); err != nil {
			s.buf.Clear()
			return err
		}
	}
	return nil
}

// Close unloads the current level.
func (s *Session) Close() {
	if s.level != nil {
		s.level.Unload()
		s.level = nil
	}
}

func (s *Session) progress(m maps.Map, st level.Stage) {
	s.printf("%s\n", st)
}

// LoadMap loads a catalog map by id or a .bsp file by path. The current
// level is kept if loading fails.
func (s *Session) LoadMap(name string) error {
	l, err := level.Open(s.fs, s.catalog, name, s.progress)
	if err != nil {
		return err
	}
	s.Close()
	s.level = l
	return nil
}

func (s *Session) current() (*level.Level, error) {
	if s.level == nil {
		return nil, ErrNoLevel
	}
	return s.level, nil
}

func (s *Session) mapCmd(a console.Arguments) error {
	if a.Len() != 2 {
		return errors.Wrap(ErrUsage, "map <id|file.bsp>")
	}
	if err := s.LoadMap(a.Argv(1).String()); err != nil {
		return err
	}
	s.printf("%s\n", s.level.Map.Title())
	return nil
}

func (s *Session) showMapsCmd(a console.Arguments) error {
	avail := map[string]bool{}
	l, canList := s.fs.(Lister)
	if canList {
		for _, n := range l.List("maps", ".bsp") {
			avail[strings.ToLower(filesystem.Base(n))] = true
		}
	}
	for _, m := range s.catalog.All() {
		mark := " "
		if avail[m.ID] {
			mark = "*"
		}
		s.printf("%s %-10s %s\n", mark, m.ID, m.Name)
	}
	s.printf("%d maps\n", s.catalog.Len())
	return nil
}

func (s *Session) unloadCmd(a console.Arguments) error {
	if s.level == nil {
		return ErrNoLevel
	}
	s.Close()
	return nil
}

// position reads three numbers starting at argument i.
func position(a console.Arguments, i int) (vec.Vec3, error) {
	var p vec.Vec3
	for j := range p {
		f, err := a.Argv(i + j).Float32()
		if err != nil {
			return vec.Vec3{}, err
		}
		p[j] = f
	}
	return p, nil
}

func (s *Session) leafCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	if a.Len() != 4 {
		return errors.Wrap(ErrUsage, "leaf x y z")
	}
	p, err := position(a, 1)
	if err != nil {
		return err
	}
	leaf, ok := l.Tree.RegionContaining(p)
	if !ok {
		s.printf("no leaf at %v\n", p)
		return nil
	}
	mins, maxs := leaf.Bounds()
	s.printf("leaf %d cluster %d area %d contents %#x faces %d\n", leaf.Index, leaf.Cluster, leaf.Area, leaf.Contents, len(leaf.Faces))
	s.printf("bounds %v %v\n", mins, maxs)
	return nil
}

func clusterList(b bsp.BitVector) string {
	var sb strings.Builder
	for c, v := range b {
		if !v {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", c)
	}
	return sb.String()
}

func (s *Session) visCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	if a.Len() != 4 {
		return errors.Wrap(ErrUsage, "vis x y z")
	}
	p, err := position(a, 1)
	if err != nil {
		return err
	}
	f := l.ViewFrom(s.settings, p, vec.Vec3{})
	s.printf("cluster %d sees %d of %d clusters: %s\n", f.Cluster(), f.Visible.Count(), len(f.Visible), clusterList(f.Visible))
	return nil
}

func (s *Session) cullCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	if a.Len() != 4 && a.Len() != 7 {
		return errors.Wrap(ErrUsage, "cull x y z [pitch yaw roll]")
	}
	p, err := position(a, 1)
	if err != nil {
		return err
	}
	var angles vec.Vec3
	if a.Len() == 7 {
		if angles, err = position(a, 4); err != nil {
			return err
		}
	}
	f := l.ViewFrom(s.settings, p, angles)
	s.printf("drawn %d pvs culled %d frustum culled %d\n", f.Stats.Drawn, f.Stats.PVSCulled, f.Stats.FrustumCulled)
	return nil
}

func (s *Session) entitiesCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	es := l.Entities.ByClass(a.Argv(1).String())
	for _, e := range es {
		name, _ := e.Name()
		if o, ok := e.Origin(); ok {
			s.printf("%-24s %v\n", name, o)
		} else {
			s.printf("%s\n", name)
		}
	}
	s.printf("%d entities\n", len(es))
	return nil
}

// maxLights is the number of lights a view enables.
const maxLights = 8

func (s *Session) lightsCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	if a.Len() != 4 && a.Len() != 5 {
		return errors.Wrap(ErrUsage, "lights x y z [n]")
	}
	p, err := position(a, 1)
	if err != nil {
		return err
	}
	n := maxLights
	if a.Len() == 5 {
		if n, err = a.Argv(4).Int(); err != nil {
			return err
		}
	}
	for _, li := range l.Entities.NearestLights(p, n) {
		s.printf("%v intensity %g color %v distance %.1f\n", li.Origin, li.Intensity, li.Color, vec.Distance(li.Origin, p))
	}
	return nil
}

func (s *Session) statsCmd(a console.Arguments) error {
	l, err := s.current()
	if err != nil {
		return err
	}
	st := l.Stats()
	s.printf("map %s id %s\n", l.Map.Title(), l.ID)
	s.printf("nodes %d leafs %d clusters %d faces %d\n", st.Nodes, st.Leafs, st.Clusters, st.Faces)
	if st.Unvised {
		s.printf("no visibility data\n")
	}
	s.printf("entities %d lights %d monsters %d\n", st.Entities, st.Lights, st.Monsters)
	if st.SkyName != "" {
		s.printf("sky %s\n", st.SkyName)
	}
	return nil
}

func (s *Session) cmdListCmd(a console.Arguments) error {
	cl := s.cmds.List(a.Argv(1).String())
	for _, c := range cl {
		h, _ := s.cmds.Help(c)
		s.printf("  %-10s %s\n", c, h)
	}
	s.printf("%d commands\n", len(cl))
	return nil
}

func (s *Session) echoCmd(a console.Arguments) error {
	s.printf("%s\n", a.ArgumentString())
	return nil
}
