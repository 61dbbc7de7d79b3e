// SPDX-License-Identifier: GPL-2.0-or-later

// Package level loads a map and answers what a viewer inside it can see.
package level

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"q2view/bsp"
	"q2view/filesystem"
	"q2view/maps"
)

// Stage is a step of Load.
type Stage int

const (
	StageTree Stage = iota
	StageEntities
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageTree:
		return "Loading Binary Space Partitioning Tree..."
	case StageEntities:
		return "Loading Map Entities..."
	case StageDone:
		return "Map Finished Loading!"
	}
	return "Loading..."
}

// Progress is called when Load enters a stage. It may be nil.
type Progress func(m maps.Map, s Stage)

// Opener finds game files. *filesystem.FS implements it.
type Opener interface {
	Open(name string) (filesystem.File, error)
}

type Level struct {
	ID       uuid.UUID
	Map      maps.Map
	Tree     *bsp.Tree
	Entities bsp.Entities
	LoadTime time.Duration
}

// Load reads m.FileName() from fs.
func Load(fs Opener, m maps.Map, progress Progress) (*Level, error) {
	f, err := fs.Open(m.FileName())
	if err != nil {
		instrumentLoad(nil, err)
		return nil, errors.Wrapf(err, "map %s", m.ID)
	}
	defer f.Close()
	return load(f, m, progress)
}

// Open loads a map named by its catalog id or, if name ends in .bsp, by
// file path.
func Open(fs Opener, catalog *maps.Catalog, name string, progress Progress) (*Level, error) {
	if strings.EqualFold(filesystem.Ext(name), ".bsp") {
		return LoadFile(name, progress)
	}
	m, err := catalog.Get(name)
	if err != nil {
		return nil, err
	}
	if fs == nil {
		return nil, errors.Wrapf(os.ErrNotExist, "map %s: no game directory", m.ID)
	}
	return Load(fs, m, progress)
}

// LoadFile reads a map file outside of the search path. The map id is the
// file name without extension.
func LoadFile(path string, progress Progress) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		instrumentLoad(nil, err)
		return nil, errors.Wrap(err, "map file")
	}
	defer f.Close()
	return load(f, maps.Map{ID: filesystem.Base(path)}, progress)
}

func load(r io.ReadSeeker, m maps.Map, progress Progress) (*Level, error) {
	l, err := read(r, m, progress)
	instrumentLoad(l, err)
	return l, err
}

func read(r io.ReadSeeker, m maps.Map, progress Progress) (*Level, error) {
	report := func(s Stage) {
		slog.Debug(s.String(), "map", m.ID)
		if progress != nil {
			progress(m, s)
		}
	}
	start := time.Now()

	h, err := bsp.ReadHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", m.ID)
	}
	report(StageTree)
	tree := &bsp.Tree{}
	if err := tree.Load(h, r); err != nil {
		return nil, errors.Wrapf(err, "map %s", m.ID)
	}
	report(StageEntities)
	es, err := bsp.LoadEntities(h, r)
	if err != nil {
		tree.Unload()
		return nil, errors.Wrapf(err, "map %s", m.ID)
	}

	l := &Level{
		ID:       uuid.Must(uuid.NewV7()),
		Map:      m,
		Tree:     tree,
		Entities: es,
		LoadTime: time.Since(start),
	}
	if n := l.unclusteredFaces(); n > 0 {
		slog.Warn("faces in leafs without cluster are never drawn", "map", m.ID, "faces", n)
	}
	report(StageDone)
	slog.Info("level loaded",
		"id", l.ID,
		"map", m.ID,
		"clusters", tree.ClusterCount(),
		"leafs", len(tree.Leaves()),
		"entities", len(es),
		"duration", l.LoadTime)
	return l, nil
}

func (l *Level) unclusteredFaces() int {
	n := 0
	for _, leaf := range l.Tree.Leaves() {
		if leaf.Cluster < 0 {
			n += len(leaf.Faces)
		}
	}
	return n
}

// Loaded reports whether the level still holds its tree.
func (l *Level) Loaded() bool {
	return l.Tree != nil && l.Tree.Loaded()
}

// Unload frees the tree and entities. It is safe to call it twice.
func (l *Level) Unload() {
	if l.Tree != nil && l.Tree.Loaded() {
		instrumentUnload()
		l.Tree.Unload()
		slog.Debug("level unloaded", "id", l.ID, "map", l.Map.ID)
	}
	l.Entities = nil
}

type Stats struct {
	Nodes     int
	Leafs     int
	Clusters  int
	Faces     int
	Unvised   bool
	Entities  int
	Lights    int
	Monsters  int
	SkyName   string
	HasPlayer bool
}

func (l *Level) Stats() Stats {
	s := Stats{
		Nodes:    l.Tree.NodeCount(),
		Leafs:    len(l.Tree.Leaves()),
		Clusters: l.Tree.ClusterCount(),
		Unvised:  l.Tree.Unvised(),
		Entities: len(l.Entities),
		Lights:   len(l.Entities.Lights()),
		Monsters: len(l.Entities.Monsters()),
	}
	for _, c := range l.Tree.ClusterFaceBatches() {
		for _, b := range c {
			s.Faces += len(b)
		}
	}
	s.SkyName, _ = l.Entities.SkyName()
	_, _, s.HasPlayer = l.Entities.PlayerStart()
	return s
}
