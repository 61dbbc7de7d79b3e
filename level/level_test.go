// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"q2view/bsp"
	"q2view/bsp/bsptest"
	"q2view/filesystem"
	"q2view/maps"
	"q2view/math/vec"
	"q2view/pack"
	"q2view/view"
)

// testFS has base1 as loose file, base2 in a pak and a broken base3.
func testFS(t *testing.T) *filesystem.FS {
	t.Helper()
	dir := t.TempDir()
	game := filepath.Join(dir, filesystem.DefaultGame)
	require.NoError(t, os.MkdirAll(filepath.Join(game, "maps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(game, "maps", "base1.bsp"), bsptest.SimpleMap().Bytes(), 0o644))

	unvised := bsptest.SimpleMap()
	unvised.PVS = nil
	broken := bsptest.SimpleMap()
	broken.Nodes[0].Front = 7
	var b bytes.Buffer
	require.NoError(t, pack.Write(&b, []pack.File{
		{Name: "maps/base2.bsp", Data: unvised.Bytes()},
		{Name: "maps/base3.bsp", Data: broken.Bytes()},
		{Name: "maps/train.bsp", Data: []byte("IBSP")},
	}))
	require.NoError(t, os.WriteFile(filepath.Join(game, "pak0.pak"), b.Bytes(), 0o644))

	fsys, err := filesystem.New(dir, "")
	require.NoError(t, err)
	t.Cleanup(func() { fsys.Close() })
	return fsys
}

func TestLoad(t *testing.T) {
	var stages []Stage
	l, err := Load(testFS(t), maps.Base1, func(m maps.Map, s Stage) {
		require.Equal(t, maps.Base1, m)
		stages = append(stages, s)
	})
	require.NoError(t, err)
	require.Equal(t, []Stage{StageTree, StageEntities, StageDone}, stages)
	require.True(t, l.Loaded())
	require.Equal(t, maps.Base1, l.Map)
	require.NotEqual(t, uuid.Nil, l.ID)

	require.Equal(t, Stats{
		Nodes:     3,
		Leafs:     4,
		Clusters:  3,
		Faces:     5,
		Entities:  5,
		Lights:    2,
		Monsters:  1,
		SkyName:   "unit1_",
		HasPlayer: true,
	}, l.Stats())

	o, angles := l.Start()
	require.Equal(t, vec.Vec3{64, 64, 32}, o)
	require.Equal(t, vec.Vec3{0, 90, 0}, angles)

	l.Unload()
	l.Unload()
	require.False(t, l.Loaded())
	require.Empty(t, l.Entities)
}

func TestLoadFromPak(t *testing.T) {
	l, err := Load(testFS(t), maps.Base2, nil)
	require.NoError(t, err)
	require.True(t, l.Tree.Unvised())
	require.Equal(t, 3, l.Tree.ClusterCount())
}

func TestLoadErrors(t *testing.T) {
	fsys := testFS(t)

	_, err := Load(fsys, maps.Boss2, nil)
	require.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(fsys, maps.Base3, nil)
	require.True(t, errors.Is(err, bsp.ErrMalformedTree))

	_, err = Load(fsys, maps.Train, nil)
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nothing.bsp"), nil)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q2dm1.bsp")
	require.NoError(t, os.WriteFile(path, bsptest.SimpleMap().Bytes(), 0o644))
	l, err := LoadFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, maps.Map{ID: "q2dm1"}, l.Map)
	require.Equal(t, "q2dm1", l.Map.Title())
}

func TestView(t *testing.T) {
	l, err := Load(testFS(t), maps.Base1, nil)
	require.NoError(t, err)

	s := DefaultSettings()
	s.Transform = view.Transform{Scale: 1}
	s.FatPVS = 0

	// engine (-100, 0, 200) is map (200, 100, 0)
	f := l.View(s, vec.Vec3{-100, 0, 200}, vec.Vec3{})
	require.Equal(t, vec.Vec3{200, 100, 0}, f.Position)
	require.Equal(t, 1, f.Leaf.Index)
	require.Equal(t, 0, f.Cluster())
	require.Equal(t, bsp.BitVector{true, true, false}, f.Visible)
	require.Equal(t, bsp.CullStats{Drawn: 3, PVSCulled: 2}, f.Stats)

	// looking back along -x sees the other half
	f = l.ViewFrom(s, vec.Vec3{200, 100, 0}, vec.Vec3{0, 180, 0})
	require.Equal(t, bsp.CullStats{Drawn: 3, PVSCulled: 2}, f.Stats)

	// outside of every cluster everything is potentially visible
	f = l.ViewFrom(s, vec.Vec3{-10, 0, -10}, vec.Vec3{})
	require.Equal(t, -1, f.Cluster())
	require.Equal(t, bsp.BitVector{true, true, true}, f.Visible)
	require.Equal(t, 5, f.Stats.Total())

	s.FatPVS = 16
	f = l.ViewFrom(s, vec.Vec3{-4, 10, 10}, vec.Vec3{})
	require.Equal(t, 2, f.Cluster())
	require.Equal(t, bsp.BitVector{true, true, true}, f.Visible)
}

func TestStageString(t *testing.T) {
	require.Equal(t, "Map Finished Loading!", StageDone.String())
	require.Equal(t, "Loading...", Stage(42).String())
}

func TestOpen(t *testing.T) {
	fsys := testFS(t)
	cat, err := maps.NewCatalog()
	require.NoError(t, err)

	l, err := Open(fsys, cat, "Base1", nil)
	require.NoError(t, err)
	require.Equal(t, maps.Base1, l.Map)

	path := filepath.Join(t.TempDir(), "unit.BSP")
	require.NoError(t, os.WriteFile(path, bsptest.SimpleMap().Bytes(), 0o644))
	l, err = Open(nil, cat, path, nil)
	require.NoError(t, err)
	require.Equal(t, "unit", l.Map.ID)

	_, err = Open(fsys, cat, "e1m1", nil)
	require.True(t, errors.Is(err, maps.ErrUnknownMap))
	_, err = Open(nil, cat, "base1", nil)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
