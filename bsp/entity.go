// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q2view/math/vec"
)

type Entity struct {
	properties map[string]string
}

func NewEntity(props map[string]string) *Entity {
	return &Entity{properties: props}
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

func (e *Entity) PropertyNames() []string {
	n := make([]string, 0, len(e.properties))
	for k := range e.properties {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Vector parses a property of the form "x y z".
func (e *Entity) Vector(name string) (vec.Vec3, bool) {
	s, ok := e.properties[name]
	if !ok {
		return vec.Vec3{}, false
	}
	f := strings.Fields(s)
	if len(f) != 3 {
		return vec.Vec3{}, false
	}
	var v vec.Vec3
	for i := range v {
		x, err := strconv.ParseFloat(f[i], 32)
		if err != nil {
			return vec.Vec3{}, false
		}
		v[i] = float32(x)
	}
	return v, true
}

func (e *Entity) Float(name string) (float32, bool) {
	s, ok := e.properties[name]
	if !ok {
		return 0, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, false
	}
	return float32(x), true
}

func (e *Entity) Origin() (vec.Vec3, bool) {
	return e.Vector("origin")
}

var ErrBadEntities = errors.New("bad entity lump")

/*
ParseEntities parses the entity lump. The data looks like:

	{
	  "classname" "worldspawn"
	  "sky" "unit1_"
	}
	{
	  "classname" "info_player_start"
	  "origin" "-64 96 24"
	}

Everything outside of quotes apart from braces is ignored.
*/
func ParseEntities(data []byte) ([]*Entity, error) {
	var es []*Entity
	var cur map[string]string
	var key *string
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case 0:
			// the lump is NUL terminated
			i = len(data)
		case '{':
			if cur != nil {
				return nil, errors.Wrapf(ErrBadEntities, "nested '{' at byte %d", i)
			}
			cur = make(map[string]string)
		case '}':
			if cur == nil {
				return nil, errors.Wrapf(ErrBadEntities, "unexpected '}' at byte %d", i)
			}
			if key != nil {
				return nil, errors.Wrapf(ErrBadEntities, "key %q without value", *key)
			}
			es = append(es, NewEntity(cur))
			cur = nil
		case '"':
			end := bytes.IndexByte(data[i+1:], '"')
			if end == -1 {
				return nil, errors.Wrapf(ErrBadEntities, "unterminated string at byte %d", i)
			}
			s := string(data[i+1 : i+1+end])
			i += end + 1
			if cur == nil {
				return nil, errors.Wrapf(ErrBadEntities, "string %q outside of entity", s)
			}
			if key == nil {
				key = &s
				continue
			}
			cur[*key] = s
			key = nil
		}
	}
	if cur != nil {
		return nil, errors.Wrap(ErrBadEntities, "missing '}'")
	}
	return es, nil
}

// LoadEntities reads and parses the entity lump.
func LoadEntities(h *Header, r io.ReadSeeker) (Entities, error) {
	d := h.Lump(LumpEntities)
	if d.Length == 0 {
		return nil, nil
	}
	if d.Offset < 0 || d.Length < 0 {
		return nil, errors.Wrapf(ErrCorruptLump, "lump %v: offset %d, length %d", LumpEntities, d.Offset, d.Length)
	}
	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if end := int64(d.Offset) + int64(d.Length); end > size {
		return nil, errors.Wrapf(ErrCorruptLump, "lump %v: ends at %d behind end of data at %d", LumpEntities, end, size)
	}
	if _, err := r.Seek(int64(d.Offset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to entities")
	}
	data := make([]byte, d.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "reading entities")
	}
	es, err := ParseEntities(data)
	if err != nil {
		return nil, err
	}
	return Entities(es), nil
}

type Entities []*Entity

// ByClass returns all entities whose classname has the given prefix.
func (es Entities) ByClass(prefix string) Entities {
	var r Entities
	for _, e := range es {
		if n, ok := e.Name(); ok && strings.HasPrefix(n, prefix) {
			r = append(r, e)
		}
	}
	return r
}

// World returns the worldspawn entity.
func (es Entities) World() (*Entity, bool) {
	for _, e := range es {
		if n, _ := e.Name(); n == "worldspawn" {
			return e, true
		}
	}
	return nil, false
}

// SkyName returns the name of the sky box of the map.
func (es Entities) SkyName() (string, bool) {
	w, ok := es.World()
	if !ok {
		return "", false
	}
	return w.Property("sky")
}

// PlayerStart returns the origin and view angle of the first
// info_player_start.
func (es Entities) PlayerStart() (vec.Vec3, float32, bool) {
	for _, e := range es.ByClass("info_player_start") {
		o, ok := e.Origin()
		if !ok {
			continue
		}
		angle, _ := e.Float("angle")
		return o, angle, true
	}
	return vec.Vec3{}, 0, false
}

// Monsters returns every entity with a monster_ classname.
func (es Entities) Monsters() Entities {
	return es.ByClass("monster_")
}

type Light struct {
	Origin    vec.Vec3
	Intensity float32
	Color     vec.Vec3
}

const defaultLightIntensity = 300

// Lights returns the point lights of the map. Only the classname light
// counts; light_mine1 and light_mine2 are models.
func (es Entities) Lights() []Light {
	var ls []Light
	for _, e := range es {
		if n, _ := e.Name(); n != "light" {
			continue
		}
		o, ok := e.Origin()
		if !ok {
			continue
		}
		l := Light{
			Origin:    o,
			Intensity: defaultLightIntensity,
			Color:     vec.Vec3{1, 1, 1},
		}
		if i, ok := e.Float("light"); ok {
			l.Intensity = i
		}
		if c, ok := e.Vector("_color"); ok {
			l.Color = c
		}
		ls = append(ls, l)
	}
	return ls
}

// NearestLights returns up to n lights ordered by their distance to p.
func (es Entities) NearestLights(p vec.Vec3, n int) []Light {
	ls := es.Lights()
	sort.SliceStable(ls, func(i, j int) bool {
		return vec.Distance(ls[i].Origin, p) < vec.Distance(ls[j].Origin, p)
	})
	if len(ls) > n {
		ls = ls[:max(n, 0)]
	}
	return ls
}
