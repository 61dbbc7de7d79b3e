// SPDX-License-Identifier: GPL-2.0-or-later

// Package report loads a batch of maps and describes what a viewer sees in
// each of them.
package report

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"q2view/level"
	"q2view/maps"
	"q2view/math/vec"
)

// Report is the result for one map.
type Report struct {
	Map      maps.Map
	ID       uuid.UUID
	Stats    level.Stats
	LoadTime time.Duration
	// Frame is taken from the position given to LoadAll or the player start.
	Frame level.Frame
}

// Options select the viewer of every report.
type Options struct {
	Settings level.Settings
	// At is a position in map space. Nil means the player start.
	At *vec.Vec3
	// Angles are used together with At.
	Angles vec.Vec3
	// Limit is the number of maps loaded at once, 0 means GOMAXPROCS.
	Limit int
}

// LoadAll opens every name with level.Open. The reports are in the order of
// names. The first error cancels the maps not yet started.
func LoadAll(ctx context.Context, fs level.Opener, cat *maps.Catalog, names []string, o Options) ([]Report, error) {
	reports := make([]Report, len(names))
	g, ctx := errgroup.WithContext(ctx)
	limit := o.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := level.Open(fs, cat, name, nil)
			if err != nil {
				return err
			}
			defer l.Unload()
			reports[i] = build(l, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func build(l *level.Level, o Options) Report {
	p, angles := l.Start()
	if o.At != nil {
		p, angles = *o.At, o.Angles
	}
	return Report{
		Map:      l.Map,
		ID:       l.ID,
		Stats:    l.Stats(),
		LoadTime: l.LoadTime,
		Frame:    l.ViewFrom(o.Settings, p, angles),
	}
}

// Struct returns r as a protobuf struct.
func (r Report) Struct() (*structpb.Struct, error) {
	visible := []interface{}{}
	for c, v := range r.Frame.Visible {
		if v {
			visible = append(visible, c)
		}
	}
	s := r.Stats
	return structpb.NewStruct(map[string]interface{}{
		"map":      r.Map.ID,
		"title":    r.Map.Title(),
		"id":       r.ID.String(),
		"load_ms":  float64(r.LoadTime) / float64(time.Millisecond),
		"nodes":    s.Nodes,
		"leafs":    s.Leafs,
		"clusters": s.Clusters,
		"faces":    s.Faces,
		"unvised":  s.Unvised,
		"entities": map[string]interface{}{
			"count":      s.Entities,
			"lights":     s.Lights,
			"monsters":   s.Monsters,
			"sky":        s.SkyName,
			"has_player": s.HasPlayer,
		},
		"view": map[string]interface{}{
			"position": []interface{}{
				r.Frame.Position[0], r.Frame.Position[1], r.Frame.Position[2],
			},
			"cluster":        r.Frame.Cluster(),
			"visible":        visible,
			"drawn":          r.Frame.Stats.Drawn,
			"pvs_culled":     r.Frame.Stats.PVSCulled,
			"frustum_culled": r.Frame.Stats.FrustumCulled,
		},
	})
}

// WriteJSON writes all reports as one JSON array.
func WriteJSON(w io.Writer, rs []Report) error {
	v := &structpb.ListValue{}
	for _, r := range rs {
		s, err := r.Struct()
		if err != nil {
			return errors.Wrapf(err, "report %s", r.Map.ID)
		}
		v.Values = append(v.Values, structpb.NewStructValue(s))
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteText writes one block per report.
func WriteText(w io.Writer, rs []Report) error {
	for _, r := range rs {
		s := r.Stats
		f := r.Frame
		if _, err := fmt.Fprintf(w,
			"%s\n"+
				"  nodes %d leafs %d clusters %d faces %d unvised %v\n"+
				"  entities %d lights %d monsters %d sky %q\n"+
				"  view %v cluster %d sees %d clusters\n"+
				"  drawn %d pvs culled %d frustum culled %d\n",
			r.Map.Title(),
			s.Nodes, s.Leafs, s.Clusters, s.Faces, s.Unvised,
			s.Entities, s.Lights, s.Monsters, s.SkyName,
			f.Position, f.Cluster(), f.Visible.Count(),
			f.Stats.Drawn, f.Stats.PVSCulled, f.Stats.FrustumCulled); err != nil {
			return err
		}
	}
	return nil
}
