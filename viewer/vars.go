// SPDX-License-Identifier: GPL-2.0-or-later

package viewer

import (
	"strconv"

	"github.com/pkg/errors"

	"q2view/cvar"
	"q2view/level"
	"q2view/view"
)

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// addVars exposes the view settings as console variables.
func (s *Session) addVars() {
	for _, v := range []struct {
		name  string
		value float32
		set   func(cv *cvar.Cvar) error
	}{
		{"scale", s.settings.Transform.Scale, func(cv *cvar.Cvar) error {
			t, err := view.NewTransform(cv.Value())
			if err != nil {
				return err
			}
			s.settings.Transform = t
			return nil
		}},
		{"fatpvs", s.settings.FatPVS, func(cv *cvar.Cvar) error {
			if cv.Value() < 0 {
				return errors.New("radius must not be negative")
			}
			s.settings.FatPVS = cv.Value()
			return nil
		}},
		{"fov_x", s.settings.FovX, func(cv *cvar.Cvar) error {
			if cv.Value() <= 0 || cv.Value() >= 180 {
				return errors.New("fov must be between 0 and 180")
			}
			s.settings.FovX = cv.Value()
			return nil
		}},
		{"fov_y", s.settings.FovY, func(cv *cvar.Cvar) error {
			if cv.Value() <= 0 || cv.Value() >= 180 {
				return errors.New("fov must be between 0 and 180")
			}
			s.settings.FovY = cv.Value()
			return nil
		}},
	} {
		cv := s.vars.MustRegister(v.name, formatFloat(v.value), cvar.NONE)
		cv.SetCallback(v.set)
	}
	s.vars.MustRegister("version", "q2view", cvar.ROM)
}

// Settings returns the current view settings.
func (s *Session) Settings() level.Settings {
	return s.settings
}
