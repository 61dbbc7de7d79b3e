// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvar holds console variables.
package cvar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"q2view/console"
)

var (
	ErrDuplicate = errors.New("variable already defined")
	ErrNotFound  = errors.New("variable not found")
)

type flag uint64

const (
	// cvar flags bitfield
	NONE        flag = 0
	ROM         flag = 1 << 6
	USERDEFINED flag = 1 << 17 // created by set
)

// CallbackFunc is called after the value changed. Returning an error
// restores the old value.
type CallbackFunc func(cv *Cvar) error

type Cvar struct {
	rom      bool
	user     bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

// SetByString changes the value unless the variable is read only.
func (cv *Cvar) SetByString(s string) error {
	if cv.rom {
		return errors.Errorf("%s is read only", cv.name)
	}
	return cv.set(s)
}

func (cv *Cvar) set(s string) error {
	old, oldValue := cv.stringValue, cv.value
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(s, 32)
	cv.value = float32(pf)
	if cv.callback != nil {
		if err := cv.callback(cv); err != nil {
			cv.stringValue, cv.value = old, oldValue
			return errors.Wrapf(err, "%s %q", cv.name, s)
		}
	}
	return nil
}

func (cv *Cvar) Reset() error {
	return cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) SetValue(value float32) error {
	if float32(int(value)) == value {
		return cv.SetByString(strconv.FormatInt(int64(value), 10))
	}
	return cv.SetByString(strconv.FormatFloat(float64(value), 'f', -1, 32))
}

func (cv *Cvar) Toggle() error {
	if cv.Bool() {
		return cv.SetByString("0")
	}
	return cv.SetByString("1")
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0" && cv.stringValue != ""
}

// Vars is a set of variables. Names are case insensitive.
type Vars struct {
	mutex  sync.RWMutex
	vars   []*Cvar
	byName map[string]*Cvar
	out    io.Writer
}

// New returns an empty set which prints to out.
func New(out io.Writer) *Vars {
	return &Vars{byName: make(map[string]*Cvar), out: out}
}

// All returns the variables in the order they were created.
func (v *Vars) All() []*Cvar {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return append([]*Cvar(nil), v.vars...)
}

func (v *Vars) Get(name string) (*Cvar, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	cv, ok := v.byName[strings.ToLower(name)]
	return cv, ok
}

func (v *Vars) create(name, value string) *Cvar {
	cv := &Cvar{name: strings.ToLower(name), defaultValue: value}
	cv.set(value)
	v.vars = append(v.vars, cv)
	v.byName[cv.name] = cv
	return cv
}

func (v *Vars) Register(name, value string, flags flag) (*Cvar, error) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	if _, ok := v.byName[strings.ToLower(name)]; ok {
		return nil, errors.Wrapf(ErrDuplicate, "%s", name)
	}
	cv := v.create(name, value)
	cv.rom = flags&ROM != 0
	cv.user = flags&USERDEFINED != 0
	return cv, nil
}

func (v *Vars) MustRegister(name, value string, flags flag) *Cvar {
	cv, err := v.Register(name, value, flags)
	if err != nil {
		panic(err)
	}
	return cv
}

// Execute shows or sets the variable named by a. It is a console.Efunc.
func (v *Vars) Execute(a console.Arguments) (bool, error) {
	cv, ok := v.Get(a.Name())
	if !ok {
		return false, nil
	}
	if a.Len() == 1 {
		fmt.Fprintf(v.out, "\"%s\" is \"%s\"\n", cv.Name(), cv.String())
		return true, nil
	}
	return true, cv.SetByString(a.Argv(1).String())
}

// Commands adds the variable commands to cmds.
func (v *Vars) Commands(cmds *console.Commands) error {
	for _, c := range []struct {
		name, help string
		f          console.Func
	}{
		{"cvarlist", "cvarlist [prefix]: list variables", v.list},
		{"cycle", "cycle <cvar> <value list>: cycle cvar through a list of values", v.cycle},
		{"inc", "inc <cvar> [amount]: increment cvar", v.inc},
		{"reset", "reset <cvar>: reset cvar to default", v.reset},
		{"resetall", "resetall: reset all cvars to default", v.resetAll},
		{"set", "set <cvar> <value>: set or create a cvar", func(a console.Arguments) error {
			return v.set(cmds, a)
		}},
		{"toggle", "toggle <cvar>: toggle cvar", v.toggle},
	} {
		if err := cmds.Add(c.name, c.help, c.f); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vars) lookup(a console.Arguments) (*Cvar, error) {
	name := a.Argv(1).String()
	cv, ok := v.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	return cv, nil
}

func usage(format string) error {
	return errors.Wrap(console.ErrSyntax, format)
}

func (v *Vars) set(cmds *console.Commands, a console.Arguments) error {
	if a.Len() < 3 {
		return usage("set <cvar> <value>")
	}
	name, value := a.Argv(1).String(), a.Argv(2).String()
	if cmds.Exists(name) {
		return errors.Errorf("%s conflicts with a command", name)
	}
	if cv, ok := v.Get(name); ok {
		return cv.SetByString(value)
	}
	_, err := v.Register(name, value, USERDEFINED)
	return err
}

func (v *Vars) toggle(a console.Arguments) error {
	if a.Len() != 2 {
		return usage("toggle <cvar>")
	}
	cv, err := v.lookup(a)
	if err != nil {
		return err
	}
	return cv.Toggle()
}

func (v *Vars) inc(a console.Arguments) error {
	amount := float32(1)
	switch a.Len() {
	case 2:
	case 3:
		f, err := a.Argv(2).Float32()
		if err != nil {
			return err
		}
		amount = f
	default:
		return usage("inc <cvar> [amount]")
	}
	cv, err := v.lookup(a)
	if err != nil {
		return err
	}
	return cv.SetValue(cv.Value() + amount)
}

func (v *Vars) reset(a console.Arguments) error {
	if a.Len() != 2 {
		return usage("reset <cvar>")
	}
	cv, err := v.lookup(a)
	if err != nil {
		return err
	}
	return cv.Reset()
}

func (v *Vars) resetAll(console.Arguments) error {
	for _, cv := range v.All() {
		if cv.rom {
			continue
		}
		if err := cv.Reset(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vars) list(a console.Arguments) error {
	prefix := strings.ToLower(a.Argv(1).String())
	n := 0
	for _, cv := range v.All() {
		if !strings.HasPrefix(cv.Name(), prefix) {
			continue
		}
		ro := " "
		if cv.rom {
			ro = "r"
		}
		fmt.Fprintf(v.out, "%s %s \"%s\"\n", ro, cv.Name(), cv.String())
		n++
	}
	if prefix != "" {
		fmt.Fprintf(v.out, "%d cvars beginning with \"%s\"\n", n, prefix)
	} else {
		fmt.Fprintf(v.out, "%d cvars\n", n)
	}
	return nil
}

func (v *Vars) cycle(a console.Arguments) error {
	if a.Len() < 3 {
		return usage("cycle <cvar> <value list>")
	}
	cv, err := v.lookup(a)
	if err != nil {
		return err
	}
	values := a.Args()[2:]
	next := 0
	for i, val := range values {
		if val.String() == cv.String() {
			next = (i + 1) % len(values)
			break
		}
	}
	return cv.SetByString(values[next].String())
}
