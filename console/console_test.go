// SPDX-License-Identifier: GPL-2.0-or-later

package console

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in     string
		wantF  string
		wantAS string
		wantA  []Arg
	}{
		{
			in:     `leaf 1 2 3`,
			wantF:  `leaf 1 2 3`,
			wantAS: `1 2 3`,
			wantA:  []Arg{{"leaf"}, {"1"}, {"2"}, {"3"}},
		},
		{
			in:     `echo "hello world"`,
			wantF:  `echo "hello world"`,
			wantAS: `hello world`,
			wantA:  []Arg{{"echo"}, {"hello world"}},
		},
		{
			in:     ` map  base1 // the first one`,
			wantF:  `map  base1 // the first one`,
			wantAS: `base1 // the first one`,
			wantA:  []Arg{{"map"}, {"base1"}},
		},
		{
			in:     "showmaps\n",
			wantF:  `showmaps`,
			wantAS: ``,
			wantA:  []Arg{{"showmaps"}},
		},
		{
			in:    ``,
			wantA: []Arg{},
		},
	} {
		arg, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.in, err)
		}
		if tc.wantF != arg.Full() {
			t.Errorf("Parse(%q).Full()=%q, want %q", tc.in, arg.Full(), tc.wantF)
		}
		if tc.wantAS != arg.ArgumentString() {
			t.Errorf("Parse(%q).ArgumentString()=%q, want %q", tc.in, arg.ArgumentString(), tc.wantAS)
		}
		if !reflect.DeepEqual(arg.Args(), tc.wantA) {
			t.Errorf("Parse(%q).Args()=%v, want %v", tc.in, arg.Args(), tc.wantA)
		}
	}
	if _, err := Parse(`echo "open`); !errors.Is(err, ErrSyntax) {
		t.Errorf("unterminated string: err = %v", err)
	}
	if _, err := Parse("echo \x01"); !errors.Is(err, ErrSyntax) {
		t.Errorf("control char: err = %v", err)
	}
}

func TestArg(t *testing.T) {
	a, _ := Parse("cmd 12 -3.5 x on")
	if n, err := a.Argv(1).Int(); err != nil || n != 12 {
		t.Errorf("Int() = %v, %v", n, err)
	}
	if f, err := a.Argv(2).Float32(); err != nil || f != -3.5 {
		t.Errorf("Float32() = %v, %v", f, err)
	}
	if _, err := a.Argv(3).Float32(); !errors.Is(err, ErrSyntax) {
		t.Errorf("Float32(x) err = %v", err)
	}
	if _, err := a.Argv(3).Int(); !errors.Is(err, ErrSyntax) {
		t.Errorf("Int(x) err = %v", err)
	}
	if !a.Argv(4).Bool() || a.Argv(3).Bool() {
		t.Errorf("Bool() wrong")
	}
	if a.Argv(9).String() != "" || a.Argv(-1).String() != "" {
		t.Errorf("Argv out of range not empty")
	}
	if a.Len() != 5 || a.Name() != "cmd" {
		t.Errorf("Len() = %d, Name() = %q", a.Len(), a.Name())
	}
}

func TestCommands(t *testing.T) {
	c := NewCommands()
	var got []string
	f := func(a Arguments) error {
		got = append(got, a.ArgumentString())
		return nil
	}
	if err := c.Add("Map", "load a map", f); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("mapinfo", "", f); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("map", "", f); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add twice: err = %v", err)
	}
	if !c.Exists("MAP") || c.Exists("unload") {
		t.Errorf("Exists wrong")
	}
	if h, ok := c.Help("map"); !ok || h != "load a map" {
		t.Errorf("Help(map) = %q, %v", h, ok)
	}
	if l := c.List("map"); !reflect.DeepEqual(l, []string{"map", "mapinfo"}) {
		t.Errorf("List(map) = %v", l)
	}
	a, _ := Parse("MAP base1")
	if ok, err := c.Execute(a); !ok || err != nil {
		t.Errorf("Execute() = %v, %v", ok, err)
	}
	a, _ = Parse("unload")
	if ok, _ := c.Execute(a); ok {
		t.Errorf("Execute(unload) found a command")
	}
	if !reflect.DeepEqual(got, []string{"base1"}) {
		t.Errorf("got %v", got)
	}
}

func TestWait(t *testing.T) {
	c := NewCommands()
	runCount := 0
	c.Add("test", "", func(Arguments) error {
		runCount++
		return nil
	})
	b := NewBuffer(c)
	b.AddText("wait\n")
	b.AddText("test\n")
	b.AddText("test\n")
	b.AddText("wait\n")
	b.AddText("test\n")
	for i, want := range []int{0, 2, 3} {
		if err := b.Execute(); err != nil {
			t.Fatal(err)
		}
		if runCount != want {
			t.Errorf("Execute %d: runCount=%v, want %v", i, runCount, want)
		}
	}
	if b.Pending() {
		t.Errorf("buffer not empty")
	}
}

func TestBufferSplit(t *testing.T) {
	c := NewCommands()
	var got []string
	c.Add("echo", "", func(a Arguments) error {
		got = append(got, a.ArgumentString())
		return nil
	})
	b := NewBuffer(c)
	b.AddText(`echo a; echo "b;c"` + "\n\necho d")
	b.InsertText("echo first")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"first", "a", "b;c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBufferErrors(t *testing.T) {
	c := NewCommands()
	fail := errors.New("boom")
	c.Add("fail", "", func(Arguments) error { return fail })
	c.Add("ok", "", func(Arguments) error { return nil })
	b := NewBuffer(c)
	b.AddText("ok; nope; ok")
	if err := b.Execute(); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command: err = %v", err)
	}
	if !b.Pending() {
		t.Errorf("rest of the buffer dropped")
	}
	if err := b.Execute(); err != nil {
		t.Errorf("second Execute: %v", err)
	}
	b.AddText("fail; ok")
	if err := b.Execute(); !errors.Is(err, fail) {
		t.Errorf("failing command: err = %v", err)
	}
	b.Clear()
	if b.Pending() {
		t.Errorf("Clear kept commands")
	}
}

func TestExecutors(t *testing.T) {
	c := NewCommands()
	var got []string
	c.Add("cmd", "", func(Arguments) error {
		got = append(got, "cmd")
		return nil
	})
	b := NewBuffer(c)
	b.SetExecutors(c.Execute, func(a Arguments) (bool, error) {
		if a.Name() != "other" {
			return false, nil
		}
		got = append(got, "other "+a.ArgumentString())
		return true, nil
	})
	b.AddText("cmd; other x y; cmd")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"cmd", "other x y", "cmd"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	b.AddText("none")
	if err := b.Execute(); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v", err)
	}
}
