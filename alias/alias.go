// SPDX-License-Identifier: GPL-2.0-or-later

// Package alias lets console users name a sequence of commands.
package alias

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"q2view/console"
)

type Aliases struct {
	aliases map[string]string
	buf     *console.Buffer
	out     io.Writer
}

// New returns aliases that expand into buf and print to out.
func New(buf *console.Buffer, out io.Writer) *Aliases {
	return &Aliases{
		aliases: make(map[string]string),
		buf:     buf,
		out:     out,
	}
}

// Register adds alias, unalias and unaliasall to cmds.
func (al *Aliases) Register(cmds *console.Commands) error {
	for _, c := range []struct {
		name, help string
		f          console.Func
	}{
		{"alias", "alias [name [commands]]: list, show or define aliases", al.alias},
		{"unalias", "unalias <name>: delete an alias", al.unalias},
		{"unaliasall", "unaliasall: delete all aliases", al.unaliasAll},
	} {
		if err := cmds.Add(c.name, c.help, c.f); err != nil {
			return err
		}
	}
	return nil
}

func (al *Aliases) alias(a console.Arguments) error {
	switch a.Len() {
	case 1:
		al.list()
	case 2:
		if v, ok := al.Get(a.Argv(1).String()); ok {
			fmt.Fprintf(al.out, "  %s: %s\n", a.Argv(1).String(), v)
		}
	default:
		al.aliases[strings.ToLower(a.Argv(1).String())] = join(a.Args()[2:], " ")
	}
	return nil
}

// join puts the arguments back together, their quotes are already removed.
func join(a []console.Arg, sep string) string {
	parts := make([]string, len(a))
	for i, arg := range a {
		parts[i] = arg.String()
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}

func (al *Aliases) list() {
	if len(al.aliases) == 0 {
		fmt.Fprintf(al.out, "no alias commands found\n")
		return
	}
	names := make([]string, 0, len(al.aliases))
	for k := range al.aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(al.out, "  %s: %s\n", k, al.aliases[k])
	}
	fmt.Fprintf(al.out, "%d alias command(s)\n", len(al.aliases))
}

func (al *Aliases) unalias(a console.Arguments) error {
	if a.Len() != 2 {
		fmt.Fprintf(al.out, "unalias <name> : delete alias\n")
		return nil
	}
	name := strings.ToLower(a.Argv(1).String())
	if _, ok := al.aliases[name]; !ok {
		fmt.Fprintf(al.out, "No alias named %s\n", name)
		return nil
	}
	delete(al.aliases, name)
	return nil
}

func (al *Aliases) unaliasAll(console.Arguments) error {
	clear(al.aliases)
	return nil
}

func (al *Aliases) Get(name string) (string, bool) {
	v, ok := al.aliases[strings.ToLower(name)]
	return v, ok
}

// Execute puts the commands of the alias named by a in front of the buffer.
// It is a console.Efunc.
func (al *Aliases) Execute(a console.Arguments) (bool, error) {
	v, ok := al.Get(a.Name())
	if !ok {
		return false, nil
	}
	al.buf.InsertText(v)
	return true, nil
}
