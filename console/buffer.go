// SPDX-License-Identifier: GPL-2.0-or-later

package console

import (
	"github.com/pkg/errors"
)

// Efunc runs a command if it knows it and reports whether it did.
type Efunc func(a Arguments) (bool, error)

// Buffer queues command text. Commands are separated by newlines or by
// semicolons outside of quotes.
type Buffer struct {
	text string
	// set by the wait command, stops Execute until the next call
	wait  bool
	cmds  *Commands
	execs []Efunc
}

// NewBuffer returns a buffer executing cmds. It adds the wait command to
// cmds if it is not defined yet.
func NewBuffer(cmds *Commands) *Buffer {
	b := &Buffer{cmds: cmds, execs: []Efunc{cmds.Execute}}
	if !cmds.Exists("wait") {
		cmds.Add("wait", "continue with the next command on the next Execute", func(Arguments) error {
			b.wait = true
			return nil
		})
	}
	return b
}

// SetExecutors replaces the executors. Each command goes to them in order
// until one of them knows it.
func (b *Buffer) SetExecutors(e ...Efunc) {
	b.execs = e
}

func (b *Buffer) execute(a Arguments) (bool, error) {
	for _, e := range b.execs {
		if ok, err := e(a); ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

func (b *Buffer) AddText(text string) {
	b.text += text
}

// InsertText puts text in front of the pending commands.
func (b *Buffer) InsertText(text string) {
	b.text = text + "\n" + b.text
}

// Clear drops all pending commands.
func (b *Buffer) Clear() {
	b.text = ""
	b.wait = false
}

// Pending reports whether there are commands left.
func (b *Buffer) Pending() bool {
	return len(b.text) != 0
}

// nextLine removes the next command from the buffer.
func (b *Buffer) nextLine() string {
	i := 0
	quote := false
LineLoop:
	for i = 0; i < len(b.text); i++ {
		switch b.text[i] {
		case '"':
			quote = !quote
		case ';':
			if !quote {
				break LineLoop
			}
		case '\n':
			break LineLoop
		}
	}
	// do not put ';' or '\n' in line
	line := b.text[:i]
	// but remove this char as well
	if i < len(b.text) {
		i++
	}
	b.text = b.text[i:]
	return line
}

// Execute runs commands until the buffer is empty or a wait command was
// run. It stops at the first failing or unknown command and keeps the rest.
func (b *Buffer) Execute() error {
	for len(b.text) != 0 {
		line := b.nextLine()
		a, err := Parse(line)
		if err != nil {
			return err
		}
		ok, err := b.execute(a)
		if err != nil {
			return errors.Wrapf(err, "%s", a.Name())
		}
		if !ok && a.Len() != 0 {
			return errors.Wrapf(ErrUnknownCommand, "%q", a.Argv(0).String())
		}
		if b.wait {
			// wait for the next call to continue executing
			b.wait = false
			return nil
		}
	}
	return nil
}
