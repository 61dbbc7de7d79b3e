// SPDX-License-Identifier: GPL-2.0-or-later

// Package console runs text commands the way the game console does.
package console

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrDuplicate      = errors.New("command already defined")
	ErrUnknownCommand = errors.New("unknown command")
)

type Func func(a Arguments) error

type command struct {
	f    Func
	help string
}

type Commands struct {
	mutex sync.RWMutex
	cmds  map[string]command
}

func NewCommands() *Commands {
	return &Commands{cmds: make(map[string]command)}
}

// Add registers f under the lower cased name.
func (c *Commands) Add(name, help string, f Func) error {
	ln := strings.ToLower(name)
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.cmds[ln]; ok {
		return errors.Wrapf(ErrDuplicate, "%s", ln)
	}
	c.cmds[ln] = command{f: f, help: help}
	return nil
}

func (c *Commands) Exists(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.cmds[strings.ToLower(name)]
	return ok
}

func (c *Commands) Help(name string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	cmd, ok := c.cmds[strings.ToLower(name)]
	return cmd.help, ok
}

// List returns the sorted names starting with prefix.
func (c *Commands) List(prefix string) []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	cmds := make([]string, 0, len(c.cmds))
	for name := range c.cmds {
		if strings.HasPrefix(name, prefix) {
			cmds = append(cmds, name)
		}
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument. It reports false
// if there is no such command.
func (c *Commands) Execute(a Arguments) (bool, error) {
	if a.Len() == 0 {
		return false, nil
	}
	c.mutex.RLock()
	cmd, ok := c.cmds[a.Name()]
	c.mutex.RUnlock()
	if !ok {
		return false, nil
	}
	return true, cmd.f(a)
}
