// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem resolves game file names against a game directory and
// the pak files inside it.
package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"q2view/pack"
)

// DefaultGame is the directory of the retail game data.
const DefaultGame = "baseq2"

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

// source is one entry of the search path.
type source interface {
	open(name string) (File, error)
	names() []string
	close() error
	String() string
}

type packSource struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

func (p packSource) open(name string) (File, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	f, err := p.p.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packSource) names() []string {
	return p.p.Names()
}

func (p packSource) close() error {
	return p.p.Close()
}

func (p packSource) String() string {
	return p.p.String()
}

type dirSource struct {
	root string
}

func (d dirSource) open(name string) (File, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, errors.Wrapf(os.ErrNotExist, "%s is a directory", name)
	}
	return f, nil
}

func (d dirSource) names() []string {
	var n []string
	filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return nil
		}
		n = append(n, filepath.ToSlash(rel))
		return nil
	})
	return n
}

func (dirSource) close() error {
	return nil
}

func (d dirSource) String() string {
	return d.root
}

// FS is a search path. Pak files are searched before loose files, higher
// numbered paks before lower numbered ones and a mod directory before the
// base game.
type FS struct {
	mutex   sync.RWMutex
	baseDir string
	gameDir string
	sources []source
}

// New creates the search path for baseDir/DefaultGame and, if game differs,
// baseDir/game on top of it.
func New(baseDir, game string) (*FS, error) {
	if game == "" {
		game = DefaultGame
	}
	base := filepath.Join(baseDir, DefaultGame)
	st, err := os.Stat(base)
	if err != nil {
		return nil, errors.Wrap(err, "game data")
	}
	if !st.IsDir() {
		return nil, errors.Errorf("%s is not a directory", base)
	}
	fsys := &FS{baseDir: baseDir, gameDir: base}
	if err := fsys.useDir(base); err != nil {
		fsys.Close()
		return nil, err
	}
	if game != DefaultGame {
		fsys.gameDir = filepath.Join(baseDir, game)
		if err := fsys.useDir(fsys.gameDir); err != nil {
			fsys.Close()
			return nil, err
		}
	}
	return fsys, nil
}

// useDir puts dir and its pak[i].pak files in front of the search path.
func (f *FS) useDir(dir string) error {
	add := []source{dirSource{dir}}
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		p, err := pack.NewPackReader(pfp)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			for _, s := range add {
				s.close()
			}
			return err
		}
		slog.Debug("added pak", "pak", pfp, "files", p.Len())
		add = append([]source{packSource{p}}, add...)
	}
	f.sources = append(add, f.sources...)
	return nil
}

func (f *FS) BaseDir() string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.baseDir
}

func (f *FS) GameDir() string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.gameDir
}

// SearchPath returns the sources in search order.
func (f *FS) SearchPath() []string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	r := make([]string, len(f.sources))
	for i, s := range f.sources {
		r[i] = s.String()
	}
	return r
}

// Open returns the first file with name on the search path.
func (f *FS) Open(name string) (File, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	for _, s := range f.sources {
		file, err := s.open(name)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "%s", s)
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%s", name)
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// List returns the sorted names of all files below dir with extension ext.
func (f *FS) List(dir, ext string) []string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	dir = strings.TrimSuffix(dir, "/") + "/"
	seen := make(map[string]bool)
	var r []string
	for _, s := range f.sources {
		for _, n := range s.names() {
			if seen[n] || !strings.HasPrefix(n, dir) || !strings.EqualFold(Ext(n), ext) {
				continue
			}
			seen[n] = true
			r = append(r, n)
		}
	}
	sort.Strings(r)
	return r
}

// Close closes all pak files. The FS is empty afterwards.
func (f *FS) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var first error
	for _, s := range f.sources {
		if err := s.close(); err != nil && first == nil {
			first = err
		}
	}
	f.sources = nil
	return first
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

// Base returns the file name without directory and extension.
func Base(path string) string {
	p := StripExt(path)
	for i := len(p) - 1; i >= 0; i-- {
		if isSep(p[i]) {
			return p[i+1:]
		}
	}
	return p
}
