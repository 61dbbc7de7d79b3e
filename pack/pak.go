// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads and writes PACK archives as used by the game.
package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrNotPack   = errors.New("not a pack")
	ErrDuplicate = errors.New("files in pack are not unique")
	ErrName      = errors.New("bad file name")
)

const (
	headerSize = 12
	entrySize  = 64
	maxName    = 55
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

var magic = [4]byte{'P', 'A', 'C', 'K'}

type Pack struct {
	f     *os.File
	files map[string]*qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "%s: %s", p.name, name)
	}
	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Names returns the sorted names of all files in the pak.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) Len() int {
	return len(p.files)
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func newPack(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &Pack{f: f, name: name}, nil
}

func (p *Pack) init() error {
	st, err := p.f.Stat()
	if err != nil {
		return err
	}
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrapf(ErrNotPack, "%s: %v", p.name, err)
	}
	if h.ID != magic {
		return errors.Wrapf(ErrNotPack, "%s: magic %q", p.name, h.ID[:])
	}
	if h.Offset < headerSize || h.Size < 0 || h.Size%entrySize != 0 || int64(h.Offset)+int64(h.Size) > st.Size() {
		return errors.Wrapf(ErrNotPack, "%s: directory at %d size %d", p.name, h.Offset, h.Size)
	}
	if _, err := p.f.Seek(int64(h.Offset), io.SeekStart); err != nil {
		return err
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrapf(err, "%s: entry %d", p.name, i)
		}
		n := bytes.IndexByte(e.Name[:], 0)
		if n < 0 {
			n = len(e.Name)
		}
		name := string(e.Name[:n])
		if p.files[name] != nil {
			return errors.Wrapf(ErrDuplicate, "%s: %s", p.name, name)
		}
		if e.Offset < 0 || e.Size < 0 || int64(e.Offset)+int64(e.Size) > st.Size() {
			return errors.Wrapf(ErrNotPack, "%s: %s outside of file", p.name, name)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	p, err := newPack(name)
	if err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// File is one entry for Write.
type File struct {
	Name string
	Data []byte
}

// Write writes a pak containing files in the given order. The directory
// is placed after the file contents.
func Write(w io.Writer, files []File) error {
	seen := make(map[string]bool, len(files))
	entries := make([]entry, len(files))
	offset := int32(headerSize)
	for i, f := range files {
		if f.Name == "" || len(f.Name) > maxName || bytes.IndexByte([]byte(f.Name), 0) >= 0 {
			return errors.Wrapf(ErrName, "%q", f.Name)
		}
		if seen[f.Name] {
			return errors.Wrapf(ErrDuplicate, "%s", f.Name)
		}
		seen[f.Name] = true
		copy(entries[i].Name[:], f.Name)
		entries[i].Offset = offset
		entries[i].Size = int32(len(f.Data))
		offset += int32(len(f.Data))
	}
	h := header{ID: magic, Offset: offset, Size: int32(len(files) * entrySize)}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, f := range files {
		if _, err := w.Write(f.Data); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, entries)
}
