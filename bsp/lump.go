// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

var ErrCorruptLump = errors.New("corrupt lump")

// Lump holds the fixed size records of one lump.
// It does not work with the entity lump or any other lump with variable
// record sizes.
type Lump[T any] struct {
	kind LumpKind
	data []T
}

// LoadLump reads all records of kind from r. An absent lump yields an empty
// Lump. A lump whose length is not a multiple of the record size is rejected.
func LoadLump[T any](h *Header, kind LumpKind, r io.ReadSeeker) (*Lump[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, errors.Errorf("lump %v: %T has no fixed size", kind, zero)
	}
	l := &Lump[T]{kind: kind}
	d := h.Lump(kind)
	if d.Length == 0 {
		return l, nil
	}
	if d.Offset < 0 || d.Length < 0 {
		return nil, errors.Wrapf(ErrCorruptLump, "lump %v: offset %d, length %d", kind, d.Offset, d.Length)
	}
	if int(d.Length)%size != 0 {
		return nil, errors.Wrapf(ErrCorruptLump, "lump %v: length %d is not a multiple of %d", kind, d.Length, size)
	}
	dataSize, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if end := int64(d.Offset) + int64(d.Length); end > dataSize {
		return nil, errors.Wrapf(ErrCorruptLump, "lump %v: ends at %d behind end of data at %d", kind, end, dataSize)
	}
	if _, err := r.Seek(int64(d.Offset), io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking to lump %v", kind)
	}
	l.data = make([]T, int(d.Length)/size)
	if err := binary.Read(r, binary.LittleEndian, l.data); err != nil {
		return nil, errors.Wrapf(err, "reading lump %v", kind)
	}
	slog.Debug("loaded lump", "lump", kind, "records", len(l.data))
	return l, nil
}

// streamSize returns the number of bytes in r. Lump directories are checked
// against it before anything is allocated.
func streamSize(r io.Seeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.Wrap(err, "seeking to end of data")
	}
	return size, nil
}

func (l *Lump[T]) Kind() LumpKind {
	return l.kind
}

func (l *Lump[T]) Len() int {
	return len(l.data)
}

// Get returns the record at index i and false if i is out of range.
func (l *Lump[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(l.data) {
		var zero T
		return zero, false
	}
	return l.data[i], true
}

// Records returns the backing slice. It must not be modified.
func (l *Lump[T]) Records() []T {
	return l.data
}

func (l *Lump[T]) Unload() {
	l.data = nil
}
