// SPDX-License-Identifier: GPL-2.0-or-later

// Package history keeps the lines typed into the console.
package history

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// add a max size to prevent the file from growing indefinitely
	maxHistory = 32
)

type History struct {
	txt []string
	idx int
}

func (h *History) String() string {
	if len(h.txt) == h.idx {
		return ""
	}
	return h.txt[h.idx]
}

func (h *History) Up() {
	if h.idx > 0 {
		h.idx--
	}
}

func (h *History) Down() {
	if h.idx < len(h.txt) {
		h.idx++
	}
}

// Lines returns the lines, oldest first.
func (h *History) Lines() []string {
	return append([]string(nil), h.txt...)
}

func (h *History) Add(s string) {
	h.txt = append(h.txt, s)
	h.idx = len(h.txt)
}

// Load replaces the lines with the ones stored in path. A missing file is
// an empty history.
func (h *History) Load(path string) error {
	in, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading history")
	}
	data := &structpb.ListValue{}
	if err := proto.Unmarshal(in, data); err != nil {
		return errors.Wrap(err, "decoding history")
	}
	h.txt = h.txt[:0]
	for _, v := range data.GetValues() {
		h.txt = append(h.txt, v.GetStringValue())
	}
	h.idx = len(h.txt)
	return nil
}

// Save writes the last lines to path.
func (h *History) Save(path string) error {
	txt := h.txt[max(0, len(h.txt)-maxHistory):]
	data := &structpb.ListValue{}
	for _, t := range txt {
		data.Values = append(data.Values, structpb.NewStringValue(t))
	}
	out, err := proto.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding history")
	}
	if err := os.WriteFile(path, out, 0o660); err != nil {
		return errors.Wrap(err, "writing history")
	}
	return nil
}
