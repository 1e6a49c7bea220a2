// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"sort"
	"strings"
)

// MemoryFootprint describes the memory consumption of a data structure. It
// forms a tree, where each node covers its own size plus the sizes of its
// named children.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
	note     string
}

// MemoryFootprintProvider is implemented by structures able to report their
// memory consumption.
type MemoryFootprintProvider interface {
	GetMemoryFootprint() *MemoryFootprint
}

// NewMemoryFootprint creates a footprint of the given own size.
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: map[string]*MemoryFootprint{},
	}
}

// Value returns the own size of the node, excluding children.
func (mf *MemoryFootprint) Value() uintptr {
	return mf.value
}

// Total returns the size of the node including all of its children. Shared
// sub-trees are only counted once.
func (mf *MemoryFootprint) Total() uintptr {
	visited := map[*MemoryFootprint]bool{}
	return mf.total(visited)
}

func (mf *MemoryFootprint) total(visited map[*MemoryFootprint]bool) uintptr {
	if visited[mf] {
		return 0
	}
	visited[mf] = true
	sum := mf.value
	for _, child := range mf.children {
		sum += child.total(visited)
	}
	return sum
}

// AddChild registers a named child footprint.
func (mf *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	if child != nil {
		mf.children[name] = child
	}
}

// GetChild returns the child of the given name or nil if there is none.
func (mf *MemoryFootprint) GetChild(name string) *MemoryFootprint {
	return mf.children[name]
}

// SetNote attaches a free-form note printed next to the node.
func (mf *MemoryFootprint) SetNote(note string) {
	mf.note = note
}

func (mf *MemoryFootprint) String() string {
	var sb strings.Builder
	mf.toStringBuilder(&sb, ".")
	return sb.String()
}

func (mf *MemoryFootprint) toStringBuilder(sb *strings.Builder, path string) {
	names := make([]string, 0, len(mf.children))
	for name := range mf.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mf.children[name].toStringBuilder(sb, path+"/"+name)
	}
	fmt.Fprintf(sb, "%s %s %s\n", formatSize(mf.Total()), path, mf.note)
}

func formatSize(size uintptr) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := uint64(size) / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
