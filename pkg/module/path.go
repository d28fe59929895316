// Package module implements the multi-file module resolver of spec.md §4.3:
// mapping dotted import paths to file or folder modules, building export
// maps by fixed point, and detecting re-export cycles and ambiguities.
package module

import "strings"

// Path is an immutable dot-separated canonical module id, e.g. "utils.math"
// for the file "utils/math.sk". Grounded directly on pkg/util.Path's
// segment-slice model, specialised to the always-relative, always-dotted
// paths that appear in Skepa import/export declarations and module ids.
type Path struct {
	segments []string
}

// NewPath constructs a Path from already-split segments.
func NewPath(segments ...string) Path {
	cp := make([]string, len(segments))
	copy(cp, segments)
	return Path{cp}
}

// ParsePath splits a dotted string such as "utils.math" into a Path.
func ParsePath(dotted string) Path {
	return NewPath(strings.Split(dotted, ".")...)
}

// String renders the canonical dotted form.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// Segments returns the path's segments in order.
func (p Path) Segments() []string {
	return p.segments
}

// Len reports the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// Head returns the first (outermost) segment.
func (p Path) Head() string {
	return p.segments[0]
}

// Join appends a segment, returning a new Path.
func (p Path) Join(segment string) Path {
	return NewPath(append(append([]string{}, p.segments...), segment)...)
}

// Equals performs a structural comparison.
func (p Path) Equals(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// PrefixOf reports whether p is a (non-strict) prefix of other — used to
// determine folder-module membership, e.g. "utils" is a prefix of
// "utils.math".
func (p Path) PrefixOf(other Path) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}
