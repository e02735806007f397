// Package stepper provides cursors that traverse documents and cursor paths
// one unit at a time.
package stepper

import (
	"fmt"
	"strings"

	"github.com/burntcarrot/treepad/doc"
)

// frame is a position in one sibling list: before the element at idx, and
// when that element is a character run, after off of its characters.
// off is always smaller than the run length, so every position has exactly
// one representation.
type frame struct {
	span doc.Span
	idx  int
	off  int
}

// DocStepper is a position inside a document tree.
type DocStepper struct {
	stack []frame
}

// NewDocStepper returns a stepper before the first element of span.
func NewDocStepper(span doc.Span) *DocStepper {
	return &DocStepper{stack: []frame{{span: span}}}
}

func (s *DocStepper) top() *frame {
	return &s.stack[len(s.stack)-1]
}

// Head returns the element at the current position without consuming it.
// A partially consumed run is returned as its remaining characters.
// Head returns nil at the end of a sibling list.
func (s *DocStepper) Head() doc.Element {
	f := s.top()
	if f.idx >= len(f.span) {
		return nil
	}
	el := f.span[f.idx]
	if c, ok := el.(doc.Chars); ok && f.off > 0 {
		return doc.Chars{Text: string([]rune(c.Text)[f.off:]), Styles: c.Styles}
	}
	return el
}

// Behind returns the content just before the current position in the
// current sibling list: the consumed part of a run, the previous sibling,
// or nil at the start of the list.
func (s *DocStepper) Behind() doc.Element {
	f := s.top()
	if f.off > 0 {
		c := f.span[f.idx].(doc.Chars)
		return doc.Chars{Text: string([]rune(c.Text)[:f.off]), Styles: c.Styles}
	}
	if f.idx == 0 {
		return nil
	}
	return f.span[f.idx-1]
}

// Skip consumes n units forward: characters inside runs, whole groups otherwise.
func (s *DocStepper) Skip(n int) {
	f := s.top()
	for ; n > 0; n-- {
		if f.idx >= len(f.span) {
			panic("stepper: skip past the end of a span")
		}
		if c, ok := f.span[f.idx].(doc.Chars); ok {
			f.off++
			if f.off < c.Len() {
				continue
			}
		}
		f.idx++
		f.off = 0
	}
}

// Unskip moves n units backward.
func (s *DocStepper) Unskip(n int) {
	f := s.top()
	for ; n > 0; n-- {
		if f.off > 0 {
			f.off--
			continue
		}
		if f.idx == 0 {
			panic("stepper: unskip past the start of a span")
		}
		f.idx--
		if c, ok := f.span[f.idx].(doc.Chars); ok {
			f.off = c.Len() - 1
		}
	}
}

// Next moves past the element at the head as a whole, without descending.
func (s *DocStepper) Next() {
	f := s.top()
	if f.idx >= len(f.span) {
		panic("stepper: next past the end of a span")
	}
	f.idx++
	f.off = 0
}

// Prev moves to the start of the previous element, without descending.
func (s *DocStepper) Prev() {
	f := s.top()
	if f.off > 0 {
		f.off = 0
		return
	}
	if f.idx == 0 {
		panic("stepper: prev past the start of a span")
	}
	f.idx--
}

// Enter descends into the group at the head, before its first child.
func (s *DocStepper) Enter() {
	g, ok := s.Head().(doc.Group)
	if !ok {
		panic("stepper: enter on a non-group")
	}
	s.stack = append(s.stack, frame{span: g.Children})
}

// Exit ascends to the parent, after the group being exited.
func (s *DocStepper) Exit() {
	s.pop()
	s.top().idx++
}

// Unenter undoes Enter: it ascends to the parent, before the group being exited.
func (s *DocStepper) Unenter() {
	s.pop()
}

// Unexit undoes Exit: it descends into the group just before the current
// position, after its last child.
func (s *DocStepper) Unexit() {
	f := s.top()
	if f.off > 0 || f.idx == 0 {
		panic("stepper: unexit without a preceding group")
	}
	g, ok := f.span[f.idx-1].(doc.Group)
	if !ok {
		panic("stepper: unexit without a preceding group")
	}
	f.idx--
	s.stack = append(s.stack, frame{span: g.Children, idx: len(g.Children)})
}

func (s *DocStepper) pop() {
	if len(s.stack) == 1 {
		panic("stepper: ascend above the root")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Depth returns the number of groups the stepper is inside.
func (s *DocStepper) Depth() int {
	return len(s.stack) - 1
}

// AtStart reports whether nothing precedes the position in the current sibling list.
func (s *DocStepper) AtStart() bool {
	f := s.top()
	return f.idx == 0 && f.off == 0
}

// IsDone reports whether the whole document has been traversed.
func (s *DocStepper) IsDone() bool {
	return s.Depth() == 0 && s.Head() == nil
}

// Equal reports whether both steppers denote the same tree location.
// Both must traverse the same document.
func (s *DocStepper) Equal(other *DocStepper) bool {
	if len(s.stack) != len(other.stack) {
		return false
	}
	for i := range s.stack {
		if s.stack[i].idx != other.stack[i].idx || s.stack[i].off != other.stack[i].off {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the stepper.
func (s *DocStepper) Clone() *DocStepper {
	stack := make([]frame, len(s.stack))
	copy(stack, s.stack)
	return &DocStepper{stack: stack}
}

// Cursor encodes the current position as an absolute cursor path.
// The position must be before an element.
func (s *DocStepper) Cursor() (doc.CurSpan, error) {
	var end doc.CurElement
	switch s.Head().(type) {
	case doc.Chars:
		end = doc.CurChar{}
	case doc.Group:
		end = doc.CurGroup{}
	default:
		return nil, fmt.Errorf("%w: no element at the end of a span", doc.ErrMalformed)
	}

	var cur doc.CurSpan
	for i := len(s.stack) - 1; i >= 0; i-- {
		f := s.stack[i]
		units := doc.SpanUnits(f.span[:f.idx]) + f.off

		var level doc.CurSpan
		if units > 0 {
			level = append(level, doc.CurSkip(units))
		}
		if cur == nil {
			level = append(level, end)
		} else {
			level = append(level, doc.CurWithGroup(cur))
		}
		cur = level
	}
	return cur, nil
}

// String renders the position as idx:off pairs from the root down.
func (s *DocStepper) String() string {
	parts := make([]string, len(s.stack))
	for i, f := range s.stack {
		parts[i] = fmt.Sprintf("%d:%d", f.idx, f.off)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
