// Package doc defines document types, operation types, and cursor types.
package doc

import (
	"errors"
	"unicode/utf8"
)

// CursorTag is the tag value of the group that marks the local caret inside a document.
const CursorTag = "cursor"

var (
	// ErrMalformed is returned when a span's accounting does not match the content it is applied to.
	ErrMalformed = errors.New("malformed span")
)

// Attrs are the attributes attached to every group.
type Attrs map[string]string

// Tag returns the semantic role of a group.
func (a Attrs) Tag() string {
	return a["tag"]
}

// IsCursor reports whether the attributes mark the embedded caret anchor.
func (a Attrs) IsCursor() bool {
	return a.Tag() == CursorTag
}

// Element is a node of the document tree, either Chars or Group.
type Element interface {
	isElement()
}

// Chars is a run of plain text. A run is never empty.
type Chars struct {
	Text   string
	Styles StyleMap
}

// Group owns an ordered sequence of child elements.
type Group struct {
	Attrs    Attrs
	Children Span
}

func (Chars) isElement() {}
func (Group) isElement() {}

// Len returns the number of characters in the run.
func (c Chars) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Span is an ordered sequence of sibling elements.
type Span []Element

// Doc is the root container of a document. A Doc is never mutated once built.
type Doc struct {
	Span Span
}

// New returns a document made of the given top-level elements.
func New(elems ...Element) Doc {
	return Doc{Span: Span(elems)}
}

// NewChars returns an unstyled run of text.
func NewChars(text string) Chars {
	return Chars{Text: text}
}

// NewGroup returns a group tagged with tag and owning the given children.
func NewGroup(tag string, children ...Element) Group {
	return Group{Attrs: Attrs{"tag": tag}, Children: Span(children)}
}

// Units returns the number of sibling units in the element:
// one per character for Chars and one for a Group.
func Units(el Element) int {
	if c, ok := el.(Chars); ok {
		return c.Len()
	}
	return 1
}

// SpanUnits returns the number of sibling units in the span.
func SpanUnits(span Span) int {
	n := 0
	for _, el := range span {
		n += Units(el)
	}
	return n
}

// Text returns the concatenated characters of the span, depth first.
func Text(span Span) string {
	value := ""
	for _, el := range span {
		switch el := el.(type) {
		case Chars:
			value += el.Text
		case Group:
			value += Text(el.Children)
		}
	}
	return value
}

// DelElement is one step of a deletion span.
type DelElement interface {
	isDelElement()
}

// DelSpan describes what is removed from a document.
type DelSpan []DelElement

// DelSkip leaves n units untouched.
type DelSkip int

// DelWithGroup descends into a group and applies the inner span to its children.
type DelWithGroup DelSpan

// DelChars removes n characters.
type DelChars int

// DelGroup removes a group wrapper and applies the inner span to its children.
type DelGroup DelSpan

// DelStyles removes the given styles from n characters.
type DelStyles struct {
	Count  int
	Styles StyleSet
}

func (DelSkip) isDelElement()      {}
func (DelWithGroup) isDelElement() {}
func (DelChars) isDelElement()     {}
func (DelGroup) isDelElement()     {}
func (DelStyles) isDelElement()    {}

// AddElement is one step of an insertion span.
type AddElement interface {
	isAddElement()
}

// AddSpan describes what is added to a document.
type AddSpan []AddElement

// AddSkip leaves n units untouched.
type AddSkip int

// AddWithGroup descends into a group and applies the inner span to its children.
type AddWithGroup AddSpan

// AddChars inserts a run of text.
type AddChars struct {
	Text   string
	Styles StyleMap
}

// AddGroup creates a new group. Its inner span consumes the siblings that follow.
type AddGroup struct {
	Attrs Attrs
	Span  AddSpan
}

// AddStyles sets the given styles on n characters.
type AddStyles struct {
	Count  int
	Styles StyleMap
}

func (AddSkip) isAddElement()      {}
func (AddWithGroup) isAddElement() {}
func (AddChars) isAddElement()     {}
func (AddGroup) isAddElement()     {}
func (AddStyles) isAddElement()    {}

// CurElement is one step of a cursor path.
type CurElement interface {
	isCurElement()
}

// CurSpan is an absolute, skip-addressed path to exactly one location in a document.
type CurSpan []CurElement

// CurSkip passes over n units.
type CurSkip int

// CurWithGroup descends into the next group.
type CurWithGroup CurSpan

// CurGroup ends the path just before a group.
type CurGroup struct{}

// CurChar ends the path just before a character.
type CurChar struct{}

func (CurSkip) isCurElement()      {}
func (CurWithGroup) isCurElement() {}
func (CurGroup) isCurElement()     {}
func (CurChar) isCurElement()      {}

// IsTerminal reports whether the cursor element ends a path.
func IsTerminal(el CurElement) bool {
	switch el.(type) {
	case CurGroup, CurChar:
		return true
	}
	return false
}

// Op is a matched pair of deletion and insertion spans.
type Op struct {
	Del DelSpan
	Add AddSpan
}
