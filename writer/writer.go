// Package writer builds normalized deletion and insertion spans from a
// sequence of primitive steps. Adjacent elements of the same kind are
// coalesced, so one call does not necessarily produce one element.
package writer

import "github.com/burntcarrot/treepad/doc"

// DelWriter builds a DelSpan.
type DelWriter struct {
	past  doc.DelSpan
	stack []doc.DelSpan
}

// NewDelWriter returns an empty deletion writer.
func NewDelWriter() *DelWriter {
	return &DelWriter{}
}

// Place appends el to the open span, merging it into the previous element when possible.
func (w *DelWriter) Place(el doc.DelElement) {
	n := len(w.past)

	switch el := el.(type) {
	case doc.DelSkip:
		if el == 0 {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.DelSkip); ok {
				w.past[n-1] = prev + el
				return
			}
		}
	case doc.DelChars:
		if el == 0 {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.DelChars); ok {
				w.past[n-1] = prev + el
				return
			}
		}
	case doc.DelStyles:
		if el.Count == 0 {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.DelStyles); ok && sameSet(prev.Styles, el.Styles) {
				w.past[n-1] = doc.DelStyles{Count: prev.Count + el.Count, Styles: prev.Styles}
				return
			}
		}
	}

	w.past = append(w.past, el)
}

// Skip leaves n units untouched.
func (w *DelWriter) Skip(n int) {
	w.Place(doc.DelSkip(n))
}

// Chars deletes n characters.
func (w *DelWriter) Chars(n int) {
	w.Place(doc.DelChars(n))
}

// Styles removes styles from n characters.
func (w *DelWriter) Styles(n int, styles doc.StyleSet) {
	w.Place(doc.DelStyles{Count: n, Styles: styles})
}

// Begin opens a group context mirroring the group at the current position.
func (w *DelWriter) Begin() {
	w.stack = append(w.stack, w.past)
	w.past = nil
}

func (w *DelWriter) pop() doc.DelSpan {
	if len(w.stack) == 0 {
		panic("writer: exit without a matching begin")
	}
	inner := w.past
	w.past = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return inner
}

// Exit closes the open group, keeping it in the document.
func (w *DelWriter) Exit() {
	inner := trimDel(w.pop())
	if len(inner) == 0 {
		w.Skip(1)
		return
	}
	w.Place(doc.DelWithGroup(inner))
}

// Close closes the open group, removing its wrapper from the document.
func (w *DelWriter) Close() {
	w.Place(doc.DelGroup(w.pop()))
}

// ExitAll closes every open group with Exit.
func (w *DelWriter) ExitAll() {
	for len(w.stack) > 0 {
		w.Exit()
	}
}

// Depth returns the number of open groups.
func (w *DelWriter) Depth() int {
	return len(w.stack)
}

// Result closes every open group and returns the normalized span.
func (w *DelWriter) Result() doc.DelSpan {
	w.ExitAll()
	w.past = trimDel(w.past)
	out := make(doc.DelSpan, len(w.past))
	copy(out, w.past)
	return out
}

func trimDel(span doc.DelSpan) doc.DelSpan {
	if n := len(span); n > 0 {
		if _, ok := span[n-1].(doc.DelSkip); ok {
			return span[:n-1]
		}
	}
	return span
}

func sameSet(a, b doc.StyleSet) bool {
	if len(a) != len(b) {
		return false
	}
	for _, s := range a {
		if !b.Contains(s) {
			return false
		}
	}
	return true
}

// AddWriter builds an AddSpan.
type AddWriter struct {
	past  doc.AddSpan
	stack []doc.AddSpan
}

// NewAddWriter returns an empty insertion writer.
func NewAddWriter() *AddWriter {
	return &AddWriter{}
}

// Place appends el to the open span, merging it into the previous element when possible.
func (w *AddWriter) Place(el doc.AddElement) {
	n := len(w.past)

	switch el := el.(type) {
	case doc.AddSkip:
		if el == 0 {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.AddSkip); ok {
				w.past[n-1] = prev + el
				return
			}
		}
	case doc.AddChars:
		if el.Text == "" {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.AddChars); ok && prev.Styles.Equal(el.Styles) {
				w.past[n-1] = doc.AddChars{Text: prev.Text + el.Text, Styles: prev.Styles}
				return
			}
		}
	case doc.AddStyles:
		if el.Count == 0 {
			return
		}
		if n > 0 {
			if prev, ok := w.past[n-1].(doc.AddStyles); ok && prev.Styles.Equal(el.Styles) {
				w.past[n-1] = doc.AddStyles{Count: prev.Count + el.Count, Styles: prev.Styles}
				return
			}
		}
	}

	w.past = append(w.past, el)
}

// Skip leaves n units untouched.
func (w *AddWriter) Skip(n int) {
	w.Place(doc.AddSkip(n))
}

// Chars inserts unstyled text.
func (w *AddWriter) Chars(text string) {
	w.Place(doc.AddChars{Text: text})
}

// StyledChars inserts text carrying styles.
func (w *AddWriter) StyledChars(text string, styles doc.StyleMap) {
	w.Place(doc.AddChars{Text: text, Styles: styles})
}

// Styles sets styles on n characters.
func (w *AddWriter) Styles(n int, styles doc.StyleMap) {
	w.Place(doc.AddStyles{Count: n, Styles: styles})
}

// Begin opens a group context.
func (w *AddWriter) Begin() {
	w.stack = append(w.stack, w.past)
	w.past = nil
}

func (w *AddWriter) pop() doc.AddSpan {
	if len(w.stack) == 0 {
		panic("writer: exit without a matching begin")
	}
	inner := w.past
	w.past = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return inner
}

// Exit closes the open group as a descent into an existing group.
func (w *AddWriter) Exit() {
	inner := trimAdd(w.pop())
	if len(inner) == 0 {
		w.Skip(1)
		return
	}
	w.Place(doc.AddWithGroup(inner))
}

// Close finalizes the open group as a newly created group with attrs.
func (w *AddWriter) Close(attrs doc.Attrs) {
	w.Place(doc.AddGroup{Attrs: attrs, Span: w.pop()})
}

// ExitAll closes every open group with Exit.
func (w *AddWriter) ExitAll() {
	for len(w.stack) > 0 {
		w.Exit()
	}
}

// Depth returns the number of open groups.
func (w *AddWriter) Depth() int {
	return len(w.stack)
}

// Result closes every open group and returns the normalized span.
func (w *AddWriter) Result() doc.AddSpan {
	w.ExitAll()
	w.past = trimAdd(w.past)
	out := make(doc.AddSpan, len(w.past))
	copy(out, w.past)
	return out
}

func trimAdd(span doc.AddSpan) doc.AddSpan {
	if n := len(span); n > 0 {
		if _, ok := span[n-1].(doc.AddSkip); ok {
			return span[:n-1]
		}
	}
	return span
}

// Op returns the operation built by a matched pair of writers.
func Op(del *DelWriter, add *AddWriter) doc.Op {
	return doc.Op{Del: del.Result(), Add: add.Result()}
}
