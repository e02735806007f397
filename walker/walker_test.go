package walker

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/burntcarrot/treepad/doc"
	"github.com/burntcarrot/treepad/stepper"
	"github.com/burntcarrot/treepad/writer"
)

// sample holds a caret after "ab" in the first of two paragraphs.
func sample() doc.Doc {
	return doc.New(
		doc.NewGroup("p", doc.NewChars("ab"), doc.NewGroup("cursor")),
		doc.NewGroup("p", doc.NewChars("c")),
	)
}

// nested holds an inline span between two runs of the first paragraph.
func nested() doc.Doc {
	return doc.New(
		doc.NewGroup("p", doc.NewChars("ab"), doc.NewGroup("span", doc.NewChars("cd")), doc.NewChars("e")),
		doc.NewGroup("p", doc.NewChars("f")),
	)
}

func at(d doc.Doc, moves ...func(s *stepper.DocStepper)) *stepper.DocStepper {
	s := stepper.NewDocStepper(d.Span)
	for _, move := range moves {
		move(s)
	}
	return s
}

func enter(s *stepper.DocStepper) { s.Enter() }
func next(s *stepper.DocStepper)  { s.Next() }
func skip(n int) func(s *stepper.DocStepper) {
	return func(s *stepper.DocStepper) { s.Skip(n) }
}

func TestToCaret(t *testing.T) {
	d := sample()

	w, err := ToCaret(d)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	if w.CaretPos() != 1 {
		t.Errorf("got != want; got = %v, expected = %v\n", w.CaretPos(), 1)
	}
	if expected := at(d, enter, skip(2)); !w.Stepper().Equal(expected) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Stepper(), expected)
	}
	if g, ok := w.Stepper().Head().(doc.Group); !ok || !g.Attrs.IsCursor() {
		t.Errorf("expected the caret at the head, got %#v\n", w.Stepper().Head())
	}
}

func TestToCaretMissing(t *testing.T) {
	_, err := ToCaret(doc.New(doc.NewGroup("p", doc.NewChars("abc"))))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got != want; got = %v, expected = %v\n", err, ErrNotFound)
	}
}

func TestToCursor(t *testing.T) {
	tests := []struct {
		description string
		doc         doc.Doc
		cur         doc.CurSpan
		expected    *stepper.DocStepper
		caretPos    int
	}{
		{
			description: "start of document",
			doc:         sample(),
			cur:         doc.CurSpan{doc.CurGroup{}},
			expected:    at(sample()),
			caretPos:    -1,
		},
		{
			description: "inside a run",
			doc:         sample(),
			cur:         doc.CurSpan{doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}},
			expected:    at(sample(), enter, skip(1)),
			caretPos:    1,
		},
		{
			description: "skip over a whole paragraph",
			doc:         sample(),
			cur:         doc.CurSpan{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}},
			expected:    at(sample(), next, enter),
			caretPos:    3,
		},
		{
			description: "inside an inline group",
			doc:         nested(),
			cur:         doc.CurSpan{doc.CurWithGroup{doc.CurSkip(2), doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}}},
			expected:    at(nested(), enter, skip(2), enter, skip(1)),
			caretPos:    3,
		},
	}

	for _, tc := range tests {
		w, err := ToCursor(tc.doc, tc.cur)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, err)
			continue
		}
		if !w.Stepper().Equal(tc.expected) {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.Stepper(), tc.expected)
		}
		if w.CaretPos() != tc.caretPos {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.CaretPos(), tc.caretPos)
		}
	}
}

func TestToCursorNotFound(t *testing.T) {
	tests := []struct {
		description string
		cur         doc.CurSpan
	}{
		{description: "path past the end", cur: doc.CurSpan{doc.CurSkip(5), doc.CurGroup{}}},
		{description: "descent into characters", cur: doc.CurSpan{doc.CurWithGroup{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}}}},
		{description: "skip past the end of a group", cur: doc.CurSpan{doc.CurWithGroup{doc.CurSkip(4)}, doc.CurGroup{}}},
		{description: "negative skip", cur: doc.CurSpan{doc.CurSkip(-1), doc.CurGroup{}}},
		{description: "negative skip inside a group", cur: doc.CurSpan{doc.CurWithGroup{doc.CurSkip(-2), doc.CurChar{}}}},
	}

	for _, tc := range tests {
		_, err := ToCursor(sample(), tc.cur)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, err, ErrNotFound)
		}
	}
}

// TestCursorRoundTrip checks that a walker's cursor locates the walker again.
func TestCursorRoundTrip(t *testing.T) {
	d := nested()

	starts := []doc.CurSpan{
		{doc.CurGroup{}},
		{doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}},
		{doc.CurWithGroup{doc.CurSkip(2), doc.CurGroup{}}},
		{doc.CurWithGroup{doc.CurSkip(2), doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}}},
		{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}},
	}

	for _, start := range starts {
		w, err := ToCursor(d, start)
		if err != nil {
			t.Errorf("(%v) unexpected error: %v\n", start, err)
			continue
		}

		cur, err := w.Cursor()
		if err != nil {
			t.Errorf("(%v) unexpected error: %v\n", start, err)
			continue
		}
		if !cmp.Equal(cur, start, cmpopts.EquateEmpty()) {
			t.Errorf("(%v) got != want; diff = %v\n", start, cmp.Diff(cur, start, cmpopts.EquateEmpty()))
		}

		again, err := ToCursor(d, cur)
		if err != nil {
			t.Errorf("(%v) unexpected error: %v\n", start, err)
			continue
		}
		if !again.Stepper().Equal(w.Stepper()) {
			t.Errorf("(%v) got != want; got = %v, expected = %v\n", start, again.Stepper(), w.Stepper())
		}
	}

	caret, err := ToCaret(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	cur, err := caret.Cursor()
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	expected := doc.CurSpan{doc.CurWithGroup{doc.CurSkip(2), doc.CurGroup{}}}
	if !cmp.Equal(cur, expected, cmpopts.EquateEmpty()) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(cur, expected, cmpopts.EquateEmpty()))
	}
}

func TestAdvanceToNextBlock(t *testing.T) {
	d := sample()

	w, err := ToCaret(d)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	w.AdvanceToNextBlock()
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v\n", w.Err())
	}
	if expected := at(d, next, enter); !w.Stepper().Equal(expected) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Stepper(), expected)
	}
	if w.CaretPos() != 2 {
		t.Errorf("got != want; got = %v, expected = %v\n", w.CaretPos(), 2)
	}

	// There is no block after the last paragraph.
	before := w.Stepper()
	w.AdvanceToNextBlock()
	if !errors.Is(w.Err(), ErrNotFound) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Err(), ErrNotFound)
	}
	if !w.Stepper().Equal(before) {
		t.Errorf("failed move changed the position: %v != %v\n", w.Stepper(), before)
	}
}

func TestAdvanceToNextBlockNested(t *testing.T) {
	d := doc.New(
		doc.NewGroup("bullet", doc.NewGroup("p", doc.NewChars("a"))),
		doc.NewGroup("bullet", doc.NewGroup("p", doc.NewChars("b"))),
	)

	w, err := ToCursor(d, doc.CurSpan{doc.CurWithGroup{doc.CurWithGroup{doc.CurChar{}}}})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	w.AdvanceToNextBlock()
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v\n", w.Err())
	}
	if expected := at(d, next, enter, enter); !w.Stepper().Equal(expected) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Stepper(), expected)
	}
}

func TestAdvanceOneChar(t *testing.T) {
	d := nested()

	tests := []struct {
		description string
		start       doc.CurSpan
		expected    *stepper.DocStepper
		delta       int
	}{
		{
			description: "within a run",
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}},
			expected:    at(d, enter, skip(2)),
			delta:       1,
		},
		{
			description: "into an inline group",
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(2), doc.CurGroup{}}},
			expected:    at(d, enter, skip(2), enter, skip(1)),
			delta:       1,
		},
		{
			description: "last character of a block",
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(3), doc.CurChar{}}},
			expected:    at(d, enter, skip(4)),
			delta:       1,
		},
	}

	for _, tc := range tests {
		w, err := ToCursor(d, tc.start)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, err)
			continue
		}
		pos := w.CaretPos()

		w.AdvanceOneChar()
		if !w.Stepper().Equal(tc.expected) {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.Stepper(), tc.expected)
		}
		if w.CaretPos()-pos != tc.delta {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.CaretPos()-pos, tc.delta)
		}
	}

	// Leaving the first paragraph stops in front of the second.
	w, err := ToCursor(d, doc.CurSpan{doc.CurWithGroup{doc.CurSkip(3), doc.CurChar{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	pos := w.CaretPos()
	w.AdvanceOneChar().AdvanceOneChar()
	if expected := at(d, next); !w.Stepper().Equal(expected) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Stepper(), expected)
	}
	if w.CaretPos()-pos != 2 {
		t.Errorf("got != want; got = %v, expected = %v\n", w.CaretPos()-pos, 2)
	}
}

func TestAdvanceOneCharStops(t *testing.T) {
	// The caret is never stepped over.
	w, err := ToCaret(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	before := w.Stepper()
	w.AdvanceOneChar()
	if !w.Stepper().Equal(before) || w.CaretPos() != 1 {
		t.Errorf("advance moved past the caret: %v\n", w.Stepper())
	}

	// The end of the document is a fixed point.
	d := sample()
	w, err = ToCursor(d, doc.CurSpan{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	w.AdvanceOneChar().AdvanceOneChar().AdvanceOneChar()
	if expected := at(d, skip(2)); !w.Stepper().Equal(expected) {
		t.Errorf("got != want; got = %v, expected = %v\n", w.Stepper(), expected)
	}
	if w.CaretPos() != 4 {
		t.Errorf("got != want; got = %v, expected = %v\n", w.CaretPos(), 4)
	}
	if w.Err() != nil {
		t.Errorf("unexpected error: %v\n", w.Err())
	}
}

// TestAdvanceRetreat checks that retreat undoes advance where a character follows.
func TestAdvanceRetreat(t *testing.T) {
	d := nested()

	starts := []doc.CurSpan{
		{doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}},
		{doc.CurWithGroup{doc.CurSkip(2), doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}}},
		{doc.CurWithGroup{doc.CurSkip(3), doc.CurChar{}}},
		{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}},
	}

	for _, start := range starts {
		w, err := ToCursor(d, start)
		if err != nil {
			t.Errorf("(%v) unexpected error: %v\n", start, err)
			continue
		}
		before, pos := w.Stepper(), w.CaretPos()

		w.AdvanceOneChar().RetreatOneChar()
		if w.Err() != nil {
			t.Errorf("(%v) unexpected error: %v\n", start, w.Err())
			continue
		}
		if !w.Stepper().Equal(before) {
			t.Errorf("(%v) got != want; got = %v, expected = %v\n", start, w.Stepper(), before)
		}
		if w.CaretPos() != pos {
			t.Errorf("(%v) got != want; got = %v, expected = %v\n", start, w.CaretPos(), pos)
		}
	}
}

// TestAdvanceRetreatAcrossBlocks starts at the end of a block, where the
// next character lives in the following block.
func TestAdvanceRetreatAcrossBlocks(t *testing.T) {
	bullets := doc.New(
		doc.NewGroup("bullet", doc.NewGroup("p", doc.NewChars("a"))),
		doc.NewGroup("bullet", doc.NewGroup("p", doc.NewChars("b"))),
	)

	tests := []struct {
		description string
		doc         doc.Doc
		start       doc.CurSpan
		expected    *stepper.DocStepper
	}{
		{
			description: "end of a paragraph",
			doc:         nested(),
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(3), doc.CurChar{}}},
			expected:    at(nested(), enter, skip(4)),
		},
		{
			description: "end of a paragraph inside a list item",
			doc:         bullets,
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurWithGroup{doc.CurChar{}}}},
			expected:    at(bullets, enter, enter, skip(1)),
		},
	}

	for _, tc := range tests {
		w, err := ToCursor(tc.doc, tc.start)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, err)
			continue
		}

		// The end of a block has no cursor path, so step onto it.
		w.AdvanceOneChar()
		if !w.Stepper().Equal(tc.expected) {
			t.Fatalf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.Stepper(), tc.expected)
		}
		before, pos := w.Stepper(), w.CaretPos()

		w.AdvanceOneChar()
		if w.CaretPos() != pos+1 {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.CaretPos(), pos+1)
		}

		w.RetreatOneChar()
		if w.Err() != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, w.Err())
			continue
		}
		if !w.Stepper().Equal(before) {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.Stepper(), before)
		}
		if w.CaretPos() != pos {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.CaretPos(), pos)
		}
	}
}

func TestSnapToCharBoundary(t *testing.T) {
	d := nested()

	tests := []struct {
		description string
		start       doc.CurSpan
		expected    *stepper.DocStepper
	}{
		{
			description: "into the end of an inline group",
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(3), doc.CurChar{}}},
			expected:    at(d, enter, skip(2), enter, skip(1)),
		},
		{
			description: "out of a block",
			start:       doc.CurSpan{doc.CurSkip(1), doc.CurWithGroup{doc.CurChar{}}},
			expected:    at(d, next),
		},
		{
			description: "within a run",
			start:       doc.CurSpan{doc.CurWithGroup{doc.CurSkip(2), doc.CurGroup{}}},
			expected:    at(d, enter, skip(1)),
		},
	}

	for _, tc := range tests {
		w, err := ToCursor(d, tc.start)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, err)
			continue
		}
		pos := w.CaretPos()

		w.SnapToCharBoundary()
		if w.Err() != nil {
			t.Errorf("(%s) unexpected error: %v\n", tc.description, w.Err())
			continue
		}
		if !w.Stepper().Equal(tc.expected) {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.Stepper(), tc.expected)
		}
		if w.CaretPos() != pos-1 {
			t.Errorf("(%s) got != expected; got = %v, expected = %v\n", tc.description, w.CaretPos(), pos-1)
		}
	}
}

func TestSnapToCharBoundaryNotFound(t *testing.T) {
	d := doc.New(doc.NewChars("ab"), doc.NewGroup("p", doc.NewChars("c")))

	w, err := ToCursor(d, doc.CurSpan{doc.CurChar{}})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	w.SnapToCharBoundary()
	if !errors.Is(w.Err(), ErrNotFound) {
		t.Fatalf("got != want; got = %v, expected = %v\n", w.Err(), ErrNotFound)
	}
	if !w.Stepper().Equal(at(d)) {
		t.Errorf("failed move changed the position: %v\n", w.Stepper())
	}

	// A failed walker stays failed.
	w.AdvanceOneChar()
	if !w.Stepper().Equal(at(d)) {
		t.Errorf("failed walker moved: %v\n", w.Stepper())
	}
	if _, _, err := w.ToWriters(); !errors.Is(err, ErrNotFound) {
		t.Errorf("got != want; got = %v, expected = %v\n", err, ErrNotFound)
	}
	if _, err := w.Cursor(); !errors.Is(err, ErrNotFound) {
		t.Errorf("got != want; got = %v, expected = %v\n", err, ErrNotFound)
	}
}

func TestToWritersEmpty(t *testing.T) {
	d := sample()

	w, err := ToCaret(d)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	del, add, err := w.ToWriters()
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	op := writer.Op(del, add)
	if len(op.Del) != 0 || len(op.Add) != 0 {
		t.Errorf("expected an empty operation, got %+v\n", op)
	}

	got, err := doc.Apply(d, op)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	if !cmp.Equal(got, d, cmpopts.EquateEmpty()) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, d, cmpopts.EquateEmpty()))
	}
}

func TestToWritersAfterNextBlock(t *testing.T) {
	d := sample()

	w, err := ToCaret(d)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	del, add, err := w.AdvanceToNextBlock().ToWriters()
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	op := writer.Op(del, add)
	if len(op.Del) != 0 || len(op.Add) != 0 {
		t.Errorf("expected an empty operation, got %+v\n", op)
	}

	got, err := doc.Apply(d, op)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	if !cmp.Equal(got, d, cmpopts.EquateEmpty()) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, d, cmpopts.EquateEmpty()))
	}
}

func TestToWritersInsert(t *testing.T) {
	d := sample()

	w, err := ToCaret(d)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	del, add, err := w.AdvanceToNextBlock().ToWriters()
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	add.Chars("X")
	op := writer.Op(del, add)

	expectedAdd := doc.AddSpan{doc.AddSkip(1), doc.AddWithGroup{doc.AddChars{Text: "X"}}}
	if !cmp.Equal(op.Add, expectedAdd, cmpopts.EquateEmpty()) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(op.Add, expectedAdd, cmpopts.EquateEmpty()))
	}
	if len(op.Del) != 0 {
		t.Errorf("expected an empty deletion, got %+v\n", op.Del)
	}

	got, err := doc.Apply(d, op)
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	expected := doc.New(
		doc.NewGroup("p", doc.NewChars("ab"), doc.NewGroup("cursor")),
		doc.NewGroup("p", doc.NewChars("Xc")),
	)
	if !cmp.Equal(got, expected, cmpopts.EquateEmpty()) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, expected, cmpopts.EquateEmpty()))
	}
}

func TestToWritersDelete(t *testing.T) {
	d := nested()

	// Delete "d" inside the inline span.
	w, err := ToCursor(d, doc.CurSpan{doc.CurWithGroup{doc.CurSkip(2), doc.CurWithGroup{doc.CurSkip(1), doc.CurChar{}}}})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	del, add, err := w.ToWriters()
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	del.Chars(1)
	add.Skip(1)

	got, err := doc.Apply(d, writer.Op(del, add))
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	if text := doc.Text(got.Span); text != "abcef" {
		t.Errorf("got != want; got = %q, expected = %q\n", text, "abcef")
	}
}

func TestWithLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	if _, err := ToCaret(sample(), WithLogger(logger)); err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Message != "located caret" {
		t.Errorf("got != want; got = %q, expected = %q\n", entry.Message, "located caret")
	}
	if entry.Data["caret_pos"] != 1 {
		t.Errorf("got != want; got = %v, expected = %v\n", entry.Data["caret_pos"], 1)
	}
}
