// Package walker locates carets and cursors inside a document tree, moves
// them by character or by block, and turns the distance travelled into a
// skip-addressed operation.
//
// A Walker is built from an immutable document snapshot and owns its own
// traversal position, so several walkers may share one snapshot concurrently.
// A single Walker must not be shared between goroutines.
package walker

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/treepad/doc"
	"github.com/burntcarrot/treepad/schema"
	"github.com/burntcarrot/treepad/stepper"
	"github.com/burntcarrot/treepad/writer"
)

var (
	// ErrNotFound is returned when a locate or navigation step finds no matching position.
	ErrNotFound = errors.New("position not found")
)

// Walker is a live position inside a document snapshot.
type Walker struct {
	original doc.Doc
	doc      *stepper.DocStepper

	// caretPos is a coarse position counter: it starts at -1 and moves by
	// one per block boundary and per character step. ToCaret steps over a
	// whole character run at once and counts it as one step, so it can
	// report a smaller value than ToCursor does for the same position.
	caretPos int

	schema *schema.Schema
	log    logrus.FieldLogger
	err    error
}

// Option configures a Walker.
type Option func(*Walker)

// WithSchema sets the schema used to recognise block boundaries.
func WithSchema(s *schema.Schema) Option {
	return func(w *Walker) {
		w.schema = s
	}
}

// WithLogger sets the logger that receives traversal traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Walker) {
		w.log = l
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newWalker(d doc.Doc, opts []Option) *Walker {
	w := &Walker{
		original: d,
		doc:      stepper.NewDocStepper(d.Span),
		caretPos: -1,
		schema:   schema.Default,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = discardLogger()
	}
	return w
}

func (w *Walker) fields() logrus.Fields {
	return logrus.Fields{
		"caret_pos": w.caretPos,
		"depth":     w.doc.Depth(),
		"position":  w.doc.String(),
	}
}

// ToCaret returns a walker positioned at the caret group embedded in d.
func ToCaret(d doc.Doc, opts ...Option) (*Walker, error) {
	w := newWalker(d, opts)

	for {
		switch el := w.doc.Head().(type) {
		case doc.Chars:
			w.caretPos++
			w.doc.Skip(el.Len())

		case doc.Group:
			if el.Attrs.IsCursor() {
				w.log.WithFields(w.fields()).Debug("located caret")
				return w, nil
			}
			if w.schema.IsBlock(el.Attrs) {
				w.caretPos++
			}
			w.doc.Enter()

		case nil:
			if w.doc.IsDone() {
				w.log.Warn("document has no caret")
				return nil, fmt.Errorf("%w: document has no caret", ErrNotFound)
			}
			w.doc.Exit()
		}
	}
}

// ToCursor returns a walker positioned where the cursor path cur ends in d.
func ToCursor(d doc.Doc, cur doc.CurSpan, opts ...Option) (*Walker, error) {
	w := newWalker(d, opts)
	path := stepper.NewCurStepper(cur)

	// held counts the groups entered while the path passes over the
	// outermost of them as a single skipped unit.
	held := 0

	mismatch := func(reason string) (*Walker, error) {
		w.log.WithFields(w.fields()).Warnf("cursor path mismatch: %s", reason)
		return nil, fmt.Errorf("%w: cursor path does not match the document: %s", ErrNotFound, reason)
	}

	for {
		if held == 0 && doc.IsTerminal(path.Head()) {
			w.log.WithFields(w.fields()).Debug("located cursor")
			return w, nil
		}
		if n, ok := path.Head().(doc.CurSkip); ok && held == 0 && n < 0 {
			return mismatch(fmt.Sprintf("negative skip %d", n))
		}

		switch el := w.doc.Head().(type) {
		case doc.Chars:
			w.caretPos++
			w.doc.Skip(1)
			if held > 0 {
				continue
			}
			if _, ok := path.Head().(doc.CurSkip); !ok {
				return mismatch("expected a skip over a character")
			}
			path.Skip()

		case doc.Group:
			if w.schema.IsBlock(el.Attrs) {
				w.caretPos++
			}
			w.doc.Enter()
			if held > 0 {
				held++
				continue
			}
			switch path.Head().(type) {
			case doc.CurWithGroup:
				path.Enter()
			case doc.CurSkip:
				held = 1
			default:
				return mismatch("expected a skip or a descent at a group")
			}

		case nil:
			if w.doc.IsDone() {
				return mismatch("path continues past the end of the document")
			}
			w.doc.Exit()
			if held > 0 {
				held--
				if held == 0 {
					path.Skip()
				}
				continue
			}
			if path.Head() != nil {
				return mismatch("path skips past the end of a group")
			}
			path.Exit()
		}
	}
}

// fail records err, restores the position saved before the failed call, and
// leaves the walker inert.
func (w *Walker) fail(saved *stepper.DocStepper, caretPos int, err error) *Walker {
	w.doc = saved
	w.caretPos = caretPos
	w.err = err
	w.log.WithFields(w.fields()).WithError(err).Warn("walker navigation failed")
	return w
}

// Err returns the first error met by a navigation call.
func (w *Walker) Err() error {
	return w.err
}

// AdvanceToNextBlock leaves the current nesting level and enters the next
// block group.
func (w *Walker) AdvanceToNextBlock() *Walker {
	if w.err != nil {
		return w
	}
	saved, pos := w.doc.Clone(), w.caretPos

	if w.doc.Depth() > 0 {
		w.doc.Unenter()
		w.doc.Next()
	}

	for {
		switch el := w.doc.Head().(type) {
		case doc.Group:
			if w.schema.IsBlock(el.Attrs) {
				w.doc.Enter()
				w.caretPos++
				w.log.WithFields(w.fields()).Debug("advanced to next block")
				return w
			}
			if el.Attrs.IsCursor() {
				w.doc.Next()
				continue
			}
			w.doc.Enter()

		case doc.Chars:
			w.doc.Next()

		case nil:
			if w.doc.IsDone() {
				return w.fail(saved, pos, fmt.Errorf("%w: no block after the walker", ErrNotFound))
			}
			w.doc.Exit()
		}
	}
}

// AdvanceOneChar moves past the next character. It stops early in front of
// the caret or a block boundary, and at the end of the document.
func (w *Walker) AdvanceOneChar() *Walker {
	if w.err != nil {
		return w
	}

	for {
		switch el := w.doc.Head().(type) {
		case doc.Chars:
			w.caretPos++
			w.doc.Skip(1)
			return w

		case doc.Group:
			if el.Attrs.IsCursor() {
				return w
			}
			if w.schema.IsBlock(el.Attrs) {
				w.caretPos++
				return w
			}
			w.doc.Enter()

		case nil:
			if w.doc.IsDone() {
				return w
			}
			w.doc.Exit()
		}
	}
}

// RetreatOneChar steps back over the previous character. In front of a
// block that follows another block, it steps back into the end of the
// preceding block instead, undoing the stop AdvanceOneChar makes there.
func (w *Walker) RetreatOneChar() *Walker {
	if w.err != nil {
		return w
	}
	if g, ok := w.doc.Head().(doc.Group); ok && w.schema.IsBlock(g.Attrs) {
		if s, ok := w.blockEndBehind(); ok {
			w.doc = s
			w.caretPos--
			return w
		}
	}
	return w.SnapToCharBoundary()
}

// blockEndBehind returns the end of the block that AdvanceOneChar left to
// reach the current position: it leaves non-block groups entered at their
// start, then re-enters non-block groups from their end until a block is
// re-entered.
func (w *Walker) blockEndBehind() (*stepper.DocStepper, bool) {
	s := w.doc.Clone()

	for s.AtStart() && s.Depth() > 0 {
		s.Unenter()
		if g, ok := s.Head().(doc.Group); ok && w.schema.IsBlock(g.Attrs) {
			return nil, false
		}
	}

	for {
		g, ok := s.Behind().(doc.Group)
		if !ok || g.Attrs.IsCursor() {
			return nil, false
		}
		s.Unexit()
		if w.schema.IsBlock(g.Attrs) {
			return s, true
		}
	}
}

// SnapToCharBoundary searches backward for the nearest preceding character
// and stops in front of it. Groups before the walker are searched from
// their end. Leaving a block backward stops in front of that block.
func (w *Walker) SnapToCharBoundary() *Walker {
	if w.err != nil {
		return w
	}
	saved, pos := w.doc.Clone(), w.caretPos

	for {
		if w.doc.AtStart() {
			if w.doc.Depth() == 0 {
				return w.fail(saved, pos, fmt.Errorf("%w: no character before the walker", ErrNotFound))
			}
			w.doc.Unenter()
			if g, ok := w.doc.Head().(doc.Group); ok && w.schema.IsBlock(g.Attrs) {
				w.caretPos--
				return w
			}
			continue
		}

		switch w.doc.Behind().(type) {
		case doc.Chars:
			w.doc.Unskip(1)
			w.caretPos--
			return w
		case doc.Group:
			w.doc.Unexit()
		}
	}
}

// ToWriters returns a pair of writers holding the skips that lead from the
// start of the document to the walker. Groups on the way stay open so an
// edit can be appended at the walker's position before calling Result.
func (w *Walker) ToWriters() (*writer.DelWriter, *writer.AddWriter, error) {
	if w.err != nil {
		return nil, nil, w.err
	}

	del := writer.NewDelWriter()
	add := writer.NewAddWriter()
	s := stepper.NewDocStepper(w.original.Span)

	for !s.Equal(w.doc) {
		switch s.Head().(type) {
		case doc.Chars:
			del.Skip(1)
			add.Skip(1)
			s.Skip(1)

		case doc.Group:
			del.Begin()
			add.Begin()
			s.Enter()

		case nil:
			if s.IsDone() {
				return nil, nil, fmt.Errorf("%w: walker is not inside its document", ErrNotFound)
			}
			del.Exit()
			add.Exit()
			s.Exit()
		}
	}

	return del, add, nil
}

// Cursor encodes the walker's position as an absolute cursor path.
func (w *Walker) Cursor() (doc.CurSpan, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.doc.Cursor()
}

// CaretPos returns the coarse position counter.
func (w *Walker) CaretPos() int {
	return w.caretPos
}

// Stepper returns a copy of the walker's position.
func (w *Walker) Stepper() *stepper.DocStepper {
	return w.doc.Clone()
}

// Doc returns the snapshot the walker was built from.
func (w *Walker) Doc() doc.Doc {
	return w.original
}
