package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/burntcarrot/treepad/commons"
	"github.com/burntcarrot/treepad/doc"
	"github.com/burntcarrot/treepad/schema"
	"github.com/burntcarrot/treepad/stepper"
	"github.com/burntcarrot/treepad/walker"
)

// moves maps the names accepted by --moves to walker navigation calls.
var moves = map[string]func(*walker.Walker) *walker.Walker{
	"block": (*walker.Walker).AdvanceToNextBlock,
	"next":  (*walker.Walker).AdvanceOneChar,
	"back":  (*walker.Walker).RetreatOneChar,
	"snap":  (*walker.Walker).SnapToCharBoundary,
}

// applyMoves runs the named moves in order and stops at the first failure.
func applyMoves(w *walker.Walker, names []string) error {
	for _, name := range names {
		move, ok := moves[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("unknown move %q", name)
		}
		if err := move(w).Err(); err != nil {
			return fmt.Errorf("move %q: %w", name, err)
		}
	}
	return nil
}

// caretColumn returns the display width of the text between the start of
// the enclosing block and the position of s.
func caretColumn(s *stepper.DocStepper, sch *schema.Schema) int {
	s = s.Clone()
	var parts []string

loop:
	for {
		if s.AtStart() {
			if s.Depth() == 0 {
				break
			}
			s.Unenter()
			if g, ok := s.Head().(doc.Group); ok && sch.IsBlock(g.Attrs) {
				break
			}
			continue
		}

		switch el := s.Behind().(type) {
		case doc.Chars:
			parts = append(parts, el.Text)
		case doc.Group:
			if sch.IsBlock(el.Attrs) {
				break loop
			}
			parts = append(parts, doc.Text(el.Children))
		}
		s.Prev()
	}

	width := 0
	for _, p := range parts {
		width += runewidth.StringWidth(p)
	}
	return width
}

func (s *session) run(cmd *cobra.Command, docPath, curPath string) error {
	if err := s.prepare(); err != nil {
		return err
	}

	logFile, debugLogFile, err := setupLogger(s.logger, s.flags.LogDir)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closeLogFiles(logFile, debugLogFile)

	log := s.logger.WithField("client", s.clientID)

	d, err := loadDoc(docPath)
	if err != nil {
		log.WithError(err).Error("failed to load document")
		return err
	}

	opts := []walker.Option{walker.WithSchema(s.schema), walker.WithLogger(log)}

	var w *walker.Walker
	if curPath == "" {
		w, err = walker.ToCaret(d, opts...)
	} else {
		var cur doc.CurSpan
		if cur, err = loadCursor(curPath, d); err != nil {
			log.WithError(err).Error("failed to load cursor")
			return err
		}
		w, err = walker.ToCursor(d, cur, opts...)
	}
	if err != nil {
		return err
	}

	if err := applyMoves(w, s.flags.Moves); err != nil {
		return err
	}

	return s.report(cmd.OutOrStdout(), w)
}

// report prints the walker's position, followed by the message a client
// would send for it.
func (s *session) report(out io.Writer, w *walker.Walker) error {
	label := color.New(color.FgYellow)
	line := func(name string, value interface{}) {
		label.Fprintf(out, "%-9s", name+":")
		fmt.Fprintln(out, value)
	}

	line("caret", w.CaretPos())
	line("column", caretColumn(w.Stepper(), s.schema))

	var msg commons.Message
	if s.flags.Insert != "" {
		del, add, err := w.ToWriters()
		if err != nil {
			return err
		}
		add.Chars(s.flags.Insert)
		msg = commons.NewWriterMessage(s.clientID, del, add)
	} else {
		var err error
		if msg, err = commons.NewCursorMessage(s.clientID, w); err != nil {
			// A position at the end of a sibling list has no cursor path.
			color.New(color.FgRed).Fprintf(out, "cursor: %s\n", err)
			return nil
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	line("message", string(data))

	if msg.Type == commons.OperationMessage {
		result, err := msg.ApplyTo(w.Doc())
		if err != nil {
			return err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		line("result", string(data))
	}

	return nil
}
