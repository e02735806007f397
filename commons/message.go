package commons

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/burntcarrot/treepad/doc"
	"github.com/burntcarrot/treepad/walker"
)

var (
	// ErrInvalidMessage is returned when a message lacks the payload its type requires.
	ErrInvalidMessage = errors.New("invalid message")
)

// Message represents the message exchanged between replicas.
type Message struct {
	// Type represents the message type.
	Type MessageType `json:"type"`

	// ClientID represents the sending client's UUID.
	ClientID uuid.UUID `json:"clientID"`

	// Cursor represents an absolute cursor path. Set for cursor messages only.
	Cursor doc.CurSpan `json:"cursor,omitempty"`

	// Op represents an edit. Set for operation messages only.
	Op *doc.Op `json:"op,omitempty"`

	// Doc represents a full document snapshot. Documents are large, so this is only sent when a replica joins.
	Doc *doc.Doc `json:"doc,omitempty"`
}

// MessageType represents the type of the message.
type MessageType string

// Currently, treepad supports 4 message types:
// - cursorAnchor (the fixed end of a selection)
// - cursorTarget (the moving end of a selection, or a plain caret)
// - operation (an edit)
// - docSync (for syncing documents)

const (
	CursorAnchorMessage MessageType = "cursorAnchor"
	CursorTargetMessage MessageType = "cursorTarget"
	OperationMessage    MessageType = "operation"
	DocSyncMessage      MessageType = "docSync"
)

func newCursorMessage(t MessageType, clientID uuid.UUID, w *walker.Walker) (Message, error) {
	cur, err := w.Cursor()
	if err != nil {
		return Message{}, fmt.Errorf("encode cursor: %w", err)
	}
	return Message{Type: t, ClientID: clientID, Cursor: cur}, nil
}

// NewCursorMessage returns a message moving the client's caret to the walker's position.
func NewCursorMessage(clientID uuid.UUID, w *walker.Walker) (Message, error) {
	return newCursorMessage(CursorTargetMessage, clientID, w)
}

// NewAnchorMessage returns a message fixing the client's selection anchor at the walker's position.
func NewAnchorMessage(clientID uuid.UUID, w *walker.Walker) (Message, error) {
	return newCursorMessage(CursorAnchorMessage, clientID, w)
}

// NewDocSyncMessage returns a message carrying a full snapshot of d.
func NewDocSyncMessage(clientID uuid.UUID, d doc.Doc) Message {
	return Message{Type: DocSyncMessage, ClientID: clientID, Doc: &d}
}

// Validate checks that the message carries the payload its type requires.
// Cursor paths and operations are checked against base, the document they address.
func (m Message) Validate(base doc.Doc) error {
	if m.ClientID == uuid.Nil {
		return fmt.Errorf("%w: missing client ID", ErrInvalidMessage)
	}

	switch m.Type {
	case CursorAnchorMessage, CursorTargetMessage:
		if len(m.Cursor) == 0 {
			return fmt.Errorf("%w: %s without a cursor", ErrInvalidMessage, m.Type)
		}
		if err := doc.ValidateCursor(base, m.Cursor); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	case OperationMessage:
		if m.Op == nil {
			return fmt.Errorf("%w: operation without an op", ErrInvalidMessage)
		}
		if _, err := doc.Apply(base, *m.Op); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	case DocSyncMessage:
		if m.Doc == nil {
			return fmt.Errorf("%w: docSync without a document", ErrInvalidMessage)
		}
		if err := doc.ValidateDoc(*m.Doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}

	return nil
}
