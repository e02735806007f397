package commons

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/burntcarrot/treepad/doc"
	"github.com/burntcarrot/treepad/writer"
)

// NewOperationMessage returns a message carrying op.
func NewOperationMessage(clientID uuid.UUID, op doc.Op) Message {
	return Message{Type: OperationMessage, ClientID: clientID, Op: &op}
}

// NewWriterMessage finalizes a pair of writers into an operation message.
func NewWriterMessage(clientID uuid.UUID, del *writer.DelWriter, add *writer.AddWriter) Message {
	return NewOperationMessage(clientID, writer.Op(del, add))
}

// ApplyTo applies the message's operation to d.
func (m Message) ApplyTo(d doc.Doc) (doc.Doc, error) {
	if m.Type != OperationMessage || m.Op == nil {
		return d, fmt.Errorf("%w: %s carries no operation", ErrInvalidMessage, m.Type)
	}
	return doc.Apply(d, *m.Op)
}
