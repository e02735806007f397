package doc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The encoding is externally tagged: newtype variants are {"Tag": value},
// tuple variants are {"Tag": [a, b]} and unit variants are the bare "Tag".
// Character runs are a bare string when unstyled, else [text, styles].

func tagged(tag string, value interface{}) (json.RawMessage, error) {
	inner, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: inner})
}

func untag(data []byte) (string, json.RawMessage, error) {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		return unit, nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("%w: expected one variant tag, got %d", ErrMalformed, len(obj))
	}
	for tag, value := range obj {
		return tag, value, nil
	}
	return "", nil, nil
}

func tuple(data json.RawMessage, n int) ([]json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parts) != n {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, n, len(parts))
	}
	return parts, nil
}

func decode(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// decodeCount decodes a unit count, which is never negative.
func decodeCount(data json.RawMessage, n *int) error {
	if err := decode(data, n); err != nil {
		return err
	}
	if *n < 0 {
		return fmt.Errorf("%w: negative count %d", ErrMalformed, *n)
	}
	return nil
}

func encodeChars(text string, styles StyleMap) interface{} {
	if len(styles) == 0 {
		return text
	}
	return []interface{}{text, styles}
}

func decodeChars(data json.RawMessage) (string, StyleMap, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var text string
		err := decode(data, &text)
		return text, nil, err
	}

	parts, err := tuple(data, 2)
	if err != nil {
		return "", nil, err
	}
	var text string
	var styles StyleMap
	if err := decode(parts[0], &text); err != nil {
		return "", nil, err
	}
	if err := decode(parts[1], &styles); err != nil {
		return "", nil, err
	}
	return text, styles, nil
}

func marshalList[T any](elems []T, one func(T) (json.RawMessage, error)) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(elems))
	for _, el := range elems {
		raw, err := one(el)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func unmarshalList[T any](data []byte, one func([]byte) (T, error)) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raws == nil {
		return nil, nil
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		el, err := one(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

///////////////
// Documents
///////////////

func marshalElement(el Element) (json.RawMessage, error) {
	switch el := el.(type) {
	case Chars:
		return tagged("DocChars", encodeChars(el.Text, el.Styles))
	case Group:
		return tagged("DocGroup", []interface{}{el.Attrs, el.Children})
	}
	return nil, fmt.Errorf("unknown document element %T", el)
}

func unmarshalElement(data []byte) (Element, error) {
	tag, value, err := untag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "DocChars":
		text, styles, err := decodeChars(value)
		return Chars{Text: text, Styles: styles}, err
	case "DocGroup":
		parts, err := tuple(value, 2)
		if err != nil {
			return nil, err
		}
		var g Group
		if err := decode(parts[0], &g.Attrs); err != nil {
			return nil, err
		}
		if err := decode(parts[1], &g.Children); err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("%w: unknown document element %q", ErrMalformed, tag)
}

// MarshalJSON implements json.Marshaler.
func (s Span) MarshalJSON() ([]byte, error) {
	return marshalList(s, marshalElement)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Span) UnmarshalJSON(data []byte) error {
	elems, err := unmarshalList(data, unmarshalElement)
	*s = elems
	return err
}

// MarshalJSON encodes the document as the bare array of its elements.
func (d Doc) MarshalJSON() ([]byte, error) {
	return d.Span.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Doc) UnmarshalJSON(data []byte) error {
	return d.Span.UnmarshalJSON(data)
}

///////////////
// Deletions
///////////////

func marshalDel(el DelElement) (json.RawMessage, error) {
	switch el := el.(type) {
	case DelSkip:
		return tagged("DelSkip", int(el))
	case DelWithGroup:
		return tagged("DelWithGroup", DelSpan(el))
	case DelChars:
		return tagged("DelChars", int(el))
	case DelGroup:
		return tagged("DelGroup", DelSpan(el))
	case DelStyles:
		return tagged("DelStyles", []interface{}{el.Count, el.Styles})
	}
	return nil, fmt.Errorf("unknown deletion element %T", el)
}

func unmarshalDel(data []byte) (DelElement, error) {
	tag, value, err := untag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "DelSkip", "DelChars":
		var n int
		if err := decodeCount(value, &n); err != nil {
			return nil, err
		}
		if tag == "DelSkip" {
			return DelSkip(n), nil
		}
		return DelChars(n), nil
	case "DelWithGroup", "DelGroup":
		var span DelSpan
		if err := decode(value, &span); err != nil {
			return nil, err
		}
		if tag == "DelWithGroup" {
			return DelWithGroup(span), nil
		}
		return DelGroup(span), nil
	case "DelStyles":
		parts, err := tuple(value, 2)
		if err != nil {
			return nil, err
		}
		var el DelStyles
		if err := decodeCount(parts[0], &el.Count); err != nil {
			return nil, err
		}
		if err := decode(parts[1], &el.Styles); err != nil {
			return nil, err
		}
		return el, nil
	}
	return nil, fmt.Errorf("%w: unknown deletion element %q", ErrMalformed, tag)
}

// MarshalJSON implements json.Marshaler.
func (s DelSpan) MarshalJSON() ([]byte, error) {
	return marshalList(s, marshalDel)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *DelSpan) UnmarshalJSON(data []byte) error {
	elems, err := unmarshalList(data, unmarshalDel)
	*s = elems
	return err
}

///////////////
// Insertions
///////////////

func marshalAdd(el AddElement) (json.RawMessage, error) {
	switch el := el.(type) {
	case AddSkip:
		return tagged("AddSkip", int(el))
	case AddWithGroup:
		return tagged("AddWithGroup", AddSpan(el))
	case AddChars:
		return tagged("AddChars", encodeChars(el.Text, el.Styles))
	case AddGroup:
		return tagged("AddGroup", []interface{}{el.Attrs, el.Span})
	case AddStyles:
		return tagged("AddStyles", []interface{}{el.Count, el.Styles})
	}
	return nil, fmt.Errorf("unknown insertion element %T", el)
}

func unmarshalAdd(data []byte) (AddElement, error) {
	tag, value, err := untag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "AddSkip":
		var n int
		if err := decodeCount(value, &n); err != nil {
			return nil, err
		}
		return AddSkip(n), nil
	case "AddWithGroup":
		var span AddSpan
		err := decode(value, &span)
		return AddWithGroup(span), err
	case "AddChars":
		text, styles, err := decodeChars(value)
		return AddChars{Text: text, Styles: styles}, err
	case "AddGroup":
		parts, err := tuple(value, 2)
		if err != nil {
			return nil, err
		}
		var el AddGroup
		if err := decode(parts[0], &el.Attrs); err != nil {
			return nil, err
		}
		if err := decode(parts[1], &el.Span); err != nil {
			return nil, err
		}
		return el, nil
	case "AddStyles":
		parts, err := tuple(value, 2)
		if err != nil {
			return nil, err
		}
		var el AddStyles
		if err := decodeCount(parts[0], &el.Count); err != nil {
			return nil, err
		}
		if err := decode(parts[1], &el.Styles); err != nil {
			return nil, err
		}
		return el, nil
	}
	return nil, fmt.Errorf("%w: unknown insertion element %q", ErrMalformed, tag)
}

// MarshalJSON implements json.Marshaler.
func (s AddSpan) MarshalJSON() ([]byte, error) {
	return marshalList(s, marshalAdd)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *AddSpan) UnmarshalJSON(data []byte) error {
	elems, err := unmarshalList(data, unmarshalAdd)
	*s = elems
	return err
}

///////////////
// Cursors
///////////////

func marshalCur(el CurElement) (json.RawMessage, error) {
	switch el := el.(type) {
	case CurSkip:
		return tagged("CurSkip", int(el))
	case CurWithGroup:
		return tagged("CurWithGroup", CurSpan(el))
	case CurGroup:
		return json.Marshal("CurGroup")
	case CurChar:
		return json.Marshal("CurChar")
	}
	return nil, fmt.Errorf("unknown cursor element %T", el)
}

func unmarshalCur(data []byte) (CurElement, error) {
	tag, value, err := untag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "CurSkip":
		var n int
		if err := decodeCount(value, &n); err != nil {
			return nil, err
		}
		return CurSkip(n), nil
	case "CurWithGroup":
		var span CurSpan
		err := decode(value, &span)
		return CurWithGroup(span), err
	case "CurGroup":
		return CurGroup{}, nil
	case "CurChar":
		return CurChar{}, nil
	}
	return nil, fmt.Errorf("%w: unknown cursor element %q", ErrMalformed, tag)
}

// MarshalJSON implements json.Marshaler.
func (s CurSpan) MarshalJSON() ([]byte, error) {
	return marshalList(s, marshalCur)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *CurSpan) UnmarshalJSON(data []byte) error {
	elems, err := unmarshalList(data, unmarshalCur)
	*s = elems
	return err
}

///////////////
// Operations
///////////////

// MarshalJSON encodes the operation as the pair [del, add].
func (op Op) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{op.Del, op.Add})
}

// UnmarshalJSON implements json.Unmarshaler.
func (op *Op) UnmarshalJSON(data []byte) error {
	parts, err := tuple(data, 2)
	if err != nil {
		return err
	}
	if err := decode(parts[0], &op.Del); err != nil {
		return err
	}
	return decode(parts[1], &op.Add)
}
