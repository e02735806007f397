package doc

import "fmt"

// ValidateDoc checks that every character run is non-empty and every group carries a tag.
func ValidateDoc(d Doc) error {
	return validateSpan(d.Span)
}

func validateSpan(span Span) error {
	for i, el := range span {
		switch el := el.(type) {
		case Chars:
			if el.Text == "" {
				return fmt.Errorf("%w: empty character run at %d", ErrMalformed, i)
			}
		case Group:
			if el.Attrs.Tag() == "" {
				return fmt.Errorf("%w: group without a tag at %d", ErrMalformed, i)
			}
			if err := validateSpan(el.Children); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown element %T at %d", ErrMalformed, el, i)
		}
	}
	return nil
}

// ValidateCursor checks that cur decodes to exactly one position in d.
func ValidateCursor(d Doc, cur CurSpan) error {
	return validateCur(d.Span, cur)
}

func validateCur(span Span, cur CurSpan) error {
	r := &reader{span: span}

	for i, el := range cur {
		last := i == len(cur)-1

		switch el := el.(type) {
		case CurSkip:
			if _, err := r.take(int(el)); err != nil {
				return err
			}

		case CurWithGroup:
			if !last {
				return fmt.Errorf("%w: cursor path continues after a descent", ErrMalformed)
			}
			g, err := r.takeGroup()
			if err != nil {
				return err
			}
			return validateCur(g.Children, CurSpan(el))

		case CurGroup:
			if !last {
				return fmt.Errorf("%w: cursor path continues after its end", ErrMalformed)
			}
			if _, ok := r.peek().(Group); !ok {
				return fmt.Errorf("%w: cursor path ends before a group that does not exist", ErrMalformed)
			}
			return nil

		case CurChar:
			if !last {
				return fmt.Errorf("%w: cursor path continues after its end", ErrMalformed)
			}
			if _, ok := r.peek().(Chars); !ok {
				return fmt.Errorf("%w: cursor path ends before a character that does not exist", ErrMalformed)
			}
			return nil

		default:
			return fmt.Errorf("%w: unknown cursor element %T", ErrMalformed, el)
		}
	}

	return fmt.Errorf("%w: cursor path has no end marker", ErrMalformed)
}
