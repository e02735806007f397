package doc

import "fmt"

// reader consumes a span unit by unit, splitting character runs as needed.
type reader struct {
	span Span
	idx  int
	off  int
}

func (r *reader) done() bool {
	return r.idx >= len(r.span)
}

func (r *reader) peek() Element {
	if r.done() {
		return nil
	}
	return r.span[r.idx]
}

// run takes up to n characters from the character run at the front.
func (r *reader) run(n int) Chars {
	c := r.span[r.idx].(Chars)
	runes := []rune(c.Text)
	k := min(n, len(runes)-r.off)
	piece := Chars{Text: string(runes[r.off : r.off+k]), Styles: c.Styles}

	r.off += k
	if r.off == len(runes) {
		r.idx++
		r.off = 0
	}
	return piece
}

func (r *reader) take(n int) (Span, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative skip %d", ErrMalformed, n)
	}

	var out Span
	for n > 0 {
		if r.done() {
			return nil, fmt.Errorf("%w: skip overruns span by %d", ErrMalformed, n)
		}
		if _, ok := r.span[r.idx].(Chars); ok {
			piece := r.run(n)
			n -= piece.Len()
			out = append(out, piece)
			continue
		}
		out = append(out, r.span[r.idx])
		r.idx++
		n--
	}
	return out, nil
}

func (r *reader) takeChars(n int) ([]Chars, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative character count %d", ErrMalformed, n)
	}

	var out []Chars
	for n > 0 {
		if _, ok := r.peek().(Chars); !ok {
			return nil, fmt.Errorf("%w: expected %d more characters", ErrMalformed, n)
		}
		piece := r.run(n)
		n -= piece.Len()
		out = append(out, piece)
	}
	return out, nil
}

func (r *reader) takeGroup() (Group, error) {
	g, ok := r.peek().(Group)
	if !ok {
		return Group{}, fmt.Errorf("%w: expected a group", ErrMalformed)
	}
	r.idx++
	return g, nil
}

func (r *reader) rest() Span {
	if r.done() {
		return nil
	}
	out := Span{}
	if r.off > 0 {
		c := r.span[r.idx].(Chars)
		out = append(out, Chars{Text: string([]rune(c.Text)[r.off:]), Styles: c.Styles})
		return append(out, r.span[r.idx+1:]...)
	}
	return append(out, r.span[r.idx:]...)
}

// builder appends elements, merging adjacent runs with equal styles and
// dropping empty ones.
type builder struct {
	span Span
}

func (b *builder) push(elems ...Element) {
	for _, el := range elems {
		c, ok := el.(Chars)
		if !ok {
			b.span = append(b.span, el)
			continue
		}
		if c.Text == "" {
			continue
		}
		if n := len(b.span); n > 0 {
			if last, ok := b.span[n-1].(Chars); ok && last.Styles.Equal(c.Styles) {
				b.span[n-1] = Chars{Text: last.Text + c.Text, Styles: last.Styles}
				continue
			}
		}
		b.span = append(b.span, c)
	}
}

// ApplyDelete removes what del describes from span.
func ApplyDelete(span Span, del DelSpan) (Span, error) {
	r := &reader{span: span}
	b := &builder{}

	for _, el := range del {
		switch el := el.(type) {
		case DelSkip:
			elems, err := r.take(int(el))
			if err != nil {
				return nil, err
			}
			b.push(elems...)

		case DelChars:
			if _, err := r.takeChars(int(el)); err != nil {
				return nil, err
			}

		case DelWithGroup:
			g, err := r.takeGroup()
			if err != nil {
				return nil, err
			}
			inner, err := ApplyDelete(g.Children, DelSpan(el))
			if err != nil {
				return nil, err
			}
			b.push(Group{Attrs: g.Attrs, Children: inner})

		case DelGroup:
			g, err := r.takeGroup()
			if err != nil {
				return nil, err
			}
			inner, err := ApplyDelete(g.Children, DelSpan(el))
			if err != nil {
				return nil, err
			}
			b.push(inner...)

		case DelStyles:
			runs, err := r.takeChars(el.Count)
			if err != nil {
				return nil, err
			}
			for _, c := range runs {
				b.push(Chars{Text: c.Text, Styles: c.Styles.Remove(el.Styles)})
			}

		default:
			return nil, fmt.Errorf("%w: unknown deletion element %T", ErrMalformed, el)
		}
	}

	b.push(r.rest()...)
	return b.span, nil
}

// ApplyAdd inserts what add describes into span.
func ApplyAdd(span Span, add AddSpan) (Span, error) {
	r := &reader{span: span}
	inner, err := applyAdd(r, add)
	if err != nil {
		return nil, err
	}

	b := &builder{}
	b.push(inner...)
	b.push(r.rest()...)
	return b.span, nil
}

func applyAdd(r *reader, add AddSpan) (Span, error) {
	b := &builder{}

	for _, el := range add {
		switch el := el.(type) {
		case AddSkip:
			elems, err := r.take(int(el))
			if err != nil {
				return nil, err
			}
			b.push(elems...)

		case AddChars:
			b.push(Chars{Text: el.Text, Styles: el.Styles})

		case AddWithGroup:
			g, err := r.takeGroup()
			if err != nil {
				return nil, err
			}
			inner, err := ApplyAdd(g.Children, AddSpan(el))
			if err != nil {
				return nil, err
			}
			b.push(Group{Attrs: g.Attrs, Children: inner})

		case AddGroup:
			// The new group's skips consume the siblings that follow it.
			inner, err := applyAdd(r, el.Span)
			if err != nil {
				return nil, err
			}
			b.push(Group{Attrs: el.Attrs, Children: inner})

		case AddStyles:
			runs, err := r.takeChars(el.Count)
			if err != nil {
				return nil, err
			}
			for _, c := range runs {
				b.push(Chars{Text: c.Text, Styles: c.Styles.Merge(el.Styles)})
			}

		default:
			return nil, fmt.Errorf("%w: unknown insertion element %T", ErrMalformed, el)
		}
	}

	return b.span, nil
}

// Apply returns the document produced by applying op to d.
func Apply(d Doc, op Op) (Doc, error) {
	residue, err := ApplyDelete(d.Span, op.Del)
	if err != nil {
		return Doc{}, fmt.Errorf("apply delete: %w", err)
	}
	span, err := ApplyAdd(residue, op.Add)
	if err != nil {
		return Doc{}, fmt.Errorf("apply add: %w", err)
	}
	return Doc{Span: span}, nil
}
