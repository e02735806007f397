package stepper

import "github.com/burntcarrot/treepad/doc"

type curFrame struct {
	span    doc.CurSpan
	idx     int
	skipped int
}

// CurStepper walks a cursor path in step with a DocStepper.
type CurStepper struct {
	stack []curFrame
}

// NewCurStepper returns a stepper at the start of cur.
func NewCurStepper(cur doc.CurSpan) *CurStepper {
	return &CurStepper{stack: []curFrame{{span: cur}}}
}

func (c *CurStepper) top() *curFrame {
	return &c.stack[len(c.stack)-1]
}

// Head returns the current path element, with skips reduced by the units
// already consumed, or nil once the current span is exhausted. Empty skips
// are passed over. A negative skip is returned as is.
func (c *CurStepper) Head() doc.CurElement {
	f := c.top()
	for f.idx < len(f.span) {
		if n, ok := f.span[f.idx].(doc.CurSkip); !ok || n != 0 {
			break
		}
		f.idx++
	}
	if f.idx >= len(f.span) {
		return nil
	}
	if n, ok := f.span[f.idx].(doc.CurSkip); ok {
		return n - doc.CurSkip(f.skipped)
	}
	return f.span[f.idx]
}

// Skip consumes one unit of the skip at the head.
func (c *CurStepper) Skip() {
	if c.Head() == nil {
		panic("stepper: skip past the end of a cursor path")
	}
	f := c.top()
	n, ok := f.span[f.idx].(doc.CurSkip)
	if !ok {
		panic("stepper: skip on a cursor element that is not a skip")
	}
	f.skipped++
	if f.skipped >= int(n) {
		f.idx++
		f.skipped = 0
	}
}

// Enter descends into the group path at the head.
func (c *CurStepper) Enter() {
	inner, ok := c.Head().(doc.CurWithGroup)
	if !ok {
		panic("stepper: enter on a cursor element that is not a group")
	}
	c.stack = append(c.stack, curFrame{span: doc.CurSpan(inner)})
}

// Exit ascends out of the current group path, consuming it.
func (c *CurStepper) Exit() {
	if len(c.stack) == 1 {
		panic("stepper: ascend above the root of a cursor path")
	}
	c.stack = c.stack[:len(c.stack)-1]
	c.top().idx++
}

// Depth returns the number of group paths the stepper is inside.
func (c *CurStepper) Depth() int {
	return len(c.stack) - 1
}
