package gridcalc

import "iter"

// Range is a normalized rectangle of cells: TopLeft holds the smaller
// column and row, BottomRight the larger ones. it is owned by the
// FunctionNode that contains it.
type Range struct {
	TopLeft     *CellRefNode
	BottomRight *CellRefNode
}

// NewRange normalizes two corners given in any order. each coordinate keeps
// the absolute flag of the corner that supplied it. the sheet association
// comes from a.
func NewRange(a, b *CellRefNode) Range {
	tl := &CellRefNode{sheet: a.sheet}
	br := &CellRefNode{sheet: a.sheet}

	lo, hi := a, b
	if b.Col < a.Col {
		lo, hi = b, a
	}
	tl.Col, tl.AbsCol = lo.Col, lo.AbsCol
	br.Col, br.AbsCol = hi.Col, hi.AbsCol

	lo, hi = a, b
	if b.Row < a.Row {
		lo, hi = b, a
	}
	tl.Row, tl.AbsRow = lo.Row, lo.AbsRow
	br.Row, br.AbsRow = hi.Row, hi.AbsRow

	return Range{TopLeft: tl, BottomRight: br}
}

func (r Range) String() string {
	return r.TopLeft.String() + ":" + r.BottomRight.String()
}

// Size returns the number of columns and rows covered
func (r Range) Size() (cols, rows int) {
	return r.BottomRight.Col - r.TopLeft.Col + 1, r.BottomRight.Row - r.TopLeft.Row + 1
}

// Shift moves both corners. a range with one absolute corner can flip while
// shifting, so the corners are normalized again afterwards.
func (r *Range) Shift(dx, dy int) {
	r.TopLeft.Shift(dx, dy)
	r.BottomRight.Shift(dx, dy)
	*r = NewRange(r.TopLeft, r.BottomRight)
}

func (r *Range) Bind(s *Sheet) {
	r.TopLeft.Bind(s)
	r.BottomRight.Bind(s)
}

func (r Range) Clone() Range {
	return Range{
		TopLeft:     r.TopLeft.clone(),
		BottomRight: r.BottomRight.clone(),
	}
}

// resolve returns the bound sheet after checking both corners lie inside it
func (r Range) resolve() (*Sheet, error) {
	sheet := r.TopLeft.sheet
	if sheet == nil {
		return nil, newEvalError(ErrUninitializedReference, r.String())
	}
	if _, err := sheet.Index(r.TopLeft.Col, r.TopLeft.Row); err != nil {
		return nil, err
	}
	if _, err := sheet.Index(r.BottomRight.Col, r.BottomRight.Row); err != nil {
		return nil, err
	}
	return sheet, nil
}

// RangeCursor walks the row-major offsets of a range inside a grid of a
// given width.
//
//	for c.Begin(); c.HasNext(); c.Advance() {
//		use(c.Offset())
//	}
type RangeCursor struct {
	width    int
	top      int // offset of the top-left corner
	bottom   int // offset of the bottom-right corner
	span     int // columns after the first one in each row
	rowStart int
	offset   int
}

// Cursor creates a cursor over r for a grid width columns wide
func (r Range) Cursor(width int) (*RangeCursor, error) {
	for _, corner := range []*CellRefNode{r.TopLeft, r.BottomRight} {
		if corner.Col < 1 || corner.Row < 1 || corner.Col > width {
			return nil, newEvalError(ErrIndexOutOfRange, corner.String())
		}
	}

	top := (r.TopLeft.Row-1)*width + r.TopLeft.Col - 1
	bottom := (r.BottomRight.Row-1)*width + r.BottomRight.Col - 1
	c := &RangeCursor{
		width:  width,
		top:    top,
		bottom: bottom,
		span:   (bottom - top) % width,
	}
	c.Begin()
	return c, nil
}

// Begin rewinds to the top-left corner
func (c *RangeCursor) Begin() {
	c.rowStart = c.top
	c.offset = c.top
}

// HasNext reports whether Offset is still inside the range
func (c *RangeCursor) HasNext() bool {
	return c.rowStart <= c.bottom-c.span
}

// Offset is the row-major slot index at the current position
func (c *RangeCursor) Offset() int {
	return c.offset
}

// Advance steps right, wrapping to the next row at the right edge
func (c *RangeCursor) Advance() {
	if c.offset < c.rowStart+c.span {
		c.offset++
		return
	}
	c.rowStart += c.width
	c.offset = c.rowStart
}

// Offsets returns the same sequence as Cursor as an iterator
func (r Range) Offsets(width int) (iter.Seq[int], error) {
	c, err := r.Cursor(width)
	if err != nil {
		return nil, err
	}
	return func(yield func(int) bool) {
		for c.Begin(); c.HasNext(); c.Advance() {
			if !yield(c.Offset()) {
				return
			}
		}
	}, nil
}
