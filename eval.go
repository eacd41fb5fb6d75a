package gridcalc

// EvalPath holds the expressions currently being evaluated, outermost
// first. an expression is identified by the slot value it lives in, so two
// cells holding equal formulas are still distinct.
type EvalPath struct {
	items      []Expr
	processing map[Expr]struct{}
}

// NewEvalPath creates a path that already contains seed
func NewEvalPath(seed ...Expr) *EvalPath {
	path := &EvalPath{
		items:      make([]Expr, 0, len(seed)),
		processing: make(map[Expr]struct{}, len(seed)),
	}
	for _, e := range seed {
		path.push(e)
	}
	return path
}

// Contains reports whether e is being evaluated further up the path
func (p *EvalPath) Contains(e Expr) bool {
	_, exists := p.processing[e]
	return exists
}

// Len returns the current depth
func (p *EvalPath) Len() int {
	return len(p.items)
}

func (p *EvalPath) push(e Expr) {
	p.items = append(p.items, e)
	p.processing[e] = struct{}{}
}

func (p *EvalPath) pop() {
	if len(p.items) == 0 {
		return
	}
	top := p.items[len(p.items)-1]
	p.items = p.items[:len(p.items)-1]
	delete(p.processing, top)
}

// Evaluate evaluates e, refusing to descend into any cell that is already
// on path. path may be nil, in which case a fresh one is used. the path is
// returned to its original depth on every exit.
func Evaluate(e Expr, path *EvalPath) (float64, error) {
	if path == nil {
		path = NewEvalPath()
	}

	switch n := e.(type) {
	case *NumberNode:
		return n.Value, nil

	case *CellRefNode:
		target, err := n.Target()
		if err != nil {
			return 0, err
		}
		return evaluateSlot(target, n.String(), path)

	case *FunctionNode:
		sheet, err := n.Range.resolve()
		if err != nil {
			return 0, err
		}
		cursor, err := n.Range.Cursor(sheet.width)
		if err != nil {
			return 0, err
		}

		sum := 0.0
		count := 0
		for cursor.Begin(); cursor.HasNext(); cursor.Advance() {
			off := cursor.Offset()
			col, row, err := sheet.Coordinates(off)
			if err != nil {
				return 0, err
			}
			v, err := evaluateSlot(sheet.cells[off], CellID{Col: col, Row: row}.String(), path)
			if err != nil {
				return 0, err
			}
			sum += v
			count++
		}
		return n.aggregate(sum, count), nil

	case *BinaryOpNode:
		left, err := Evaluate(n.Left, path)
		if err != nil {
			return 0, err
		}
		right, err := Evaluate(n.Right, path)
		if err != nil {
			return 0, err
		}
		return n.Op.apply(left, right), nil
	}

	return 0, newEvalError(ErrUninitializedReference, "")
}

// evaluateSlot descends into the expression stored in a cell
func evaluateSlot(target Expr, cell string, path *EvalPath) (float64, error) {
	if path.Contains(target) {
		return 0, newEvalError(ErrCyclicReference, cell)
	}
	path.push(target)
	defer path.pop()
	return Evaluate(target, path)
}

// Result is the outcome of evaluating one cell
type Result struct {
	Value float64
	Err   error
}

// Evaluate evaluates the cell at (col, row) with cycle detection
func (s *Sheet) Evaluate(col, row int) (float64, error) {
	e, err := s.Get(col, row)
	if err != nil {
		return 0, err
	}
	return Evaluate(e, NewEvalPath(e))
}

// EvaluateCell is Evaluate addressed by CellID
func (s *Sheet) EvaluateCell(id CellID) (float64, error) {
	return s.Evaluate(id.Col, id.Row)
}

// Values evaluates every cell, row by row. a failing cell records its
// error and does not affect the others.
func (s *Sheet) Values() [][]Result {
	rows := make([][]Result, s.height)
	for row := 1; row <= s.height; row++ {
		results := make([]Result, s.width)
		for col := 1; col <= s.width; col++ {
			v, err := s.Evaluate(col, row)
			results[col-1] = Result{Value: v, Err: err}
		}
		rows[row-1] = results
	}
	return rows
}
