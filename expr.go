package gridcalc

import (
	"fmt"
	"math"
	"strconv"
)

// Expr is a node of a parsed formula. the set of implementations is closed:
// NumberNode, CellRefNode, FunctionNode and BinaryOpNode.
//
// Eval is the raw evaluation and does not guard against reference cycles.
// anything evaluating cells on behalf of a user goes through Evaluate.
type Expr interface {
	Eval() (float64, error)
	String() string
	// Clone returns a deep copy. cell references keep pointing at the same
	// sheet, the sheet itself is never copied.
	Clone() Expr
	// Shift moves every non-absolute coordinate in place
	Shift(dx, dy int)
	// Bind points every cell reference at s
	Bind(s *Sheet)

	isExpr()
}

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
)

func (op BinaryOp) String() string {
	switch op {
	case BinOpAdd:
		return "+"
	case BinOpSubtract:
		return "-"
	case BinOpMultiply:
		return "*"
	case BinOpDivide:
		return "/"
	}
	return "?"
}

// FuncKind names an aggregate function over a range
type FuncKind int

const (
	FuncSum FuncKind = iota
	FuncAvg
)

var funcNames = map[string]FuncKind{
	"sum": FuncSum,
	"avg": FuncAvg,
}

// LookupFunc resolves an aggregate by name. names are case-sensitive.
func LookupFunc(name string) (FuncKind, bool) {
	kind, ok := funcNames[name]
	return kind, ok
}

func (k FuncKind) String() string {
	switch k {
	case FuncSum:
		return "sum"
	case FuncAvg:
		return "avg"
	}
	return "?"
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value float64
}

func (n *NumberNode) Eval() (float64, error) {
	return n.Value, nil
}

func (n *NumberNode) String() string {
	return formatNumber(n.Value)
}

func (n *NumberNode) Clone() Expr {
	return &NumberNode{Value: n.Value}
}

func (n *NumberNode) Shift(dx, dy int) {}

func (n *NumberNode) Bind(s *Sheet) {}

func (n *NumberNode) isExpr() {}

// formatNumber renders without exponents so the text tokenizes back to the
// same value
func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CellRefNode references a single cell. the sheet association is
// non-owning and is replaced by Bind whenever the node moves between sheets.
type CellRefNode struct {
	Col    int
	Row    int
	AbsCol bool
	AbsRow bool
	sheet  *Sheet
}

// NewCellRef creates a reference to id, bound to s (which may be nil)
func NewCellRef(id CellID, absCol, absRow bool, s *Sheet) *CellRefNode {
	return &CellRefNode{
		Col:    id.Col,
		Row:    id.Row,
		AbsCol: absCol,
		AbsRow: absRow,
		sheet:  s,
	}
}

// Cell returns the referenced coordinates
func (n *CellRefNode) Cell() CellID {
	return CellID{Col: n.Col, Row: n.Row}
}

// Sheet returns the sheet the reference is bound to, or nil
func (n *CellRefNode) Sheet() *Sheet {
	return n.sheet
}

// Target returns the expression currently stored in the referenced slot
func (n *CellRefNode) Target() (Expr, error) {
	if n.sheet == nil {
		return nil, newEvalError(ErrUninitializedReference, n.String())
	}
	idx, err := n.sheet.Index(n.Col, n.Row)
	if err != nil {
		return nil, err
	}
	return n.sheet.cells[idx], nil
}

func (n *CellRefNode) Eval() (float64, error) {
	target, err := n.Target()
	if err != nil {
		return 0, err
	}
	return target.Eval()
}

func (n *CellRefNode) String() string {
	if n.Col < 1 || n.Row < 1 {
		return refMarker
	}
	col, row := "", ""
	if n.AbsCol {
		col = "$"
	}
	if n.AbsRow {
		row = "$"
	}
	return col + ColumnName(n.Col) + row + strconv.Itoa(n.Row)
}

func (n *CellRefNode) Clone() Expr {
	return n.clone()
}

func (n *CellRefNode) clone() *CellRefNode {
	c := *n
	return &c
}

func (n *CellRefNode) Shift(dx, dy int) {
	if !n.AbsRow {
		n.Row += dy
	}
	if !n.AbsCol {
		n.Col += dx
	}
}

func (n *CellRefNode) Bind(s *Sheet) {
	n.sheet = s
}

func (n *CellRefNode) isExpr() {}

// FunctionNode applies an aggregate to every cell of a range
type FunctionNode struct {
	Func  FuncKind
	Range Range
}

func (n *FunctionNode) Eval() (float64, error) {
	sheet, err := n.Range.resolve()
	if err != nil {
		return 0, err
	}
	offsets, err := n.Range.Offsets(sheet.width)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	count := 0
	for off := range offsets {
		v, err := sheet.cells[off].Eval()
		if err != nil {
			return 0, err
		}
		sum += v
		count++
	}
	return n.aggregate(sum, count), nil
}

// aggregate finishes a fold over the range. an empty average is NaN
func (n *FunctionNode) aggregate(sum float64, count int) float64 {
	switch n.Func {
	case FuncAvg:
		return sum / float64(count)
	default:
		return sum
	}
}

func (n *FunctionNode) String() string {
	return fmt.Sprintf("%s(%s)", n.Func, n.Range.String())
}

func (n *FunctionNode) Clone() Expr {
	return &FunctionNode{Func: n.Func, Range: n.Range.Clone()}
}

func (n *FunctionNode) Shift(dx, dy int) {
	n.Range.Shift(dx, dy)
}

func (n *FunctionNode) Bind(s *Sheet) {
	n.Range.Bind(s)
}

func (n *FunctionNode) isExpr() {}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryOpNode) Eval() (float64, error) {
	left, err := n.Left.Eval()
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval()
	if err != nil {
		return 0, err
	}
	return n.Op.apply(left, right), nil
}

// apply combines two operands. division by zero follows IEEE 754
func (op BinaryOp) apply(left, right float64) float64 {
	switch op {
	case BinOpAdd:
		return left + right
	case BinOpSubtract:
		return left - right
	case BinOpMultiply:
		return left * right
	case BinOpDivide:
		return left / right
	}
	return math.NaN()
}

func (n *BinaryOpNode) String() string {
	return fmt.Sprintf("(%s%s%s)", n.Left.String(), n.Op, n.Right.String())
}

func (n *BinaryOpNode) Clone() Expr {
	return &BinaryOpNode{
		Op:    n.Op,
		Left:  n.Left.Clone(),
		Right: n.Right.Clone(),
	}
}

func (n *BinaryOpNode) Shift(dx, dy int) {
	n.Left.Shift(dx, dy)
	n.Right.Shift(dx, dy)
}

func (n *BinaryOpNode) Bind(s *Sheet) {
	n.Left.Bind(s)
	n.Right.Bind(s)
}

func (n *BinaryOpNode) isExpr() {}

// References lists every cell an expression reads directly, in the order
// they appear. ranges are expanded row by row.
func References(e Expr) []CellID {
	var refs []CellID
	collectReferences(e, &refs)
	return refs
}

func collectReferences(e Expr, refs *[]CellID) {
	switch n := e.(type) {
	case *CellRefNode:
		*refs = append(*refs, n.Cell())

	case *FunctionNode:
		// only the part of the range that can exist on a sheet
		tl, br := n.Range.TopLeft, n.Range.BottomRight
		for row := max(tl.Row, 1); row <= br.Row; row++ {
			for col := max(tl.Col, 1); col <= br.Col; col++ {
				*refs = append(*refs, CellID{Col: col, Row: row})
			}
		}

	case *BinaryOpNode:
		collectReferences(n.Left, refs)
		collectReferences(n.Right, refs)

	case *NumberNode:
		// literal nodes don't have references
	}
}
