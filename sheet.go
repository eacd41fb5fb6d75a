package gridcalc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// only the codes this package and its shell actually raise are defined.
type AppErrorCode int

const (
	// InvalidArgument indicates client specified an invalid argument.
	InvalidArgument AppErrorCode = 3

	// Unimplemented indicates operation is not implemented or not
	// supported.
	Unimplemented AppErrorCode = 12
)

// AppError represents errors at the application level (not formula
// syntax or evaluation errors)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Sheet is a fixed-size grid of expressions stored row-major. every slot
// always holds an expression, and the sheet exclusively owns them.
type Sheet struct {
	id     uuid.UUID
	width  int
	height int
	cells  []Expr
}

// NewSheet creates a width x height sheet with every cell set to fill
func NewSheet(width, height int, fill float64) (*Sheet, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	s := &Sheet{
		id:     uuid.New(),
		width:  width,
		height: height,
		cells:  newCells(width, height, fill),
	}
	sheetLog(s).Debug("sheet created")
	return s, nil
}

func checkDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("invalid sheet size %dx%d", width, height))
	}
	return nil
}

// newCells allocates a separate literal per slot, slot identity matters to
// cycle detection
func newCells(width, height int, fill float64) []Expr {
	cells := make([]Expr, width*height)
	for i := range cells {
		cells[i] = &NumberNode{Value: fill}
	}
	return cells
}

func (s *Sheet) Width() int {
	return s.width
}

func (s *Sheet) Height() int {
	return s.height
}

// ID distinguishes sheets, including a sheet from its clones
func (s *Sheet) ID() uuid.UUID {
	return s.id
}

// Index converts 1-based coordinates to a slot offset
func (s *Sheet) Index(col, row int) (int, error) {
	if col < 1 || row < 1 || col > s.width || row > s.height {
		return 0, newEvalError(ErrIndexOutOfRange, CellID{Col: col, Row: row}.String())
	}
	return (row-1)*s.width + col - 1, nil
}

// Coordinates converts a slot offset back to 1-based coordinates
func (s *Sheet) Coordinates(offset int) (col, row int, err error) {
	if offset < 0 || offset >= len(s.cells) {
		return 0, 0, newEvalError(ErrIndexOutOfRange, fmt.Sprintf("offset %d", offset))
	}
	return offset%s.width + 1, offset/s.width + 1, nil
}

// Get returns the expression stored at (col, row)
func (s *Sheet) Get(col, row int) (Expr, error) {
	idx, err := s.Index(col, row)
	if err != nil {
		return nil, err
	}
	return s.cells[idx], nil
}

// Set stores e at (col, row), binding it to the sheet. the sheet takes
// ownership of e. a nil e stores 0.
func (s *Sheet) Set(col, row int, e Expr) error {
	idx, err := s.Index(col, row)
	if err != nil {
		return err
	}
	if e == nil {
		e = &NumberNode{}
	}
	e.Bind(s)
	s.cells[idx] = e
	return nil
}

func (s *Sheet) GetCell(id CellID) (Expr, error) {
	return s.Get(id.Col, id.Row)
}

func (s *Sheet) SetCell(id CellID, e Expr) error {
	return s.Set(id.Col, id.Row, e)
}

// SetFormula parses text and stores it at id. the cell is untouched if
// either step fails.
func (s *Sheet) SetFormula(id CellID, text string) error {
	if _, err := s.Index(id.Col, id.Row); err != nil {
		return err
	}
	e, err := Parse(text, s)
	if err != nil {
		return err
	}
	return s.SetCell(id, e)
}

// Formulas renders every cell's expression, row by row
func (s *Sheet) Formulas() [][]string {
	rows := make([][]string, s.height)
	for row := 0; row < s.height; row++ {
		line := make([]string, s.width)
		for col := 0; col < s.width; col++ {
			line[col] = s.cells[row*s.width+col].String()
		}
		rows[row] = line
	}
	return rows
}

// Resize changes the dimensions. cells inside both the old and new bounds
// keep their expressions, new cells get fill. the sheet is unchanged if an
// error is returned.
func (s *Sheet) Resize(width, height int, fill float64) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}

	cells := newCells(width, height, fill)
	for row := 0; row < min(height, s.height); row++ {
		for col := 0; col < min(width, s.width); col++ {
			c := s.cells[row*s.width+col].Clone()
			c.Bind(s)
			cells[row*width+col] = c
		}
	}

	sheetLog(s).WithFields(logrus.Fields{
		"newWidth":  width,
		"newHeight": height,
	}).Debug("sheet resized")

	s.width, s.height, s.cells = width, height, cells
	return nil
}

// Clone returns a deep copy with its own id. references in the copy point
// at the copy.
func (s *Sheet) Clone() *Sheet {
	c := &Sheet{
		id:     uuid.New(),
		width:  s.width,
		height: s.height,
		cells:  make([]Expr, len(s.cells)),
	}
	for i, e := range s.cells {
		dup := e.Clone()
		dup.Bind(c)
		c.cells[i] = dup
	}
	sheetLog(c).WithField("source", s.id.String()).Debug("sheet cloned")
	return c
}

// Fill copies the expression at src into every cell of the range a:b,
// shifting relative references by each target's distance from src. src may
// lie inside the range.
func (s *Sheet) Fill(src, a, b CellID) error {
	srcIdx, err := s.Index(src.Col, src.Row)
	if err != nil {
		return err
	}
	rng := NewRange(NewCellRef(a, false, false, s), NewCellRef(b, false, false, s))
	if _, err := rng.resolve(); err != nil {
		return err
	}
	offsets, err := rng.Offsets(s.width)
	if err != nil {
		return err
	}

	source := s.cells[srcIdx].Clone()
	for off := range offsets {
		col, row, err := s.Coordinates(off)
		if err != nil {
			return err
		}
		c := source.Clone()
		c.Shift(col-src.Col, row-src.Row)
		c.Bind(s)
		s.cells[off] = c
	}

	sheetLog(s).WithFields(logrus.Fields{
		"source": src.String(),
		"range":  rng.String(),
	}).Debug("range filled")
	return nil
}

// RunnableSheet provides a chainable interface for sheet operations. it
// wraps a Sheet and keeps the first error, later calls become no-ops.
type RunnableSheet struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunnableSheet creates a new RunnableSheet. printLn is required and
// is used by Log and CheckError
func NewRunnableSheet(width, height int, fill float64, printLn func(string)) *RunnableSheet {
	sheet, err := NewSheet(width, height, fill)
	return &RunnableSheet{
		sheet:   sheet,
		err:     err,
		printLn: printLn,
	}
}

// Set stores a number at cell (chainable)
func (r *RunnableSheet) Set(cell string, value float64) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	id, err := ParseCellID(cell)
	if err != nil {
		r.err = err
		return r
	}
	r.err = r.sheet.SetCell(id, &NumberNode{Value: value})
	return r
}

// SetFormula parses and stores a formula at cell (chainable)
func (r *RunnableSheet) SetFormula(cell, text string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	id, err := ParseCellID(cell)
	if err != nil {
		r.err = err
		return r
	}
	r.err = r.sheet.SetFormula(id, text)
	return r
}

// Fill copies src over the range from:to (chainable)
func (r *RunnableSheet) Fill(src, from, to string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	ids := make([]CellID, 0, 3)
	for _, text := range []string{src, from, to} {
		id, err := ParseCellID(text)
		if err != nil {
			r.err = err
			return r
		}
		ids = append(ids, id)
	}
	r.err = r.sheet.Fill(ids[0], ids[1], ids[2])
	return r
}

// Resize changes the sheet dimensions (chainable)
func (r *RunnableSheet) Resize(width, height int, fill float64) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.sheet.Resize(width, height, fill)
	return r
}

// Value evaluates a single cell. example:
// v := NewRunnableSheet(2, 2, 1, t.Log).SetFormula("b2", "sum(a1:a2)").Value("b2")
func (r *RunnableSheet) Value(cell string) float64 {
	if r.err != nil {
		return 0
	}
	id, err := ParseCellID(cell)
	if err != nil {
		r.err = err
		return 0
	}
	v, err := r.sheet.EvaluateCell(id)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

// Log prints the formula and value of a cell (chainable)
func (r *RunnableSheet) Log(cell string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	id, err := ParseCellID(cell)
	if err != nil {
		r.err = err
		return r
	}
	e, err := r.sheet.GetCell(id)
	if err != nil {
		r.err = err
		return r
	}
	v, err := r.sheet.EvaluateCell(id)
	if err != nil {
		r.printLn(fmt.Sprintf("%s: %s = #ERR (%v)", id, e, err))
		return r
	}
	r.printLn(fmt.Sprintf("%s: %s = %s", id, e, formatNumber(v)))
	return r
}

// Run returns the sheet and the first error recorded
func (r *RunnableSheet) Run() (*Sheet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sheet, nil
}

// Error returns the current error state
func (r *RunnableSheet) Error() error {
	return r.err
}

// CheckError logs the current error using the printLn function (chainable)
func (r *RunnableSheet) CheckError() *RunnableSheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Sheet returns the underlying sheet. use with caution as it bypasses
// error tracking.
func (r *RunnableSheet) Sheet() *Sheet {
	return r.sheet
}

// Reset clears the error state (chainable)
func (r *RunnableSheet) Reset() *RunnableSheet {
	if r.sheet != nil {
		r.err = nil
	}
	return r
}

// Then allows conditional execution based on current error state
func (r *RunnableSheet) Then(fn func(*RunnableSheet) *RunnableSheet) *RunnableSheet {
	if r.err != nil {
		return r // skip if there's an error
	}
	return fn(r)
}

// Must panics if there's an error (chainable)
func (r *RunnableSheet) Must() *RunnableSheet {
	if r.err != nil {
		panic(r.err)
	}
	return r
}
