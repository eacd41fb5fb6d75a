package gridcalc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// refMarker is how a reference that has left the sheet renders. it parses
// back into a reference that fails with ErrIndexOutOfRange.
const refMarker = "#ref!"

// maxColumn bounds column numbers so they fit an int on every platform
const maxColumn = math.MaxInt32

// evaluation failure causes. an *EvalError always unwraps to one of these
var (
	ErrUninitializedReference = errors.New("uninitialized reference")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrCyclicReference        = errors.New("cyclic reference")
)

// SyntaxError is raised while parsing formula or cell text. it never
// leaves a partially built expression behind
type SyntaxError struct {
	Message string
	Pos     int // rune offset in the input, -1 when unknown
}

func (e *SyntaxError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Message)
	}
	return "syntax error: " + e.Message
}

func newSyntaxError(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// EvalError is raised while evaluating an expression. Cell names the cell
// that could not be resolved, if any.
type EvalError struct {
	Cell string
	Err  error
}

func (e *EvalError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("evaluation error: %s: %v", e.Cell, e.Err)
	}
	return fmt.Sprintf("evaluation error: %v", e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func newEvalError(cause error, cell string) *EvalError {
	return &EvalError{
		Cell: cell,
		Err:  cause,
	}
}

// CellID addresses a single cell. both coordinates are 1-based.
type CellID struct {
	Col int
	Row int
}

// String renders the canonical lowercase address, e.g. "ab12". coordinates
// below 1 render as "#ref!".
func (c CellID) String() string {
	if c.Col < 1 || c.Row < 1 {
		return refMarker
	}
	return ColumnName(c.Col) + strconv.Itoa(c.Row)
}

// ParseCellID parses "[letters][digits]" (case-insensitive) into a CellID.
func ParseCellID(text string) (CellID, error) {
	// find where letters end and numbers begin
	letterEnd := 0
	for letterEnd < len(text) && isLetter(text[letterEnd]) {
		letterEnd++
	}

	if letterEnd == 0 {
		return CellID{}, newSyntaxError(-1, "invalid cell: %q", text)
	}
	if letterEnd == len(text) {
		return CellID{}, newSyntaxError(-1, "invalid cell: %q has no row", text)
	}

	col, err := ColumnNumber(text[:letterEnd])
	if err != nil {
		return CellID{}, err
	}

	rowStr := text[letterEnd:]
	for i := 0; i < len(rowStr); i++ {
		if !isDigit(rowStr[i]) {
			return CellID{}, newSyntaxError(-1, "invalid cell: %q", text)
		}
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return CellID{}, newSyntaxError(-1, "invalid row number: %s", rowStr)
	}
	if row < 1 {
		return CellID{}, newSyntaxError(-1, "row number must be positive: %d", row)
	}

	return CellID{Col: col, Row: row}, nil
}

// ColumnNumber converts column letters to a 1-based column number
// (a=1, z=26, aa=27, ...). letters are case-insensitive.
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, newSyntaxError(-1, "invalid column: empty")
	}
	col := 0
	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if !isLetter(ch) {
			return 0, newSyntaxError(-1, "invalid column: %q", letters)
		}
		if col > (maxColumn-26)/26 {
			return 0, newSyntaxError(-1, "invalid column: %q is too large", letters)
		}
		col = col*26 + int(toLower(ch)-'a') + 1
	}
	return col, nil
}

// ColumnName is the inverse of ColumnNumber. it returns lowercase letters,
// and an empty string for n < 1.
func ColumnName(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('a' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 32
	}
	return ch
}
