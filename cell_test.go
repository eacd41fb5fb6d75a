package gridcalc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetters(t *testing.T) {
	tests := []struct {
		letters string
		number  int
	}{
		{"a", 1},
		{"z", 26},
		{"aa", 27},
		{"ab", 28},
		{"az", 52},
		{"ba", 53},
		{"zz", 702},
		{"aaa", 703},
	}

	for _, tt := range tests {
		t.Run(tt.letters, func(t *testing.T) {
			n, err := ColumnNumber(tt.letters)
			require.NoError(t, err)
			assert.Equal(t, tt.number, n)
			assert.Equal(t, tt.letters, ColumnName(tt.number))
		})
	}

	t.Run("UpperCase", func(t *testing.T) {
		n, err := ColumnNumber("AB")
		require.NoError(t, err)
		assert.Equal(t, 28, n)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		for n := 1; n <= 2000; n++ {
			got, err := ColumnNumber(ColumnName(n))
			require.NoError(t, err)
			require.Equal(t, n, got)
		}
	})

	t.Run("NonPositive", func(t *testing.T) {
		assert.Equal(t, "", ColumnName(0))
		assert.Equal(t, "", ColumnName(-3))
	})

	t.Run("TooLarge", func(t *testing.T) {
		n, err := ColumnNumber("zzzzzz")
		require.NoError(t, err)
		assert.Equal(t, 321272406, n)

		_, err = ColumnNumber("zzzzzzzzzzzzzz")
		var syntaxErr *SyntaxError
		assert.True(t, errors.As(err, &syntaxErr))
		_, err = ParseCellID("aaaaaaaa1")
		assert.True(t, errors.As(err, &syntaxErr))
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, letters := range []string{"", "a1", "$a"} {
			_, err := ColumnNumber(letters)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "ColumnNumber(%q)", letters)
		}
	})
}

func TestParseCellID(t *testing.T) {
	valid := []struct {
		input string
		want  CellID
	}{
		{"a1", CellID{Col: 1, Row: 1}},
		{"B3", CellID{Col: 2, Row: 3}},
		{"aa10", CellID{Col: 27, Row: 10}},
		{"Zz702", CellID{Col: 702, Row: 702}},
	}
	for _, tt := range valid {
		t.Run(tt.input, func(t *testing.T) {
			id, err := ParseCellID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}

	invalid := []string{"", "a", "1", "1a", "a0", "a-1", "a1b", "a 1", "$a1"}
	for _, input := range invalid {
		t.Run("invalid/"+input, func(t *testing.T) {
			_, err := ParseCellID(input)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "expected syntax error for %q, got %v", input, err)
		})
	}
}

func TestCellIDString(t *testing.T) {
	assert.Equal(t, "a1", CellID{Col: 1, Row: 1}.String())
	assert.Equal(t, "ab12", CellID{Col: 28, Row: 12}.String())
	assert.Equal(t, "#ref!", CellID{Col: 0, Row: 3}.String())
	assert.Equal(t, "#ref!", CellID{Col: 2, Row: -1}.String())
}

func TestErrorTypes(t *testing.T) {
	t.Run("EvalErrorUnwraps", func(t *testing.T) {
		err := error(newEvalError(ErrCyclicReference, "a1"))
		assert.True(t, errors.Is(err, ErrCyclicReference))
		assert.False(t, errors.Is(err, ErrIndexOutOfRange))
		assert.Equal(t, "evaluation error: a1: cyclic reference", err.Error())
	})

	t.Run("SyntaxErrorMessage", func(t *testing.T) {
		assert.Equal(t, "syntax error at 3: unmatched parenthesis", newSyntaxError(3, "unmatched parenthesis").Error())
		assert.Equal(t, "syntax error: bad", newSyntaxError(-1, "bad").Error())
	})
}
