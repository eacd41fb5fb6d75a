package gridcalc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularReferences(t *testing.T) {
	t.Run("SelfReference", func(t *testing.T) {
		NewSheetTestCase(t, "Cell refers to itself", 2, 2, 0).
			SetFormula("a1", "a1").
			AssertCellErr("a1", ErrCyclicReference).
			End()
	})

	t.Run("TwoCells", func(t *testing.T) {
		NewSheetTestCase(t, "Two cell loop", 2, 2, 0).
			SetFormula("a1", "b1+1").
			SetFormula("b1", "a1+1").
			AssertCellErr("a1", ErrCyclicReference).
			AssertCellErr("b1", ErrCyclicReference).
			End()
	})

	t.Run("ThroughRange", func(t *testing.T) {
		NewSheetTestCase(t, "Range covers its own cell", 1, 3, 1).
			SetFormula("a1", "sum(a1:a3)").
			AssertCellErr("a1", ErrCyclicReference).
			End()
	})

	t.Run("DeepChain", func(t *testing.T) {
		NewSheetTestCase(t, "Deep circular chain", 1, 5, 0).
			SetFormula("a1", "a2").
			SetFormula("a2", "a3").
			SetFormula("a3", "a4").
			SetFormula("a4", "a5").
			SetFormula("a5", "a1").
			AssertCellErr("a1", ErrCyclicReference).
			AssertCellErr("a3", ErrCyclicReference).
			End()
	})

	t.Run("ReportsCell", func(t *testing.T) {
		sheet, err := NewSheet(2, 1, 0)
		require.NoError(t, err)
		require.NoError(t, sheet.SetFormula(CellID{Col: 1, Row: 1}, "b1"))
		require.NoError(t, sheet.SetFormula(CellID{Col: 2, Row: 1}, "a1*2"))

		_, err = sheet.Evaluate(1, 1)
		var evalErr *EvalError
		require.True(t, errors.As(err, &evalErr))
		assert.Equal(t, "a1", evalErr.Cell)
	})
}

func TestSharedDependencies(t *testing.T) {
	NewSheetTestCase(t, "Diamond is not a cycle", 2, 2, 0).
		Set("a1", 3).
		SetFormula("b1", "a1*2").
		SetFormula("a2", "a1+b1").
		SetFormula("b2", "a2+b1+a1+sum(a1:b1)").
		AssertCellEq("b2", 9+6+3+9).
		End()

	NewSheetTestCase(t, "Repeated reference", 2, 1, 0).
		Set("a1", 2).
		SetFormula("b1", "a1*a1*a1").
		AssertCellEq("b1", 8).
		End()
}

func TestEvaluateEdgeCases(t *testing.T) {
	t.Run("UnboundReference", func(t *testing.T) {
		_, err := Evaluate(mustParse(t, "a1", nil), nil)
		assert.ErrorIs(t, err, ErrUninitializedReference)
	})

	t.Run("DivisionByZero", func(t *testing.T) {
		sheet, err := NewSheet(2, 1, 0)
		require.NoError(t, err)
		require.NoError(t, sheet.SetFormula(CellID{Col: 1, Row: 1}, "b1/b1"))
		v, err := sheet.Evaluate(1, 1)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v))
	})

	t.Run("PathRestored", func(t *testing.T) {
		sheet, err := NewSheet(2, 2, 1)
		require.NoError(t, err)
		require.NoError(t, sheet.SetFormula(CellID{Col: 2, Row: 2}, "sum(a1:b1)+a2"))
		require.NoError(t, sheet.SetFormula(CellID{Col: 2, Row: 1}, "b1"))

		e, err := sheet.Get(2, 2)
		require.NoError(t, err)
		path := NewEvalPath(e)
		_, err = Evaluate(e, path)
		assert.ErrorIs(t, err, ErrCyclicReference)
		assert.Equal(t, 1, path.Len())
		assert.True(t, path.Contains(e))
	})

	t.Run("RawEvalMatchesGuarded", func(t *testing.T) {
		sheet, err := NewSheet(3, 3, 2)
		require.NoError(t, err)
		require.NoError(t, sheet.SetFormula(CellID{Col: 3, Row: 3}, "avg(a1:b2)*sum(a3:b3)-c1/$c$2"))

		e, err := sheet.Get(3, 3)
		require.NoError(t, err)
		raw, err := e.Eval()
		require.NoError(t, err)
		guarded, err := sheet.Evaluate(3, 3)
		require.NoError(t, err)
		assert.Equal(t, raw, guarded)
		assert.Equal(t, 7.0, guarded)
	})
}

func TestEvalPath(t *testing.T) {
	a := &NumberNode{Value: 1}
	b := &NumberNode{Value: 1}

	path := NewEvalPath(a)
	assert.True(t, path.Contains(a))
	assert.False(t, path.Contains(b))
	assert.Equal(t, 1, path.Len())

	path.push(b)
	assert.Equal(t, 2, path.Len())
	path.pop()
	path.pop()
	path.pop()
	assert.Equal(t, 0, path.Len())
	assert.False(t, path.Contains(a))
}
