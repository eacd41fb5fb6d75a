package gridcalc

import (
	"fmt"
	"testing"
)

func BenchmarkLargeCellPopulation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s, _ := NewSheet(26, 100, 0)
		for row := 1; row <= 100; row++ {
			for col := 1; col <= 26; col++ {
				s.Set(col, row, &NumberNode{Value: float64(row * col)})
			}
		}
	}
}

func BenchmarkFormulaDependencyChain(b *testing.B) {
	s, _ := NewSheet(1, 100, 1)
	for row := 2; row <= 100; row++ {
		s.SetFormula(CellID{Col: 1, Row: row}, fmt.Sprintf("a%d+1", row-1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Evaluate(1, 100)
	}
}

func BenchmarkWideDependencyFanOut(b *testing.B) {
	s, _ := NewSheet(2, 500, 0)
	s.Set(1, 1, &NumberNode{Value: 100})
	for row := 2; row <= 500; row++ {
		s.SetFormula(CellID{Col: 2, Row: row}, "$a$1*2")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(1, 1, &NumberNode{Value: float64(i)})
		s.Values()
	}
}

func BenchmarkLargeRangeSUM(b *testing.B) {
	s, _ := NewSheet(2, 1000, 0)
	for row := 1; row <= 1000; row++ {
		s.Set(1, row, &NumberNode{Value: float64(row)})
	}
	s.SetFormula(CellID{Col: 2, Row: 1}, "sum(a1:a1000)")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Evaluate(2, 1)
	}
}

func BenchmarkRawRangeSUM(b *testing.B) {
	s, _ := NewSheet(2, 1000, 1)
	s.SetFormula(CellID{Col: 2, Row: 1}, "sum(a1:a1000)")
	e, _ := s.Get(2, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Eval()
	}
}

func BenchmarkComplexNestedFormulas(b *testing.B) {
	s, _ := NewSheet(3, 20, 0)
	for row := 1; row <= 20; row++ {
		s.Set(1, row, &NumberNode{Value: float64(row)})
		s.Set(2, row, &NumberNode{Value: float64(row * 2)})
	}
	s.SetFormula(CellID{Col: 3, Row: 1}, "(sum(a1:a20)+avg(b1:b20))*(a1-b2/(a3+1))-sum(a1:b10)/2")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Evaluate(3, 1)
	}
}

func BenchmarkCircularReferenceDetection(b *testing.B) {
	s, _ := NewSheet(1, 100, 0)
	for row := 1; row < 100; row++ {
		s.SetFormula(CellID{Col: 1, Row: row}, fmt.Sprintf("a%d", row+1))
	}
	s.SetFormula(CellID{Col: 1, Row: 100}, "a1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Evaluate(1, 1)
	}
}

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Parse("sum($a$1:c10)*(b2-a3/4)+-d5", nil)
	}
}

func BenchmarkFill(b *testing.B) {
	s, _ := NewSheet(26, 100, 1)
	s.SetFormula(CellID{Col: 1, Row: 1}, "b2+$c$3*sum(a2:b3)")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Fill(CellID{Col: 1, Row: 1}, CellID{Col: 1, Row: 1}, CellID{Col: 26, Row: 100})
	}
}

func BenchmarkResize(b *testing.B) {
	s, _ := NewSheet(26, 100, 1)
	s.SetFormula(CellID{Col: 1, Row: 1}, "b2+c3")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			s.Resize(30, 120, 0)
		} else {
			s.Resize(26, 100, 0)
		}
	}
}
