package gridcalc

import (
	"strings"

	"github.com/xuri/efp"
)

// excelFunctions maps Excel function names onto the native aggregates
var excelFunctions = map[string]string{
	"SUM":     "sum",
	"AVERAGE": "avg",
	"AVG":     "avg",
}

// ParseExcel parses a formula written in Excel syntax, e.g.
// "=SUM(A1:B2)*$C$1", into an expression bound to s. the leading "=" is
// optional. only the constructs the native grammar can express are
// accepted: numbers, cell references, SUM/AVERAGE over a single range,
// parentheses and the four arithmetic operators.
func ParseExcel(formula string, s *Sheet) (Expr, error) {
	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if formula == "" {
		return nil, newSyntaxError(0, "empty expression")
	}

	text, err := translateExcel(formula)
	if err != nil {
		return nil, err
	}
	return Parse(text, s)
}

// translateExcel re-emits efp tokens in the native grammar
func translateExcel(formula string) (string, error) {
	parser := efp.ExcelParser()
	tokens := parser.Parse(formula)

	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.TType {
		case efp.TokenTypeFunction:
			if tok.TSubType == efp.TokenSubTypeStop {
				parts = append(parts, ")")
				continue
			}
			name, ok := excelFunctions[strings.ToUpper(tok.TValue)]
			if !ok {
				return "", newSyntaxError(-1, "unknown function: %s", tok.TValue)
			}
			parts = append(parts, name+"(")

		case efp.TokenTypeSubexpression:
			if tok.TSubType == efp.TokenSubTypeStart {
				parts = append(parts, "(")
			} else {
				parts = append(parts, ")")
			}

		case efp.TokenTypeArgument:
			return "", newSyntaxError(-1, "functions take a single range argument")

		case efp.TokenTypeOperatorPrefix:
			switch tok.TValue {
			case "-":
				parts = append(parts, "-")
			case "+":
				// unary plus is a no-op
			default:
				return "", newSyntaxError(-1, "unsupported operator: %s", tok.TValue)
			}

		case efp.TokenTypeOperatorInfix:
			switch tok.TValue {
			case "+", "-", "*", "/":
				parts = append(parts, tok.TValue)
			default:
				return "", newSyntaxError(-1, "unsupported operator: %s", tok.TValue)
			}

		case efp.TokenTypeOperand:
			switch tok.TSubType {
			case efp.TokenSubTypeNumber:
				parts = append(parts, tok.TValue)
			case efp.TokenSubTypeRange:
				if strings.Contains(tok.TValue, "!") {
					return "", newSyntaxError(-1, "sheet references are not supported: %s", tok.TValue)
				}
				parts = append(parts, strings.ToLower(tok.TValue))
			default:
				return "", newSyntaxError(-1, "unsupported operand: %s", tok.TValue)
			}

		default:
			// whitespace tokens carry no meaning
			if strings.TrimSpace(tok.TValue) != "" {
				return "", newSyntaxError(-1, "unsupported token: %s", tok.TValue)
			}
		}
	}

	return strings.Join(parts, " "), nil
}
