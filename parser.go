package gridcalc

import "strings"

// Parser parses tokens into an AST. grammar, lowest precedence first:
//
//	expression → factor (("+"|"-") factor)*
//	factor     → unary (("*"|"/") unary)*
//	unary      → "-" unary | function | primary
//	function   → STRING "(" cellref ":" cellref ")"
//	primary    → NUMBER | "(" expression ")" | cellref
//	cellref    → "$"? STRING ("$" NUMBER)? | "#ref!"
type Parser struct {
	tokens []Token
	pos    int
	sheet  *Sheet
}

// NewParser creates a parser over tokens. cell references it produces are
// bound to sheet, which may be nil.
func NewParser(tokens []Token, sheet *Sheet) *Parser {
	return &Parser{
		tokens: tokens,
		sheet:  sheet,
	}
}

// Parse tokenizes and parses text into an expression bound to s
func Parse(text string, s *Sheet) (Expr, error) {
	return NewParser(Tokenize(text), s).Parse()
}

// Parse parses the whole token list. on error no partial expression is
// returned.
func (p *Parser) Parse() (Expr, error) {
	if len(p.tokens) == 0 {
		return nil, newSyntaxError(0, "empty expression")
	}

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	// ensure we've consumed all tokens
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return nil, newSyntaxError(tok.Pos, "unexpected token after expression: %s", tok.Value)
	}

	return node, nil
}

// parseAddition handles addition and subtraction
func (p *Parser) parseAddition() (Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		var op BinaryOp
		switch p.tokens[p.pos].Type {
		case TokenPlus:
			op = BinOpAdd
		case TokenMinus:
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		var op BinaryOp
		switch p.tokens[p.pos].Type {
		case TokenStar:
			op = BinOpMultiply
		case TokenSlash:
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseUnary handles negation, which is stored as a multiplication by -1
func (p *Parser) parseUnary() (Expr, error) {
	if p.pos >= len(p.tokens) {
		return nil, newSyntaxError(p.endPos(), "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	if tok.Type == TokenMinus {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryOpNode{
			Op:    BinOpMultiply,
			Left:  &NumberNode{Value: -1},
			Right: operand,
		}, nil
	}

	// a name directly followed by "(" is a function call, anything else
	// falls through to primary
	if tok.Type == TokenString && p.peekType(1) == TokenLeftParen {
		return p.parseFunctionCall()
	}

	return p.parsePrimary()
}

// parsePrimary handles numbers, parenthesized expressions and cell references
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenNumber:
		p.pos++
		return &NumberNode{Value: tok.Number}, nil

	case TokenLeftParen:
		p.pos++
		expr, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRightParen {
			return nil, newSyntaxError(tok.Pos, "unmatched parenthesis")
		}
		p.pos++
		return expr, nil

	case TokenDollar, TokenString:
		return p.parseCellReference()
	}

	return nil, newSyntaxError(tok.Pos, "expected operand, got %s", tok.Value)
}

// parseFunctionCall parses name(cellref:cellref)
func (p *Parser) parseFunctionCall() (Expr, error) {
	nameTok := p.tokens[p.pos]
	kind, ok := LookupFunc(nameTok.Value)
	if !ok {
		return nil, newSyntaxError(nameTok.Pos, "unknown function: %s", nameTok.Value)
	}
	p.pos += 2 // consume name and "("

	start, err := p.parseRangeCorner()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenColon, "malformed range in %s: expected ':'", nameTok.Value); err != nil {
		return nil, err
	}
	end, err := p.parseRangeCorner()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen, "unmatched parenthesis in %s", nameTok.Value); err != nil {
		return nil, err
	}

	return &FunctionNode{Func: kind, Range: NewRange(start, end)}, nil
}

func (p *Parser) parseRangeCorner() (*CellRefNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, newSyntaxError(p.endPos(), "malformed range: unexpected end of expression")
	}
	switch p.tokens[p.pos].Type {
	case TokenDollar, TokenString:
		return p.parseCellReference()
	}
	tok := p.tokens[p.pos]
	return nil, newSyntaxError(tok.Pos, "malformed range: expected cell, got %s", tok.Value)
}

// parseCellReference parses "$"? STRING ("$" NUMBER)?. a leading "$" makes
// the column absolute, "$" before the row makes the row absolute.
func (p *Parser) parseCellReference() (*CellRefNode, error) {
	absCol := false
	if p.tokens[p.pos].Type == TokenDollar {
		absCol = true
		p.pos++
	}

	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenString {
		return nil, newSyntaxError(p.posOrEnd(), "dangling '$'")
	}
	tok := p.tokens[p.pos]
	p.pos++

	text := tok.Value
	if strings.EqualFold(text, refMarker) {
		if absCol {
			return nil, newSyntaxError(tok.Pos, "invalid cell: $%s", text)
		}
		return lostRef(p.sheet), nil
	}

	absRow := false
	if p.peekType(0) == TokenDollar {
		for i := 0; i < len(text); i++ {
			if !isLetter(text[i]) {
				return nil, newSyntaxError(tok.Pos, "invalid cell: %q", text)
			}
		}
		p.pos++
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenNumber {
			return nil, newSyntaxError(p.posOrEnd(), "dangling '$' after %s", text)
		}
		text += p.tokens[p.pos].Value
		absRow = true
		p.pos++
	}

	id, err := ParseCellID(text)
	if err != nil {
		// re-anchor the message at the token
		if se, ok := err.(*SyntaxError); ok {
			return nil, newSyntaxError(tok.Pos, "%s", se.Message)
		}
		return nil, err
	}

	return NewCellRef(id, absCol, absRow, p.sheet), nil
}

// lostRef is the reference "#ref!" parses to. both coordinates are 0 and
// absolute so shifting never brings it back onto the sheet.
func lostRef(s *Sheet) *CellRefNode {
	return &CellRefNode{AbsCol: true, AbsRow: true, sheet: s}
}

// expect consumes a token of type tt or fails with the given message
func (p *Parser) expect(tt TokenType, format string, args ...any) error {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != tt {
		return newSyntaxError(p.posOrEnd(), format, args...)
	}
	p.pos++
	return nil
}

// peekType returns the type of the token offset positions ahead, or -1
func (p *Parser) peekType(offset int) TokenType {
	if p.pos+offset >= len(p.tokens) {
		return -1
	}
	return p.tokens[p.pos+offset].Type
}

func (p *Parser) posOrEnd() int {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Pos
	}
	return p.endPos()
}

// endPos is the rune offset just past the last token
func (p *Parser) endPos() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Pos + len([]rune(last.Value))
}
