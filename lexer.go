package gridcalc

import (
	"strconv"
)

// TokenType represents the different kinds of tokens in a formula
type TokenType int

const (
	TokenMinus TokenType = iota
	TokenPlus
	TokenSlash
	TokenStar
	TokenLeftParen
	TokenRightParen
	TokenColon
	TokenDollar
	TokenNumber
	TokenString
)

var tokenNames = map[TokenType]string{
	TokenMinus:      "MINUS",
	TokenPlus:       "PLUS",
	TokenSlash:      "SLASH",
	TokenStar:       "STAR",
	TokenLeftParen:  "LEFT_PAREN",
	TokenRightParen: "RIGHT_PAREN",
	TokenColon:      "COLON",
	TokenDollar:     "DOLLAR",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// character classification constants. slightly easier to read.
const (
	charTab      = '\t'
	charNewline  = '\n'
	charReturn   = '\r'
	charSpace    = ' '
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
	charColon    = ':'
	charDollar   = '$'
)

// punctuation maps single-character tokens to their type
var punctuation = map[rune]TokenType{
	charMinus:    TokenMinus,
	charPlus:     TokenPlus,
	charSlash:    TokenSlash,
	charAsterisk: TokenStar,
	charLParen:   TokenLeftParen,
	charRParen:   TokenRightParen,
	charColon:    TokenColon,
	charDollar:   TokenDollar,
}

// Token represents a lexical token with position information. Number is
// only meaningful for TokenNumber.
type Token struct {
	Type   TokenType
	Value  string
	Number float64
	Pos    int // rune position in input
}

// Lexer tokenizes formula text. it never fails: anything that is not
// punctuation or a well-formed number becomes a STRING token and is left
// for the parser to reject.
type Lexer struct {
	runes    []rune
	pos      int
	buffer   []rune
	bufStart int
	tokens   []Token
}

// NewLexer creates a new lexer for the given formula input
func NewLexer(input string) *Lexer {
	return &Lexer{
		runes:  []rune(input),
		tokens: []Token{},
	}
}

// Tokenize is shorthand for NewLexer(input).Tokenize()
func Tokenize(input string) []Token {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns the token list
func (l *Lexer) Tokenize() []Token {
	for l.pos = 0; l.pos < len(l.runes); l.pos++ {
		ch := l.runes[l.pos]

		if isSpace(ch) {
			l.flush()
			continue
		}

		if tt, ok := punctuation[ch]; ok {
			l.flush()
			l.tokens = append(l.tokens, Token{Type: tt, Value: string(ch), Pos: l.pos})
			continue
		}

		if len(l.buffer) == 0 {
			l.bufStart = l.pos
		}
		l.buffer = append(l.buffer, ch)
	}
	l.flush()
	return l.tokens
}

// flush emits the accumulated buffer as a NUMBER or STRING token
func (l *Lexer) flush() {
	if len(l.buffer) == 0 {
		return
	}
	text := string(l.buffer)
	l.buffer = l.buffer[:0]

	if looksNumeric(text) {
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: text, Number: n, Pos: l.bufStart})
			return
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenString, Value: text, Pos: l.bufStart})
}

// looksNumeric allows only digits, '.' and an exponent. ParseFloat would
// also accept "inf", "nan", hex floats and '_' separators.
func looksNumeric(text string) bool {
	if !isDigit(text[0]) && text[0] != charPeriod {
		return false
	}
	for i := 1; i < len(text); i++ {
		ch := text[i]
		if !isDigit(ch) && ch != charPeriod && ch != 'e' && ch != 'E' {
			return false
		}
	}
	return true
}

func isSpace(ch rune) bool {
	return ch == charSpace || ch == charTab || ch == charNewline || ch == charReturn
}
