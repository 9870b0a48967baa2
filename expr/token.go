// SPDX-License-Identifier: MIT

package expr

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenConstant TokenType = iota
	TokenVariable
	TokenLeftParen
	TokenRightParen
	TokenMultiply
	TokenDivide
	TokenRemainder
	TokenExponent
	TokenAdd
	TokenSubtract
	TokenGreaterThan
	TokenLessThan
	TokenGreaterOrEqual
	TokenLessOrEqual
	TokenEqual
	TokenNotEqual
	TokenAnd
	TokenOr
	TokenNot
)

var tokenNames = [...]string{
	TokenConstant:       "CONSTANT",
	TokenVariable:       "VARIABLE",
	TokenLeftParen:      "LEFT_PAREN",
	TokenRightParen:     "RIGHT_PAREN",
	TokenMultiply:       "MULTIPLY",
	TokenDivide:         "DIVIDE",
	TokenRemainder:      "REMAINDER",
	TokenExponent:       "EXPONENT",
	TokenAdd:            "ADD",
	TokenSubtract:       "SUBTRACT",
	TokenGreaterThan:    "GREATER_THAN",
	TokenLessThan:       "LESS_THAN",
	TokenGreaterOrEqual: "GREATER_THAN_OR_EQ",
	TokenLessOrEqual:    "LESS_THAN_OR_EQ",
	TokenEqual:          "EQUAL",
	TokenNotEqual:       "NOT_EQUAL",
	TokenAnd:            "BOOLEAN_AND",
	TokenOr:             "BOOLEAN_OR",
	TokenNot:            "BOOLEAN_NOT",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenNames) {
		return "UNKNOWN"
	}

	return tokenNames[t]
}

// IsOperator reports whether t is an arithmetic/boolean operator.
func (t TokenType) IsOperator() bool { return t >= TokenMultiply }

// operatorTokens maps delimiter text to its token type.
var operatorTokens = map[string]TokenType{
	"*":  TokenMultiply,
	"/":  TokenDivide,
	"%":  TokenRemainder,
	"^":  TokenExponent,
	"+":  TokenAdd,
	"-":  TokenSubtract,
	">":  TokenGreaterThan,
	"<":  TokenLessThan,
	">=": TokenGreaterOrEqual,
	"<=": TokenLessOrEqual,
	"==": TokenEqual,
	"!=": TokenNotEqual,
	"&&": TokenAnd,
	"||": TokenOr,
	"!":  TokenNot,
	"(":  TokenLeftParen,
	")":  TokenRightParen,
}

// twoCharOperators are merged from two adjacent one-character segments.
var twoCharOperators = map[string]bool{
	">=": true, "<=": true, "==": true, "!=": true, "&&": true, "||": true,
}

// precedence is the resolution tier of each binary operator; lower tiers are
// folded into the tree first.
var precedence = map[TokenType]int{
	TokenMultiply:       0,
	TokenDivide:         0,
	TokenRemainder:      0,
	TokenExponent:       1,
	TokenAdd:            2,
	TokenSubtract:       2,
	TokenGreaterThan:    3,
	TokenLessThan:       3,
	TokenGreaterOrEqual: 3,
	TokenLessOrEqual:    3,
	TokenEqual:          4,
	TokenNotEqual:       4,
	TokenAnd:            5,
	TokenOr:             6,
	TokenNot:            0,
}

// Token is one lexical unit with its [Start, End) byte span in the source.
type Token struct {
	Type  TokenType
	Value float64 // TokenConstant only
	Name  string  // TokenVariable only
	Start int
	End   int
}
