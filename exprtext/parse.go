// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package exprtext implements a companion text format for concrete
// expressions: parenthesized infix with operators "+", "xor", "<<"
// (rotate-left), ">>" (rotate-right), and leaf tokens "state", "byte",
// or a decimal non-negative integer literal. All whitespace is
// insignificant.
//
// This package is peripheral to the core expression-to-native-code
// pipeline — the core only ever consumes expr.Expr[expr.Tag] values
// built directly by the tagger or by tests — but it gives tests and
// tooling a way to write out a tree by hand without constructing one
// in code.
package exprtext

import (
	"fmt"

	"github.com/avalanche-labs/bytehash/expr"
)

// Error is returned by Parse. It names the offending byte (or reports
// unexpected end-of-input) the same way the source's parser does.
type Error struct {
	Kind ErrorKind
	Byte byte // only meaningful when Kind != ErrUnexpectedEOF
}

// ErrorKind discriminates the parse failure taxonomy.
type ErrorKind int

const (
	ErrUnexpectedEOF ErrorKind = iota
	ErrExpectedDigit
	ErrExpectedOperator
	ErrExpectedOpenParen
	ErrExpectedCloseParen
	ErrExpectedByteOrState
	ErrTrailingGarbage
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnexpectedEOF:
		return "exprtext: unexpected end of input"
	case ErrExpectedDigit:
		return fmt.Sprintf("exprtext: expected an ASCII digit, found %q", e.Byte)
	case ErrExpectedOperator:
		return fmt.Sprintf("exprtext: expected an operator, found %q", e.Byte)
	case ErrExpectedOpenParen:
		return fmt.Sprintf("exprtext: expected '(', found %q", e.Byte)
	case ErrExpectedCloseParen:
		return fmt.Sprintf("exprtext: expected ')', found %q", e.Byte)
	case ErrExpectedByteOrState:
		return fmt.Sprintf("exprtext: expected \"byte\" or \"state\", found %q", e.Byte)
	case ErrTrailingGarbage:
		return fmt.Sprintf("exprtext: trailing garbage starting at %q", e.Byte)
	default:
		return "exprtext: parse error"
	}
}

// Parse parses text into a concrete expression. Parse is total on its
// input: it never panics, and every rejection is reported as an *Error.
func Parse(text string) (*expr.Expr[expr.Tag], error) {
	stripped := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !isSpace(c) {
			stripped = append(stripped, c)
		}
	}

	rest, e, err := parseExpr(stripped)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &Error{Kind: ErrTrailingGarbage, Byte: rest[0]}
	}
	return e, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func parseExpr(text []byte) ([]byte, *expr.Expr[expr.Tag], error) {
	if len(text) > 0 && text[0] == '(' {
		return parseBinary(text)
	}
	if rest, e, err := parseConst(text); err == nil {
		return rest, e, nil
	}
	return parseRef(text)
}

func parseRef(text []byte) ([]byte, *expr.Expr[expr.Tag], error) {
	if len(text) == 0 {
		return nil, nil, &Error{Kind: ErrUnexpectedEOF}
	}
	if hasPrefix(text, "byte") {
		return text[4:], expr.Leaf(expr.ByteTag()), nil
	}
	if hasPrefix(text, "state") {
		return text[5:], expr.Leaf(expr.HashState()), nil
	}
	return nil, nil, &Error{Kind: ErrExpectedByteOrState, Byte: text[0]}
}

func parseConst(text []byte) ([]byte, *expr.Expr[expr.Tag], error) {
	if len(text) == 0 {
		return nil, nil, &Error{Kind: ErrUnexpectedEOF}
	}
	if !isDigit(text[0]) {
		return nil, nil, &Error{Kind: ErrExpectedDigit, Byte: text[0]}
	}

	var num uint64
	i := 0
	for i < len(text) && isDigit(text[i]) {
		num = 10*num + uint64(text[i]-'0')
		i++
	}
	return text[i:], expr.Leaf(expr.ConstTag(num)), nil
}

func parseBinary(text []byte) ([]byte, *expr.Expr[expr.Tag], error) {
	if len(text) == 0 {
		return nil, nil, &Error{Kind: ErrUnexpectedEOF}
	}
	if text[0] != '(' {
		return nil, nil, &Error{Kind: ErrExpectedOpenParen, Byte: text[0]}
	}

	rest, left, err := parseExpr(text[1:])
	if err != nil {
		return nil, nil, err
	}

	op, rest, err := parseOp(rest)
	if err != nil {
		return nil, nil, err
	}

	rest, right, err := parseExpr(rest)
	if err != nil {
		return nil, nil, err
	}

	if len(rest) == 0 {
		return nil, nil, &Error{Kind: ErrUnexpectedEOF}
	}
	if rest[0] != ')' {
		return nil, nil, &Error{Kind: ErrExpectedCloseParen, Byte: rest[0]}
	}

	return rest[1:], expr.Bin(op, left, right), nil
}

func parseOp(text []byte) (expr.Op, []byte, error) {
	switch {
	case hasPrefix(text, "+"):
		return expr.Add, text[1:], nil
	case hasPrefix(text, "xor"):
		return expr.Xor, text[3:], nil
	case hasPrefix(text, "<<"):
		return expr.RotLeft, text[2:], nil
	case hasPrefix(text, ">>"):
		return expr.RotRight, text[2:], nil
	case len(text) == 0:
		return 0, nil, &Error{Kind: ErrUnexpectedEOF}
	default:
		return 0, nil, &Error{Kind: ErrExpectedOperator, Byte: text[0]}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hasPrefix(text []byte, prefix string) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if text[i] != prefix[i] {
			return false
		}
	}
	return true
}
