package ast

import (
	"strings"

	"github.com/marl-lang/phcore/lexer"
	"github.com/marl-lang/phcore/token"
)

// unescapeSingleQuoted resolves the only two escapes a '...' literal
// recognizes (§4.6): \\ and \'. Everything else, including \n and \t,
// passes through literally.
func unescapeSingleQuoted(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '\'') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var doubleEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'v': '\v', 'f': '\f', 'e': 0x1b,
	'\\': '\\', '$': '$', '"': '"',
}

// unescapeDoubleRun resolves the backslash escapes valid inside a
// "..."/heredoc literal run (§4.6), leaving octal/hex/unicode escapes
// (\NNN, \xNN, \u{NNNN}) for a later codegen pass since they require
// rune-level encoding this layer does not otherwise need.
func unescapeDoubleRun(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if r, ok := doubleEscapes[s[i+1]]; ok {
				b.WriteByte(r)
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// segmentInterpolated splits a double-quoted/heredoc body into
// literal-text and embedded-expression Segments (§3.4's Interpolated
// kind). Two embedded forms are recognized: the braced `{$expr}` form
// (re-lexed as a full expression) and the bare `$name`, `$name[key]`,
// `$name->prop` forms PHP allows without braces.
func (b *Builder) segmentInterpolated(body string, line int) []Segment {
	var segs []Segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Literal: unescapeDoubleRun(lit.String())})
			lit.Reset()
		}
	}

	i := 0
	for i < len(body) {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			lit.WriteByte(c)
			lit.WriteByte(body[i+1])
			i += 2
			continue
		}
		if c == '{' && i+1 < len(body) && body[i+1] == '$' {
			end := matchBrace(body, i)
			if end > i {
				flush()
				inner := body[i+1 : end]
				segs = append(segs, Segment{Expr: b.parseSubExpr(inner, line)})
				i = end + 1
				continue
			}
		}
		if c == '$' && i+1 < len(body) && isIdentStart(body[i+1]) {
			end, node := b.scanSimpleInterp(body, i, line)
			if node != nil {
				flush()
				segs = append(segs, Segment{Expr: node})
				i = end
				continue
			}
		}
		lit.WriteByte(c)
		i++
	}
	flush()
	return segs
}

// matchBrace returns the index of the `}` matching the `{` at start,
// or -1 if unbalanced.
func matchBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// scanSimpleInterp parses the brace-less `$name`, `$name[key]`,
// `$name->prop` interpolation forms directly against the raw text,
// since the lexer has already consumed the whole quoted literal as
// one token and these sub-forms never need the full expression
// grammar (no nested method calls, no arbitrary subscript
// expressions — only a bare name or integer/bare-word key).
func (b *Builder) scanSimpleInterp(s string, start, line int) (int, Node) {
	i := start + 1
	nameStart := i
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	if i == nameStart {
		return start, nil
	}
	name := s[nameStart:i]
	var node Node = &Leaf{Kind: VariableLeaf, Lit: name}

	if i < len(s) && s[i] == '[' {
		j := i + 1
		keyStart := j
		for j < len(s) && s[j] != ']' {
			j++
		}
		if j < len(s) {
			key := s[keyStart:j]
			node = &Op{Desc: descIndex, Left: node, Right: simpleInterpKey(key)}
			i = j + 1
		}
	} else if i+1 < len(s) && s[i] == '-' && s[i+1] == '>' {
		j := i + 2
		propStart := j
		for j < len(s) && isIdentPart(s[j]) {
			j++
		}
		if j > propStart {
			memberDesc, _ := token.LookupOperator("->")
			node = &Op{Desc: memberDesc, Left: node, Right: &Leaf{Kind: SimpleStringLeaf, Lit: s[propStart:j]}}
			i = j
		}
	}
	return i, node
}

func simpleInterpKey(key string) Node {
	if key != "" && (key[0] == '$') {
		return &Leaf{Kind: VariableLeaf, Lit: key[1:]}
	}
	allDigits := key != ""
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		var v int64
		for i := 0; i < len(key); i++ {
			v = v*10 + int64(key[i]-'0')
		}
		return &Leaf{Kind: LiteralLeaf, Lit: v}
	}
	return &Leaf{Kind: SimpleStringLeaf, Lit: key}
}

// parseSubExpr re-lexes an extracted `{$...}` span as a standalone
// expression. The lexer has no entry point that starts directly in
// PHP-code mode, so a synthetic open tag is prepended; this never
// leaks into the resulting tree since only the expression node is
// kept.
func (b *Builder) parseSubExpr(src string, line int) Node {
	sub := New(lexer.New("<?php "+src, line))
	expr := sub.parseExpression(ceilAll)
	b.errors = append(b.errors, sub.errors...)
	return expr
}
