package lexer

import "github.com/marl-lang/phcore/token"

// delimKinds maps single-character structural delimiters to their
// token.Kind. These never carry an operator descriptor.
var delimKinds = map[rune]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN,
	'[': token.OSB, ']': token.CSB,
	'{': token.OCB, '}': token.CCB,
	',': token.COMMA, ';': token.SEMI,
}

// scanOperatorOrDelim handles everything not claimed by variables,
// strings, heredoc, numbers, or identifiers: structural delimiters,
// ':'/'::'," and the full operator set, including the +/- unary vs
// binary ambiguity rule of §4.6.
func (l *Lexer) scanOperatorOrDelim() token.Token {
	start := l.pos
	ch := l.ch

	if kind, ok := delimKinds[ch]; ok {
		l.readChar()
		return l.tok(kind, start, string(ch))
	}

	if ch == ':' {
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "::")
		}
		l.readChar()
		return l.tok(token.COLON, start, ":")
	}

	if ch == '&' {
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "&&")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "&=")
		}
		l.readChar()
		d, _ := token.LookupOperator("&")
		return token.Token{Start: start, End: l.pos, Line: l.line, Kind: token.AMPER, Literal: "&", Aux: d}
	}

	if ch == '=' {
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return l.opToken(start, "===")
			}
			return l.opToken(start, "==")
		}
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "=&")
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return l.tok(token.ARRAYOP, start, "=>")
		}
		l.readChar()
		d, _ := token.LookupOperator("=")
		return token.Token{Start: start, End: l.pos, Line: l.line, Kind: token.EQUAL, Literal: "=", Aux: d}
	}

	switch ch {
	case '+':
		return l.scanPlusMinus('+')
	case '-':
		return l.scanPlusMinus('-')
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "*=")
		}
		l.readChar()
		return l.opToken(start, "*")
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "/=")
		}
		l.readChar()
		return l.opToken(start, "/")
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "%=")
		}
		l.readChar()
		return l.opToken(start, "%")
	case '.':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, ".=")
		}
		l.readChar()
		return l.opToken(start, ".")
	case '~':
		l.readChar()
		return l.opToken(start, "~")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return l.opToken(start, "!==")
			}
			return l.opToken(start, "!=")
		}
		l.readChar()
		return l.opToken(start, "!")
	case '@':
		l.readChar()
		return l.opToken(start, "@")
	case '^':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "^=")
		}
		l.readChar()
		return l.opToken(start, "^")
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "||")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "|=")
		}
		l.readChar()
		return l.opToken(start, "|")
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return l.opToken(start, "<<=")
			}
			return l.opToken(start, "<<")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "<=")
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return l.opToken(start, "<>")
		}
		l.readChar()
		return l.opToken(start, "<")
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return l.opToken(start, ">>=")
			}
			return l.opToken(start, ">>")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.opToken(start, ">=")
		}
		l.readChar()
		return l.opToken(start, ">")
	case '?':
		l.readChar()
		return l.opToken(start, "?")
	}

	l.readChar()
	return l.tok(token.ILLEGAL, start, string(ch))
}

// scanPlusMinus resolves the single-character +/- ambiguity rule of
// §4.6: unary if the preceding token is LPAREN/OCB/OSB/COLON/COMMA,
// or is an OP whose descriptor is not ++/--; binary otherwise.
func (l *Lexer) scanPlusMinus(ch rune) token.Token {
	start := l.pos
	if ch == '-' && l.peekChar() == '>' {
		l.readChar()
		l.readChar()
		return l.opToken(start, "->")
	}
	if l.peekChar() == ch {
		l.readChar()
		l.readChar()
		if ch == '+' {
			return l.opToken(start, "++")
		}
		return l.opToken(start, "--")
	}
	if l.peekChar() == '=' {
		l.readChar()
		l.readChar()
		if ch == '+' {
			return l.opToken(start, "+=")
		}
		return l.opToken(start, "-=")
	}
	l.readChar()
	if l.unaryContext() {
		if ch == '+' {
			return l.opToken(start, "u+")
		}
		return l.opToken(start, "u-")
	}
	return l.opToken(start, string(ch))
}

func (l *Lexer) unaryContext() bool {
	last := l.last
	if last.Kind == 0 {
		return true // start of expression stream
	}
	if last.Kind.Any(token.LPAREN | token.OCB | token.OSB | token.COLON | token.COMMA) {
		return true
	}
	if last.Kind.Has(token.OP) {
		d := last.Op()
		if d == nil {
			return true
		}
		return d.ID != token.OpPostIncr && d.ID != token.OpPostDecr
	}
	return false
}

func (l *Lexer) opToken(start int, text string) token.Token {
	d, _ := token.LookupOperator(text)
	return token.Token{Start: start, End: l.pos, Line: l.line, Kind: token.OP, Literal: text, Aux: d}
}
