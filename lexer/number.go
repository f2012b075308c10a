package lexer

import "github.com/marl-lang/phcore/token"

func (l *Lexer) scanNumber() token.Token {
	start := l.pos
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.tok(token.INT, start, l.input[start:l.pos])
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.readChar()
		}
		return l.tok(token.INT, start, l.input[start:l.pos])
	}

	isFloat := false
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else if l.ch == '.' && l.pos == start {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		digitsStart := next
		signLen := 0
		if next == '+' || next == '-' {
			digitsStart = l.peekAt(1)
			signLen = 1
		}
		if isDigit(digitsStart) {
			isFloat = true
			l.readChar() // e
			for i := 0; i < signLen; i++ {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return l.tok(kind, start, l.input[start:l.pos])
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
