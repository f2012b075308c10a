package lexer

import "github.com/marl-lang/phcore/token"

// Tokenize scans input to completion (including the trailing EOF
// token) and applies the type-cast folding pass of §4.6.
func Tokenize(input string, startLine int) []token.Token {
	l := New(input, startLine)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return foldCasts(toks)
}

// foldCasts collapses any `( TYPE )` run — where TYPE is one of the
// cast keywords — into a single OP token, per §4.6's type-cast
// assembly rule. The result never contains a standalone LPAREN/
// KEYWORD/RPAREN triple of this shape.
func foldCasts(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		if i+2 < len(toks) &&
			toks[i].Kind == token.LPAREN &&
			toks[i+1].Kind.Has(token.KEYWORD) &&
			toks[i+2].Kind == token.RPAREN {
			if kw, ok := toks[i+1].Aux.(token.KeywordID); ok {
				if d, ok := token.CastOperator(kw); ok {
					out = append(out, token.Token{
						Start:   toks[i].Start,
						End:     toks[i+2].End,
						Line:    toks[i].Line,
						Kind:    token.OP,
						Literal: d.Text,
						Aux:     d,
					})
					i += 3
					continue
				}
			}
		}
		out = append(out, toks[i])
		i++
	}
	return out
}
