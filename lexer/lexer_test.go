package lexer

import (
	"testing"

	"github.com/marl-lang/phcore/token"
)

func TestInlineHTMLBeforeOpenTag(t *testing.T) {
	l := New("hello <?php $x;", 1)

	tok := l.NextToken()
	if tok.Kind != token.INLINE_HTML || tok.Literal != "hello " {
		t.Fatalf("expected INLINE_HTML %q, got %v %q", "hello ", tok.Kind, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Kind != token.VARIABLE {
		t.Fatalf("expected VARIABLE after open tag, got %v", tok.Kind)
	}
}

func TestVariableToken(t *testing.T) {
	l := New("<?php $count;", 1)
	tok := l.NextToken()
	if tok.Kind != token.VARIABLE {
		t.Fatalf("expected VARIABLE, got %v (%q)", tok.Kind, tok.Literal)
	}
	name, ok := tok.Aux.(string)
	if !ok || name != "count" {
		t.Fatalf("expected variable name %q, got %#v", "count", tok.Aux)
	}
}

func TestKeywordRecognition(t *testing.T) {
	tests := []struct {
		input string
		kw    token.KeywordID
	}{
		{"echo", token.KwEcho},
		{"isset", token.KwIsset},
		{"function", token.KwFunction},
		{"array", token.KwArray},
	}
	for _, tt := range tests {
		l := New("<?php "+tt.input, 1)
		tok := l.NextToken()
		if !tok.Kind.Has(token.KEYWORD) {
			t.Errorf("input %q: expected KEYWORD, got %v", tt.input, tok.Kind)
			continue
		}
		if tok.Aux != tt.kw {
			t.Errorf("input %q: expected keyword id %v, got %v", tt.input, tt.kw, tok.Aux)
		}
	}
}

func TestMemberAccessOperator(t *testing.T) {
	l := New("<?php $obj->prop;", 1)
	l.NextToken() // $obj
	tok := l.NextToken()
	if tok.Kind != token.OP || tok.Literal != "->" {
		t.Fatalf("expected -> operator, got %v %q", tok.Kind, tok.Literal)
	}
}

func TestIntAndFloatLiterals(t *testing.T) {
	l := New("<?php 123 4.5;", 1)
	tok := l.NextToken()
	if tok.Kind != token.INT || tok.Literal != "123" {
		t.Fatalf("expected INT 123, got %v %q", tok.Kind, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Kind != token.FLOAT || tok.Literal != "4.5" {
		t.Fatalf("expected FLOAT 4.5, got %v %q", tok.Kind, tok.Literal)
	}
}

func TestSingleQuotedString(t *testing.T) {
	l := New(`<?php 'it''s fine';`, 1)
	tok := l.NextToken()
	if tok.Kind != token.SSTR {
		t.Fatalf("expected SSTR, got %v", tok.Kind)
	}
}

func TestTokenizeAppliesCastFolding(t *testing.T) {
	toks := Tokenize("<?php (int)$a;", 1)

	var sawCast bool
	for _, tok := range toks {
		if tok.Kind == token.OP && tok.Literal == "(int)" {
			sawCast = true
		}
		if tok.Kind == token.LPAREN {
			t.Fatalf("expected cast folding to remove the standalone LPAREN, found one in %#v", toks)
		}
	}
	if !sawCast {
		t.Fatalf("expected a folded (int) cast operator token, got %#v", toks)
	}
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	toks := Tokenize("<?php $a;", 1)
	last := toks[len(toks)-1]
	if last.Kind != token.EOF {
		t.Fatalf("expected trailing EOF token, got %v", last.Kind)
	}
}
