package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/lexer"
	"github.com/xplshn/gwc/pkg/token"
)

var ignoreTok = cmpopts.IgnoreFields(ast.Node{}, "Tok")

func TestParseNode(t *testing.T) {
	src := `
(BinaryExpression "+" :f32
  (TypeCast "a" :f32 {typeCast f32 i32}
    (Identifier "a" :i32))
  (Identifier "b" :f32))`
	got, err := ParseString(src, 0)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}

	a := &ast.Node{Type: ast.Identifier, Value: "a", Typ: "i32"}
	want := &ast.Node{
		Type: ast.BinaryExpression, Value: "+", Typ: "f32",
		Params: []*ast.Node{
			{Type: ast.TypeCast, Value: "a", Typ: "f32", Meta: []ast.Meta{ast.TypeCastMeta("f32", "i32")}, Params: []*ast.Node{a}},
			{Type: ast.Identifier, Value: "b", Typ: "f32"},
		},
	}
	if diff := cmp.Diff(want, got, ignoreTok); diff != "" {
		t.Errorf("ParseString() mismatch (-want +got):\n%s", diff)
	}
	if got.Tok.Line != 2 || got.Params[1].Tok.Line != 5 {
		t.Errorf("positions not recorded: %+v %+v", got.Tok, got.Params[1].Tok)
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	var tok token.Token
	x := ast.NewIdentifier(tok, "x", "i64")
	trees := []*ast.Node{
		ast.NewPair(tok, x, ast.NewType(tok, "f64")),
		ast.NewNode(tok, ast.Program, "",
			ast.NewNode(tok, ast.Declaration, "total",
				ast.NewBinaryExpression(tok, "*", ast.NewTypeCast(tok, x, "f32"), ast.NewConstant(tok, "-1", "f32")),
			),
			&ast.Node{Type: ast.StringLiteral, Value: "tab\there \"q\"", Typ: "odd type"},
			&ast.Node{Type: ast.Noop},
		),
	}
	for _, tree := range trees {
		printed := ast.PrintNode(tree)
		got, err := ParseString(printed, 0)
		if err != nil {
			t.Fatalf("ParseString(%s) error: %v", printed, err)
		}
		if diff := cmp.Diff(tree, got, ignoreTok, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParseAll(t *testing.T) {
	p := NewParser(mustTokens(t, `(Identifier "a") ; first
(Constant "1" :i32) ()`))
	nodes, err := p.ParseAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 || nodes[2] != nil || nodes[1].Typ != "i32" {
		t.Errorf("ParseAll() = %v", nodes)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct{ name, src string }{
		{"unknown kind", `(Widget "a")`},
		{"missing kind", `("a")`},
		{"unterminated", `(Block (Noop)`},
		{"trailing", `(Noop) (Noop)`},
		{"bad meta", `(Identifier {cast i32 f32})`},
		{"short meta", `(Identifier {typeCast i32})`},
		{"missing type", `(Identifier "a" :)`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(mustTokens(t, tt.src)).Parse()
			var perr *Error
			if !errors.As(err, &perr) {
				t.Errorf("expected a parse error, got %v", err)
			}
		})
	}
}

func mustTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	tokens, err := lexer.NewLexer([]rune(src), 0).All()
	if err != nil {
		t.Fatalf("lexing %q: %v", src, err)
	}
	return tokens
}
