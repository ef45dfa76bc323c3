package treeio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/parser"
)

var treeOpts = cmp.Options{
	cmpopts.IgnoreFields(ast.Node{}, "Tok"),
	cmpopts.EquateEmpty(),
}

const sumTree = `(BinaryExpression "+" :f32
  (TypeCast "a" :f32 {typeCast f32 i32}
    (Identifier "a" :i32))
  (Identifier "b" :f32))`

const sumYAML = `kind: BinaryExpression
value: "+"
type: f32
params:
  - kind: TypeCast
    value: a
    type: f32
    meta:
      - kind: typeCast
        to: f32
        from: i32
    params:
      - kind: Identifier
        value: a
        type: i32
  - kind: Identifier
    value: b
    type: f32
    line: 4
    column: 3
`

const sumJSON = `{
  "kind": "BinaryExpression", "value": "+", "type": "f32",
  "params": [
    {"kind": "TypeCast", "value": "a", "type": "f32",
     "meta": [{"kind": "typeCast", "to": "f32", "from": "i32"}],
     "params": [{"kind": "Identifier", "value": "a", "type": "i32"}]},
    {"kind": "Identifier", "value": "b", "type": "f32"}
  ]
}`

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := parser.ParseString(src, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}

func TestDecode(t *testing.T) {
	want := mustParse(t, sumTree)
	for name, doc := range map[string]string{"yaml": sumYAML, "json": sumJSON} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(doc))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(want, got, treeOpts); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodePosition(t *testing.T) {
	got, err := Decode([]byte(sumYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tok := got.Params[1].Tok; tok.Line != 4 || tok.Column != 3 || tok.FileIndex != -1 {
		t.Errorf("token = %+v", tok)
	}
}

func TestDecodeSingleNodes(t *testing.T) {
	tests := map[string]struct{ doc, want string }{
		"constant": {
			doc:  "kind: Constant\nvalue: \"-1\"\ntype: i32\n",
			want: `(Constant "-1" :i32)`,
		},
		"missing child": {
			doc:  "kind: Pair\nparams:\n  - kind: Identifier\n    value: key\n  - null\n",
			want: `(Pair (Identifier "key") ())`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(mustParse(t, tt.want), got, treeOpts); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	in := mustParse(t, `(Block
  (Assignment "=" (Identifier "x" :i64) (Constant "-1" :i64))
  (BinaryExpression "*" (Identifier "y" :f64) ())
  (Pair (Identifier "key") (Type "i32")))`)

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, data)
	}
	if diff := cmp.Diff(in, got, treeOpts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s\ndocument:\n%s", diff, data)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"unknown kind":       "kind: Lambda\n",
		"unknown annotation": "kind: Identifier\nmeta:\n  - kind: inline\n",
		"empty":              "",
		"no kind":            "value: x\ntype: i32\n",
		"malformed":          "kind: [Identifier\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if n, err := Decode([]byte(doc)); err == nil {
				t.Errorf("Decode() = %s, want an error", ast.PrintNode(n))
			}
		})
	}
}

func TestFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.tree": FormatTree, "a.yaml": FormatYAML, "b.YML": FormatYAML, "c.json": FormatYAML, "noext": FormatTree,
	} {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q) = %v, want %v", path, got, want)
		}
	}
	if f, err := ParseFormat("yaml"); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(yaml) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	treePath := filepath.Join(dir, "sum.tree")
	yamlPath := filepath.Join(dir, "sum.yaml")
	if err := os.WriteFile(treePath, []byte("; widened sum\n"+sumTree+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(sumYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	want := mustParse(t, sumTree)
	for i, path := range []string{treePath, yamlPath} {
		got, err := ReadFile(path, i)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if diff := cmp.Diff(want, got, treeOpts); diff != "" {
			t.Errorf("ReadFile(%s) mismatch (-want +got):\n%s", path, diff)
		}
		if got.Tok.FileIndex != i {
			t.Errorf("ReadFile(%s) file index = %d, want %d", path, got.Tok.FileIndex, i)
		}
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.tree"), 0); err == nil {
		t.Error("ReadFile() of a missing file succeeded")
	}
}

func TestWrite(t *testing.T) {
	n := mustParse(t, sumTree)

	var buf bytes.Buffer
	if err := Write(&buf, n, FormatTree); err != nil {
		t.Fatal(err)
	}
	if buf.String() != sumTree+"\n" {
		t.Errorf("tree output:\n%s", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, n, FormatYAML); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "kind: BinaryExpression") {
		t.Errorf("yaml output:\n%s", buf.String())
	}
}
