package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/xplshn/gwc/pkg/config"
	"github.com/xplshn/gwc/pkg/token"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevExit, prevColor := Stderr, Exit, color.NoColor
	Stderr, color.NoColor = &buf, true
	t.Cleanup(func() {
		Stderr, Exit, color.NoColor = prevOut, prevExit, prevColor
		SetSourceFiles(nil)
	})
	return &buf
}

func TestErrorPrintsCaret(t *testing.T) {
	buf := capture(t)
	var code int
	Exit = func(c int) { code = c }
	SetSourceFiles([]SourceFileRecord{{Name: "a.tree", Content: []rune("(Block\n  (Pair x))")}})

	Error(token.Token{FileIndex: 0, Line: 2, Column: 3, Len: 5}, "bad %s", "pair")

	want := "a.tree:2:3: error: bad pair\n    (Pair x))\n    ^~~~~\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
}

func TestWarnHonorsConfig(t *testing.T) {
	buf := capture(t)
	cfg := config.NewConfig()
	tok := token.Token{FileIndex: -1, Line: 4, Column: 1}

	Warn(cfg, config.WarnImplicitCast, tok, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("disabled warning printed %q", buf.String())
	}

	Warn(cfg, config.WarnNarrowingCast, tok, "cast from %s to %s", "f64", "i32")
	want := "<input>:4:1: warning: cast from f64 to i32 [-Wnarrowing-cast]\n"
	if got := buf.String(); !strings.HasPrefix(got, want) {
		t.Errorf("got %q, want prefix %q", got, want)
	}
}
