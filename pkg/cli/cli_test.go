package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestSet() (*FlagSet, *string, *bool, *[]string) {
	var out string
	var verbose bool
	var includes []string
	fs := NewFlagSet("test")
	fs.String(&out, "output", "o", "a.out", "Output file", "file")
	fs.Bool(&verbose, "verbose", "v", false, "Talk more")
	fs.List(&includes, "include", "I", nil, "Include path", "path")
	return fs, &out, &verbose, &includes
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		out      string
		verbose  bool
		includes []string
		rest     []string
	}{
		{"defaults", []string{"a.tree"}, "a.out", false, nil, []string{"a.tree"}},
		{"long with space", []string{"--output", "x", "a"}, "x", false, nil, []string{"a"}},
		{"long with equals", []string{"--output=y"}, "y", false, nil, []string{}},
		{"single dash long", []string{"-output=z", "-verbose"}, "z", true, nil, []string{}},
		{"shorthand glued", []string{"-ofile", "-v"}, "file", true, nil, []string{}},
		{"shorthand spaced", []string{"-o", "f2", "-I", "a", "-Ib"}, "f2", false, []string{"a", "b"}, []string{}},
		{"terminator", []string{"-v", "--", "-o", "x"}, "a.out", true, nil, []string{"-o", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, out, verbose, includes := newTestSet()
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if *out != tt.out || *verbose != tt.verbose {
				t.Errorf("got out=%q verbose=%v", *out, *verbose)
			}
			if diff := cmp.Diff(tt.includes, *includes); diff != "" {
				t.Errorf("includes (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.rest, fs.Args()); diff != "" {
				t.Errorf("args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{{"--nope"}, {"-q"}, {"--output"}, {"-o"}, {"--verbose=maybe"}} {
		fs, _, _, _ := newTestSet()
		if err := fs.Parse(args); err == nil {
			t.Errorf("Parse(%v) should fail", args)
		}
	}
}

func TestFlagGroups(t *testing.T) {
	fs, _, _, _ := newTestSet()
	on, off := true, false
	entries := []FlagGroupEntry{{Name: "casts", Prefix: "W", Usage: "Warn on casts", Enabled: &on, Disabled: &off}}
	fs.AddFlagGroup("Warning Flags", "", "warning flag", "Available Warnings:", entries)

	if err := fs.Parse([]string{"-Wno-casts"}); err != nil {
		t.Fatal(err)
	}
	if !off {
		t.Error("-Wno-casts did not set the disable switch")
	}
	if fs.Lookup("Wcasts") == nil {
		t.Error("enable switch not registered")
	}
}

func TestHelpPage(t *testing.T) {
	var stdout bytes.Buffer
	app := NewApp("tool")
	app.Stdout = &stdout
	app.Synopsis = "[options] <input> ..."
	app.Description = "Does things."
	var out string
	app.FlagSet.String(&out, "output", "o", "a.out", "Place the output into <file>.", "file")
	on, off := false, false
	app.FlagSet.AddFlagGroup("Feature Flags", "", "feature flag", "Available Features:",
		[]FlagGroupEntry{{Name: "fast", Prefix: "F", Usage: "Go fast.", Enabled: &on, Disabled: &off}})

	if err := app.Run([]string{"--help"}); err != nil {
		t.Fatal(err)
	}
	page := stdout.String()
	for _, want := range []string{"tool [options] <input> ...", "-o, --output <file>", "|a.out|", "-F<name>", "fast", "|-|"} {
		if !strings.Contains(page, want) {
			t.Errorf("help page lacks %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "--Ffast") {
		t.Error("group switches should not be listed as options")
	}
}

func TestRunReportsParseErrors(t *testing.T) {
	var stderr bytes.Buffer
	app := NewApp("tool")
	app.Stderr = &stderr
	called := false
	app.Action = func([]string) error { called = true; return nil }
	if err := app.Run([]string{"--bogus"}); err == nil {
		t.Fatal("expected an error")
	}
	if called || !strings.Contains(stderr.String(), "unknown flag") {
		t.Errorf("called=%v stderr=%q", called, stderr.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrapText (-want +got):\n%s", diff)
	}
}
