package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/cli"
	"github.com/xplshn/gwc/pkg/config"
	"github.com/xplshn/gwc/pkg/lexer"
	"github.com/xplshn/gwc/pkg/parser"
	"github.com/xplshn/gwc/pkg/token"
	"github.com/xplshn/gwc/pkg/treeio"
	"github.com/xplshn/gwc/pkg/typeChecker"
	"github.com/xplshn/gwc/pkg/util"
)

func main() {
	app := cli.NewApp("gwc")
	app.Synopsis = "[options] <input.tree> ..."
	app.Description = "Normalizes numeric casts in syntax trees: explicit casts, unary minus and mixed-type arithmetic."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/gwc>"

	var (
		outFile   string
		formatArg string
		verify    bool
		showStats bool
		wall      bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file> instead of stdout.", "file")
	fs.String(&formatArg, "format", "", "tree", "Output format (tree, yaml).", "format")
	fs.Bool(&verify, "verify", "", false, "Run the pass a second time and fail unless the tree is unchanged.")
	fs.Bool(&showStats, "stats", "", false, "Report how many nodes were rewritten.")
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		if len(inputFiles) == 0 {
			util.Error(token.Token{FileIndex: -1}, "no input files specified.")
		}

		// -Wall first so specific flags override it
		if wall {
			for i := config.Warning(0); i < config.WarnCount; i++ {
				cfg.SetWarning(i, true)
			}
		}
		cfg.ApplyFlagGroups(warningFlags, featureFlags)
		for _, flag := range cfg.ProcessDirectiveFlags(os.Getenv("GWC_FLAGS")) {
			util.Warn(cfg, config.WarnExtra, token.Token{FileIndex: -1}, "unknown flag '%s' in GWC_FLAGS", flag)
		}

		format, err := treeio.ParseFormat(formatArg)
		if err != nil {
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		}

		roots := readTrees(inputFiles)

		out := io.Writer(os.Stdout)
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				util.Error(token.Token{FileIndex: -1}, "could not create '%s': %v", outFile, err)
			}
			defer f.Close()
			out = f
		}

		for i, root := range roots {
			tc := typeChecker.NewTypeChecker(cfg)
			checked, err := tc.Check(root)
			if err != nil {
				reportError(err)
			}

			if verify {
				again, err := typeChecker.NewTypeChecker(quietConfig(cfg)).Check(checked)
				if err != nil {
					reportError(err)
				}
				if ast.Fingerprint(again) != ast.Fingerprint(checked) {
					util.Error(checked.Tok, "tree changed on a second pass:\n%s", ast.PrintNode(again))
				}
			}

			if showStats {
				stats := tc.Stats()
				fmt.Fprintf(os.Stderr, "gwc: info: %s: %d cast(s) patched, %d implicit cast(s), %d unary rewrite(s)\n",
					inputFiles[i], stats.CastsPatched, stats.ImplicitCasts, stats.UnaryRewrites)
			}

			if err := treeio.Write(out, checked, format); err != nil {
				util.Error(token.Token{FileIndex: -1}, "could not write output: %v", err)
			}
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// readTrees loads every input and registers its source for diagnostics
func readTrees(paths []string) []*ast.Node {
	var records []util.SourceFileRecord
	var roots []*ast.Node

	for i, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			util.Error(token.Token{FileIndex: -1}, "could not read file '%s': %v", path, err)
			continue
		}
		records = append(records, util.SourceFileRecord{Name: path, Content: []rune(string(content))})
		util.SetSourceFiles(records)

		root, err := treeio.Load(path, content, i)
		if err != nil {
			reportError(err)
			continue
		}
		roots = append(roots, root)
	}
	return roots
}

// reportError prints err at the position it carries and exits
func reportError(err error) {
	var (
		typeErr  *typeChecker.TypeError
		parseErr *parser.Error
		lexErr   *lexer.Error
	)
	switch {
	case errors.As(err, &typeErr):
		util.Error(typeErr.Tok, "%v", err)
	case errors.As(err, &parseErr):
		util.Error(parseErr.Tok, "%s", parseErr.Msg)
	case errors.As(err, &lexErr):
		util.Error(lexErr.Tok, "%s", lexErr.Msg)
	default:
		util.Error(token.Token{FileIndex: -1}, "%v", err)
	}
}

// quietConfig keeps the features of cfg with every warning off
func quietConfig(cfg *config.Config) *config.Config {
	quiet := config.NewConfig()
	for ft := config.Feature(0); ft < config.FeatCount; ft++ {
		quiet.SetFeature(ft, cfg.IsFeatureEnabled(ft))
	}
	for wt := config.Warning(0); wt < config.WarnCount; wt++ {
		quiet.SetWarning(wt, false)
	}
	return quiet
}
