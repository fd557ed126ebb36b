// Package main implements the ksc command-line front end: it parses a
// Kaleidoscope-class source file (or standard input) and drives
// internal/refinterp, the reference code-gen visitor this repository
// ships, over the resulting AST forest.
//
// Real code generation, optimization passes beyond the trivial constant
// fold internal/envconfig's KSC_OPTIMIZE toggles, object-file emission
// for a real target, and target-machine selection are external
// collaborators (spec §1) this CLI does not implement; it exists to
// exercise the front end end-to-end.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/internal/astcodec"
	"github.com/ksc-lang/ksc/internal/buildunit"
	"github.com/ksc-lang/ksc/internal/envconfig"
	"github.com/ksc-lang/ksc/internal/refinterp"
	"github.com/ksc-lang/ksc/pkg/codegen"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
	"github.com/ksc-lang/ksc/pkg/parser"
)

var emitIR bool

var rootCmd = &cobra.Command{
	Use:   "ksc [file]",
	Short: "ksc is the front end for a Kaleidoscope-class expression language",
	Long: `ksc lexes and parses a Kaleidoscope-class source file (or standard
input) into an AST forest and drives the bundled reference interpreter
over it. With no arguments it reads from standard input and prints each
top-level expression's result to standard output. With one file
argument it writes the serialized forest to <file>.o (and, with
--emit-ir, a human-readable listing to <file>.o.ll).`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			_ = cmd.Usage()
			return fmt.Errorf("ksc: expected zero or one positional argument, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runStdin()
		}
		return runFile(args[0])
	},
}

func main() {
	rootCmd.Flags().BoolVar(&emitIR, "emit-ir", false, "also write a textual listing of the AST alongside the object file")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runStdin implements the zero-argument CLI mode (§6): read source from
// standard input, evaluate every top-level form with the reference
// interpreter, and print each bare expression's result to standard
// output. def/extern forms register silently, exactly as they would
// register a symbol with a real code generator without emitting a
// visible value.
func runStdin() error {
	sink := errsink.New(os.Stderr)
	lx := lexer.NewStdin(sink)
	forest, err := compile(lx, sink)
	if err != nil {
		return err
	}

	it := refinterp.New()
	results, err := codegen.Generate(it, forest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	for _, v := range results {
		if f, ok := v.(float64); ok {
			fmt.Println(f)
		}
	}
	return nil
}

// runFile implements the one-argument CLI mode (§6): parse path and
// write a serialized forest to <path>.o, standing in for the object
// code a real back end would emit (internal/astcodec). With --emit-ir,
// also write a textual listing and the build manifest's content hash to
// <path>.o.ll, standing in for LLVM's -emit-llvm textual IR.
func runFile(path string) error {
	sink := errsink.New(os.Stderr)
	lx, err := lexer.NewFile(path, sink)
	if err != nil {
		return err
	}
	defer lx.Close()

	forest, err := compile(lx, sink)
	if err != nil {
		return err
	}

	data, err := astcodec.Encode(forest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	objPath := path + ".o"
	if err := os.WriteFile(objPath, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// The textual listing doubles as the build's intermediate artifact:
	// it is always produced so the manifest hash is computed once, but
	// it is only kept on disk when --emit-ir was passed or
	// KSC_KEEP_INTERMEDIATE asked for it; otherwise it is discarded.
	cfg := envconfig.Load()
	listingPath := objPath + ".ll"
	if err := writeTextualListing(path, listingPath, forest, lx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if !emitIR && !cfg.KeepIntermediate {
		os.Remove(listingPath)
	}
	return nil
}

// compile runs the shared lex/parse/optimize pipeline every CLI mode
// needs. Parse errors are already printed by errsink.Sink; the caller
// only needs to propagate a non-nil error into a non-zero exit code.
func compile(lx *lexer.Lexer, sink *errsink.Sink) ([]ast.Node, error) {
	cfg := envconfig.Load()
	p := parser.New(lx, sink)
	forest, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if cfg.OptimizeIR {
		forest = refinterp.Fold(forest)
	}
	return forest, nil
}

func writeTextualListing(srcPath, listingPath string, forest []ast.Node, lx *lexer.Lexer, cfg envconfig.Config) error {
	manifest := buildunit.NewManifest(filepath.Base(srcPath)).
		WithDebugInfo(cfg.EmitDebugMetadata).
		AddFromForest(forest).
		Build()

	var buf []byte
	buf = append(buf, fmt.Sprintf("; ksc textual listing of %s\n", srcPath)...)
	buf = append(buf, fmt.Sprintf("; manifest hash: %s\n", manifest.Hash)...)
	if ops := lx.InstalledOperators(); len(ops) > 0 {
		sort.Strings(ops)
		buf = append(buf, fmt.Sprintf("; user operators: %s\n", strings.Join(ops, " "))...)
	}
	for _, sym := range manifest.Symbols {
		line := fmt.Sprintf("; symbol %s -> %s (arity %d, priority %d)", sym.Name, sym.Mangled, sym.Arity, sym.Priority)
		if sym.Loc != "" {
			line += " @ " + sym.Loc
		}
		buf = append(buf, line+"\n"...)
	}
	for _, n := range forest {
		buf = append(buf, n.String()+"\n"...)
	}
	return os.WriteFile(listingPath, buf, 0o644)
}
