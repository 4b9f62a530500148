package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/compiler"
	"github.com/thiremani/cepheid/lexer"
	"github.com/thiremani/cepheid/lower"
	"github.com/thiremani/cepheid/parser"
	"github.com/thiremani/cepheid/token"
)

var CEP_SUFFIX = ".cep"
var ASM_SUFFIX = ".asm"
var EXE_SUFFIX = ".exe"

var EMIT_ASM = "asm"
var EMIT_AST = "ast"
var EMIT_IR = "ir"
var EMIT_TOKENS = "tokens"

type options struct {
	input   string
	output  string
	asmOnly bool
	emit    string
	tc      Toolchain
	version bool
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: cepheid [flags] <input%s> [output]\n", CEP_SUFFIX)
		fmt.Fprintf(fs.Output(), "Compile a cepheid program to a Windows x64 executable\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}
}

// parseArgs reads the command line. The output may be given with -o or as
// a second positional argument.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cepheid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.output, "o", "", "output file (default: project name or input name)")
	fs.BoolVar(&opts.asmOnly, "S", false, "write assembly to the output file and stop")
	fs.StringVar(&opts.emit, "emit", "", "print one form to stdout and stop: asm, ast, ir or tokens")
	fs.StringVar(&opts.tc.Nasm, "nasm", "nasm", "assembler to run")
	fs.StringVar(&opts.tc.Linker, "linker", "link", "linker to run")
	fs.BoolVar(&opts.tc.Verbose, "v", false, "show progress for each stage")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.Usage = usage(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.version {
		return opts, nil
	}

	switch opts.emit {
	case "", EMIT_ASM, EMIT_AST, EMIT_IR, EMIT_TOKENS:
	default:
		return opts, fmt.Errorf("unknown -emit value %q", opts.emit)
	}

	switch fs.NArg() {
	case 1:
	case 2:
		if opts.output != "" {
			return opts, fmt.Errorf("output given twice: -o %s and %s", opts.output, fs.Arg(1))
		}
		opts.output = fs.Arg(1)
	default:
		fs.Usage()
		return opts, fmt.Errorf("expected an input file and an optional output")
	}
	opts.input = fs.Arg(0)
	return opts, nil
}

// outputName picks the output path when none was given: the project name
// from cepheid.json if present, otherwise the input's base name.
func outputName(opts options, cfg Config, suffix string) string {
	if opts.output != "" {
		return opts.output
	}
	name := cfg.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
	}
	return filepath.Join(filepath.Dir(opts.input), name+suffix)
}

// projectName is the cache directory name for a build.
func projectName(opts options, cfg Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
}

// formatError renders err with the source line it points at and a caret
// under the offending column.
func formatError(err error, src string) string {
	var ce *token.CompileError
	if !errors.As(err, &ce) || ce.Token.Pos.Line == 0 {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	lineIdx := ce.Token.Pos.Line - 1 // Lines are 1-based
	if lineIdx < 0 || lineIdx >= len(lines) {
		return fmt.Sprintf("%s\n  |> <source unavailable>", err)
	}
	line := strings.TrimRight(lines[lineIdx], "\r")

	var pad strings.Builder
	for i, r := range line {
		if i >= ce.Token.Pos.Column-1 {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	return fmt.Sprintf("%s\n  |> %s\n  |  %s^", err, line, pad.String())
}

// emit prints the requested intermediate form of src.
func emit(w io.Writer, kind, src string, verbose bool, stderr io.Writer) error {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return err
	}
	if kind == EMIT_TOKENS {
		for _, tok := range toks {
			fmt.Fprintf(w, "%s %s\n", tok.Pos, tok)
		}
		return nil
	}

	module, err := parser.Parse(toks)
	if err != nil {
		return err
	}

	switch kind {
	case EMIT_AST:
		fmt.Fprintln(w, module)
	case EMIT_IR:
		return emitIR(w, module, verbose, stderr)
	default:
		asm, err := compiler.Generate(module)
		if err != nil {
			return err
		}
		fmt.Fprint(w, asm)
	}
	return nil
}

func emitIR(w io.Writer, module *ast.Module, verbose bool, stderr io.Writer) error {
	prog, err := lower.Lower(module)
	if err != nil {
		return err
	}
	fmt.Fprint(w, prog)
	if verbose {
		for _, fn := range prog.Functions {
			for _, warn := range lower.Analyze(fn) {
				fmt.Fprintf(stderr, "warning: %s\n", warn)
			}
		}
	}
	return nil
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		printVersion(stdout)
		return 0
	}

	source, err := os.ReadFile(opts.input)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading %s: %v\n", opts.input, err)
		return 1
	}
	src := string(source)

	if opts.emit != "" {
		if err := emit(stdout, opts.emit, src, opts.tc.Verbose, stderr); err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", opts.input, formatError(err, src))
			return 1
		}
		return 0
	}

	cfg, err := loadConfig(filepath.Dir(opts.input))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.tc.Verbose {
		fmt.Fprintf(stdout, "Compiling %s\n", opts.input)
	}
	asm, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", opts.input, formatError(err, src))
		return 1
	}

	if opts.asmOnly {
		out := outputName(opts, cfg, ASM_SUFFIX)
		if err := os.WriteFile(out, []byte(asm), 0644); err != nil {
			fmt.Fprintf(stderr, "Error writing assembly to %s: %v\n", out, err)
			return 1
		}
		fmt.Fprintf(stdout, "✅ Wrote assembly: %s\n", out)
		return 0
	}

	cache := defaultCache()
	if opts.tc.Verbose {
		fmt.Fprintf(stdout, "Using CEPCACHE: %s\n", cache)
	}
	objFile, err := assemble(cache, projectName(opts, cfg), asm, opts.tc)
	if err != nil {
		fmt.Fprintf(stderr, "⚠️ %v\n", err)
		return 1
	}
	exe := outputName(opts, cfg, EXE_SUFFIX)
	if err := link(objFile, exe, opts.tc); err != nil {
		fmt.Fprintf(stderr, "⚠️ %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "✅ Successfully built %s\n", exe)
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
