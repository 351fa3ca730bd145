package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/compiler/lexer"
	"github.com/agenthands/tilde/pkg/compiler/parser"
	"github.com/agenthands/tilde/pkg/config"
	"github.com/agenthands/tilde/pkg/debugger"
	"github.com/agenthands/tilde/pkg/diag"
	"github.com/agenthands/tilde/pkg/stdlib"
	"github.com/agenthands/tilde/pkg/vm"
)

const usage = `Usage: tilde [flags] <file.tl> [args...]

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("tilde", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a tilde.yaml (default ./tilde.yaml if present)")
	gas := flags.Int("gas", 0, "maximum number of executed statements (0: unlimited)")
	logLevel := flags.String("log-level", "", "trace, debug, info, warn or error")
	logFormat := flags.String("log-format", "", "console or json")
	noColor := flags.Bool("no-color", false, "disable coloured diagnostics")
	noDebugger := flags.Bool("no-debugger", false, "ignore @runtime:breakpoint")
	dump := flags.Bool("dump", false, "print the parsed program and exit")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(argv); err != nil {
		return 2
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return 2
	}
	scriptPath := flags.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gas":
			cfg.Run.Gas = *gas
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "no-color":
			if *noColor {
				cfg.Run.Color = "never"
			}
		case "no-debugger":
			cfg.Run.Debugger = !*noDebugger
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	prog, err := compile(scriptPath, logger)
	if err != nil {
		return report(err, cfg, stderr)
	}
	logger.Debug().Str("file", scriptPath).Int("statements", len(prog)).Msg("parsed")

	if *dump {
		for _, stmt := range prog {
			fmt.Fprintln(stdout, stmt)
		}
		return 0
	}

	opts, err := cfg.StdlibOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	m := vm.New(prog)
	m.Logger = logger
	m.Stdout = stdout
	m.Args = flags.Args()[1:]
	if err := stdlib.Register(m, opts); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cfg.Run.Debugger {
		m.Breakpoint = debugger.New(stdout).Hook()
	}

	if err := m.Run(cfg.Run.Gas); err != nil {
		return report(err, cfg, stderr)
	}
	return 0
}

func compile(path string, logger zerolog.Logger) ([]ast.Statement, error) {
	lx := lexer.New()
	lx.OnImport = func(path string, depth int) {
		logger.Debug().Str("path", path).Int("depth", depth).Msg("import")
	}
	toks, err := lx.TokenizeFile(path)
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// report prints err and picks the exit status. A requested exit is not an
// error and carries its own status.
func report(err error, cfg config.Config, stderr io.Writer) int {
	var exit *vm.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}

	var de *diag.Error
	if errors.As(err, &de) {
		fmt.Fprintln(stderr, de.Render(cfg.Color(isTerminal(stderr))))
		return 1
	}
	fmt.Fprintf(stderr, "tilde: %v\n", err)
	return 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
