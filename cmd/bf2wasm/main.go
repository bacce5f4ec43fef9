// Command bf2wasm compiles tape-language programs to WebAssembly modules.
//
//	bf2wasm build hello.bf -o hello.wasm
//	bf2wasm build --example > hello.wasm
//	bf2wasm inspect hello.bf
//	bf2wasm edit -o prog.wasm
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/wasm-gen/bf"
	"github.com/wippyai/wasm-gen/wasm"
)

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds flags shared by every subcommand.
type options struct {
	configPath   string
	module       string
	write        string
	read         string
	run          string
	exportMemory string
	pages        uint32
	maxPages     uint32
	verbose      bool
}

// streams are the command's standard streams, swappable in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	s := &streams{in: in, out: out, err: errOut}

	cmd := &cobra.Command{
		Use:           "bf2wasm",
		Short:         "Compile tape-language programs to WebAssembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := newLogger(s.err, opts.verbose)
			wasm.SetLogger(log.Named("wasm"))
			bf.SetLogger(log.Named("bf"))
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newBuildCommand(opts, s),
		newInspectCommand(opts, s),
		newEditCommand(opts, s),
	)
	return cmd
}

func (o *options) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configPath, "config", "c", "", "TOML file with module layout")
	flags.StringVar(&o.module, "import-module", "", "module name of the host imports")
	flags.StringVar(&o.write, "import-write", "", "field name of the write import")
	flags.StringVar(&o.read, "import-read", "", "field name of the read import")
	flags.StringVar(&o.run, "export", "", "name of the exported entry point")
	flags.StringVar(&o.exportMemory, "export-memory", "", "export the tape memory under this name")
	flags.Uint32Var(&o.pages, "pages", 0, "initial memory size in 64 KiB pages")
	flags.Uint32Var(&o.maxPages, "max-pages", 0, "maximum memory size in pages")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log encoder activity to stderr")
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if isTerminal(w) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// config resolves the layout: defaults, then the --config file, then any
// flag given explicitly on the command line.
func (o *options) config(cmd *cobra.Command) (bf.Config, error) {
	cfg := bf.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = bf.LoadConfig(o.configPath); err != nil {
			return bf.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("import-module") {
		cfg.Imports.Module = o.module
	}
	if flags.Changed("import-write") {
		cfg.Imports.Write = o.write
	}
	if flags.Changed("import-read") {
		cfg.Imports.Read = o.read
	}
	if flags.Changed("export") {
		cfg.Export.Run = o.run
	}
	if flags.Changed("export-memory") {
		cfg.Memory.Export = o.exportMemory
	}
	if flags.Changed("pages") {
		cfg.Memory.Pages = o.pages
	}
	if flags.Changed("max-pages") {
		cfg.Memory.MaxPages = o.maxPages
	}
	return cfg, cfg.Validate()
}

// readSource returns the program named by args, stdin for no argument or
// "-", or the built-in example.
func readSource(s *streams, args []string, example bool) ([]byte, string, error) {
	switch {
	case example:
		return []byte(bf.HelloWorld), "hello world", nil
	case len(args) == 0 || args[0] == "-":
		src, err := io.ReadAll(s.in)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return src, "stdin", nil
	default:
		src, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("read source: %w", err)
		}
		return src, args[0], nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
