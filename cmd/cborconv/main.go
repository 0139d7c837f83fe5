// cborconv decodes CBOR data items through the serializer in guess mode.
//
//	cborconv [flags] decode [file...]   print the guessed Go values as a tree
//	cborconv [flags] diag [file...]     print diagnostic notation
//	cborconv [flags] check [file...]    decode and re-encode every item
//
// Without files, or with "-", input is read from stdin. Options come from
// --config and then CBORCONV_* environment variables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/cbor-serializer/codec"
	"github.com/wippyai/cbor-serializer/config"
	"github.com/wippyai/cbor-serializer/meta"
	"github.com/wippyai/cbor-serializer/serializer"
	"github.com/wippyai/cbor-serializer/value"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	s      *serializer.Serializer
	log    *zap.Logger
	out    io.Writer
	styles styles
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		configPath string
		verbose    bool
		plain      bool
	)
	flagSet := pflag.NewFlagSet("cborconv", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "options file (yaml, toml or jsonc)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log converter selection to stderr")
	flagSet.BoolVar(&plain, "plain", false, "disable colour output")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cborconv [flags] decode|diag|check [file...]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return fmt.Errorf("missing command")
	}
	cmd, files := rest[0], rest[1:]

	opts := serializer.DefaultOptions()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		opts = loaded
	}
	opts, err := config.FromEnv(opts)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		logger = newVerboseLogger(stderr)
	}
	defer func() { _ = logger.Sync() }()
	serializer.SetLogger(logger)
	defer serializer.SetLogger(zap.NewNop())

	a := &app{
		s:      serializer.New(meta.NewRegistry(), opts),
		log:    logger,
		out:    stdout,
		styles: newStyles(!plain && isTerminal(stdout)),
	}

	data, err := readInput(files, stdin)
	if err != nil {
		return err
	}
	logger.Debug("input loaded",
		zap.Int("bytes", len(data)),
		zap.Stringer("polymorphism", opts.Polymorphism),
		zap.Stringer("validation", opts.Validation))

	switch cmd {
	case "decode":
		return a.decode(data)
	case "diag":
		return a.diag(data)
	case "check":
		return a.check(data)
	}
	flagSet.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func newVerboseLogger(w io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.DebugLevel), zap.Development())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readInput(files []string, stdin io.Reader) ([]byte, error) {
	if len(files) == 0 {
		files = []string{"-"}
	}
	var data []byte
	for _, name := range files {
		var (
			b   []byte
			err error
		)
		if name == "-" {
			b, err = io.ReadAll(stdin)
		} else {
			b, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		data = append(data, b...)
	}
	return data, nil
}

// items splits data into consecutive CBOR data items.
func items(data []byte, fn func(i int, v value.Value) error) error {
	for i := 0; len(data) > 0; i++ {
		v, rest, err := codec.UnmarshalFirst(data)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if err := fn(i, v); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		data = rest
	}
	return nil
}

func (a *app) decode(data []byte) error {
	return items(data, func(i int, v value.Value) error {
		out, err := a.s.Deserialize(v, meta.UnknownType, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.styles.title.Render(fmt.Sprintf("item %d", i)))
		fmt.Fprint(a.out, a.styles.tree(out))
		return nil
	})
}

func (a *app) diag(data []byte) error {
	for len(data) > 0 {
		notation, rest, err := codec.DiagnoseFirst(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, notation)
		data = rest
	}
	return nil
}

func (a *app) check(data []byte) error {
	var failed int
	err := items(data, func(i int, v value.Value) error {
		out, err := a.s.Deserialize(v, meta.UnknownType, nil)
		if err != nil {
			return err
		}
		back, err := a.s.Serialize(meta.UnknownType, out)
		if err != nil {
			return err
		}
		if value.Equal(back, v) {
			fmt.Fprintf(a.out, "item %d: %s\n", i, a.styles.ok.Render("ok"))
			return nil
		}
		failed++
		a.log.Debug("round trip differs", zap.Int("item", i), zap.Stringer("in", v), zap.Stringer("out", back))
		fmt.Fprintf(a.out, "item %d: %s\n  in:  %s\n  out: %s\n", i, a.styles.fail.Render("mismatch"), v, back)
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d item(s) did not round trip", failed)
	}
	return nil
}
