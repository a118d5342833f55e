// Command ewsxml inspects and edits entity payloads offline.
//
// It reads an entity element, or a container of entities such as m:Items,
// from a file or stdin and prints what the property store made of it. The
// update and create commands apply edits given on the command line and print
// the markup a client would send.
//
//	ewsxml load --format yaml response.xml
//	ewsxml update --set Subject=Hello --delete Categories --diff item.xml
//	ewsxml create --type Contact --set GivenName=Ann --envelope
//	ewsxml schema Message --shape
//
// Global flags override the configuration file, which is read from --config
// or $EWSCORE_CONFIG.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	ewscore "github.com/smnsjas/go-ewscore"
	"github.com/smnsjas/go-ewscore/config"
	"github.com/smnsjas/go-ewscore/entity"
	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/schema"
)

// errUsage is returned after usage has been printed for bad arguments.
var errUsage = errors.New("invalid usage")

// env is the state shared by all commands.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *entity.Registry
	compact  bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	colors *palette
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		if err != errUsage {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("ewsxml", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	configPath := fs.StringP("config", "c", os.Getenv("EWSCORE_CONFIG"), "TOML configuration file")
	version := fs.String("version", "", "requested server version, e.g. Exchange2013")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	colorMode := fs.String("color", "", "colored output: auto, always or never")
	compact := fs.Bool("compact", false, "print markup without indentation")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if fs.Changed("version") {
		if cfg.Version, err = propdef.ParseVersion(*version); err != nil {
			return err
		}
	}
	if fs.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	if fs.Changed("color") {
		cfg.Color = config.ColorMode(*colorMode)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr, fs)
		return errUsage
	}

	e := &env{
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel})),
		registry: schema.NewRegistry(),
		compact:  *compact,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		colors:   newPalette(cfg.Color.Enabled(isTerminal(stdout))),
	}
	e.logger.Debug("configured", "version", cfg.Version.String(), "shape", cfg.Shape.String(), "summary_only", cfg.SummaryOnly)

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "load":
		return e.load(cmdArgs)
	case "update":
		return e.update(cmdArgs)
	case "create":
		return e.create(cmdArgs)
	case "schema":
		return e.schema(cmdArgs)
	case "version":
		fmt.Fprintf(stdout, "ewsxml %s\n", ewscore.Version)
		return nil
	case "help":
		usage(stdout, fs)
		return nil
	default:
		usage(stderr, fs)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage: ewsxml [flags] <command> [command flags] [FILE]

Commands:
  load     print the properties of the entities in FILE
  update   apply edits to the entity in FILE and print the update
  create   build a new entity and print the create markup
  schema   list schemas, or the properties of one schema
  version  print the tool version

FILE defaults to stdin.

Flags:
%s`, fs.FlagUsages())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newFlagSet returns the flag set of a command.
func (e *env) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ewsxml "+name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// open returns the input named by args: one file, "-" or nothing for stdin.
func (e *env) open(args []string) (io.Reader, func(), error) {
	switch {
	case len(args) > 1:
		return nil, nil, fmt.Errorf("%w: more than one input file", errUsage)
	case len(args) == 0 || args[0] == "-":
		return e.stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
