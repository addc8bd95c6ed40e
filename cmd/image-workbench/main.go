package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"image-workbench/internal/config"
	"image-workbench/internal/logger"
)

const (
	AppName = "Image Workbench"
	AppID   = "com.imageprocessing.image-workbench"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type options struct {
	configPath  string
	ops         stringList
	outDir      string
	jobs        int
	format      string
	logLevel    string
	showVersion bool
	inputs      []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("image-workbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to the TOML configuration file")
	fs.Var(&opts.ops, "op", "operation to apply in batch mode, e.g. median:5 (repeatable)")
	fs.StringVar(&opts.outDir, "out", "out", "output directory for batch mode")
	fs.IntVar(&opts.jobs, "jobs", 0, "files processed in parallel in batch mode (default from config)")
	fs.StringVar(&opts.format, "format", "", "force the output format in batch mode (png, jpeg, bmp, tiff)")
	fs.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  image-workbench [flags]                          start the editor\n")
		fmt.Fprintf(fs.Output(), "  image-workbench -op SPEC [-op SPEC...] FILES...  edit files without a window\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.inputs = fs.Args()

	if len(opts.ops) == 0 && len(opts.inputs) > 0 {
		return opts, errors.New("input files given without any -op")
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.showVersion {
		fmt.Printf("%s %s (%s)\n", AppName, version, runtime.Version())
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.logLevel != "" {
		if _, err := logger.ParseLevel(opts.logLevel); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg.Logging.Level = opts.logLevel
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()

	if len(opts.ops) > 0 {
		return runBatch(cfg, opts, log)
	}

	application, err := NewApplication(cfg, log)
	if err != nil {
		log.Error("Main", err, map[string]interface{}{"stage": "init"})
		return 1
	}
	application.Run()
	return 0
}

func newLogger(cfg config.Config) (logger.Logger, func(), error) {
	if cfg.Logging.File == "" {
		return logger.NewConsoleLogger(cfg.LogLevel()), func() {}, nil
	}
	log, file, err := logger.NewFileLogger(cfg.Logging.File, cfg.LogLevel())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log, func() { file.Close() }, nil
}
