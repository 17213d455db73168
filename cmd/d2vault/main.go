package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/d2vault/d2vault/internal/config"
	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/d2vault/d2vault/internal/data"
	"github.com/d2vault/d2vault/internal/library"
	"github.com/d2vault/d2vault/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "v0.1.0"

// errFailed makes the process exit with status 1 after a report that
// already described the failures.
var errFailed = errors.New("one or more files failed")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		}
		os.Exit(1)
	}
}

const usage = `usage: d2vault [-config file] <command> [flags] paths...

commands:
  inspect [-where expr] [-items]  decode saves and print a summary
  check                           decode saves and run the lint scripts
  import                          decode saves and store them in PostgreSQL
`

func run(args []string) error {
	fs := flag.NewFlagSet("d2vault", flag.ContinueOnError)
	cfgPath := fs.String("config", os.Getenv("D2VAULT_CONFIG"), "config file (TOML)")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, log: log, out: newPrinter(os.Stdout)}
	defer a.close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "inspect":
		return a.inspect(ctx, rest)
	case "check":
		return a.check(ctx, rest)
	case "import":
		return a.importSaves(ctx, rest)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// app holds what the subcommands share.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	out    *printer
	engine *scripting.Engine
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
}

// scripts returns the Lua engine, loading it on first use.
func (a *app) scripts() (*scripting.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	eng, err := scripting.NewEngine(a.cfg.Decoder.ScriptsDir, a.log.Named("lua"))
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	a.engine = eng
	return eng, nil
}

// statWidths resolves the configured stat width source. A nil result leaves
// the decoder on its built-in table.
func (a *app) statWidths() (d2s.StatWidths, error) {
	switch a.cfg.Decoder.StatWidths {
	case config.StatWidthsYAML:
		t, err := data.LoadStatCostTable(a.cfg.Decoder.StatCostPath)
		if err != nil {
			return nil, err
		}
		a.log.Debug("stat widths from yaml", zap.Int("stats", t.Count()))
		return t, nil
	case config.StatWidthsLua:
		return a.scripts()
	default:
		return nil, nil
	}
}

func (a *app) newDecoder() (*d2s.Decoder, error) {
	opts := []d2s.Option{d2s.WithLogger(a.log.Named("d2s"))}
	widths, err := a.statWidths()
	if err != nil {
		return nil, fmt.Errorf("stat widths: %w", err)
	}
	if widths != nil {
		opts = append(opts, d2s.WithStatWidths(widths))
	}
	if a.cfg.Decoder.VerifyChecksum {
		opts = append(opts, d2s.WithChecksumVerification())
	}
	if a.cfg.Decoder.VerifySize {
		opts = append(opts, d2s.WithSizeVerification())
	}
	return d2s.NewDecoder(opts...), nil
}

// decodeAll collects the save files named by paths and decodes them.
func (a *app) decodeAll(ctx context.Context, paths []string) ([]library.Result, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths given")
	}
	files, err := library.Collect(paths, a.cfg.Library.Extension)
	if err != nil {
		return nil, err
	}
	dec, err := a.newDecoder()
	if err != nil {
		return nil, err
	}
	lib := library.New(dec, a.cfg.Library.Workers, a.log.Named("library"))
	return lib.DecodeAll(ctx, files)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
