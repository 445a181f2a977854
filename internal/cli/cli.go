package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
	"github.com/recyc-cli/recyc/internal/config"
	"github.com/recyc-cli/recyc/internal/debug"
	"github.com/recyc-cli/recyc/internal/env"
	"github.com/recyc-cli/recyc/internal/trash"
	"github.com/recyc-cli/recyc/internal/trash/recycle"
	"github.com/rs/xid"
	slogmulti "github.com/samber/slog-multi"
)

// Option is the CLI options structure
type Option struct {
	List    bool   `short:"l" long:"list" description:"List files in the recycle bin"`
	Restore bool   `short:"b" long:"restore" description:"Restore a file from the recycle bin"`
	Prune   string `long:"prune" description:"Remove files from the recycle bin" optional-value:"all" optional:"yes"`
	Config  string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`
	Rm   RmOption   `group:"Compatible (rm) Options"`
}

// MetaOption provides meta functionality options
type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

// RmOption provides compatibility with rm command options
type RmOption struct {
	Interactive bool `short:"i" description:"(dummy) Prompt before every removal"`
	Recursive   bool `short:"r" long:"recursive" description:"(dummy) Remove directories and their contents recursively"`
	Recursive2  bool `short:"R" description:"(dummy) Same as -r"`
	Force       bool `short:"f" long:"force" description:"Ignore nonexistent files"`
	Directory   bool `short:"d" long:"dir" description:"(dummy) Remove empty directories"`
	Verbose     bool `short:"v" long:"verbose" description:"Explain what is being done"`
}

// CLI represents the command-line interface
type CLI struct {
	version Version
	option  Option
	config  config.Config
	manager *trash.Manager
}

var runID = sync.OnceValue(func() string {
	return xid.New().String()
})

// Run is the main entry point for the CLI
func Run(v Version) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Name = v.AppName
	parser.Usage = "[-b | -l | --prune | files...]"

	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	if err := setupLogger(); err != nil {
		return err
	}
	defer slog.Debug("main function finished\n\n\n")
	slog.Debug("main function started",
		"version", v.Version,
		"revision", v.Revision,
		"buildDate", v.BuildDate,
	)

	// version and debug logs do not need config or a working backend
	switch {
	case opt.Meta.Version:
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	case opt.Meta.Debug != "":
		return debug.Logs(os.Stdout, opt.Meta.Debug == "live")
	}

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}

	manager, err := trash.NewManager(
		&trash.Config{
			Verbose: cfg.Core.Verbose || opt.Rm.Verbose,
			History: cfg.History,
			RunID:   runID(),
		},
		trash.WithStorage(recycle.NewStorage),
	)
	if err != nil {
		return err
	}

	cli := CLI{
		version: v,
		option:  opt,
		config:  cfg,
		manager: manager,
	}
	if err := cli.Run(args); err != nil {
		slog.Error("command failed", "error", err)
		return err
	}
	return nil
}

// Run executes the appropriate command based on options
func (c *CLI) Run(args []string) error {
	switch {
	case c.option.List:
		return c.List()
	case c.option.Restore:
		return c.Restore(args)
	case c.option.Prune != "":
		return c.Prune(c.option.Prune)
	default:
		return c.Put(args)
	}
}

func setupLogger() error {
	logDir := filepath.Dir(env.RECYC_LOG_PATH)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}
	}

	var fw io.Writer
	if file, err := os.OpenFile(env.RECYC_LOG_PATH, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fw = file
	} else {
		// failing to open the log file must not break the command itself
		fw = io.Discard
	}

	fileHandler := log.NewWithOptions(fw, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.DebugLevel,
	})

	var cw io.Writer = io.Discard
	if os.Getenv("DEBUG") != "" {
		cw = os.Stderr
	}

	logger := slog.New(slogmulti.Fanout(
		fileHandler,
		tint.NewHandler(cw, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}),
	))
	slog.SetDefault(logger.With("run_id", runID()))
	return nil
}
