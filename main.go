package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Brooklyn-Dev/Ultron-AI/command"
	"github.com/Brooklyn-Dev/Ultron-AI/config"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/app"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flags shared by every command.
type rootFlags struct {
	configPath string
	logLevel   string
	dryRun     bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:           "ultron",
		Short:         "Voice-driven game assistant",
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgent(cmd.Context(), f)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file (default <UserConfigDir>/ultron/config.json)")
	pf.StringVar(&f.logLevel, "log-level", "", "override log level: debug, info, warn, error")
	pf.BoolVar(&f.dryRun, "dry-run", false, "log input events instead of injecting them")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Start the agent (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runAgent(cmd.Context(), f)
			},
		},
		newParseCmd(),
		newConfigCmd(&f),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "ultron %s (%s, %s)\n", version, commit, date)
			},
		},
	)
	return root
}

func runAgent(ctx context.Context, f rootFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		NoColor:    cfg.Log.NoColor,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logCloser.Close()

	logger.Info("starting ultron", "version", version, "config", cfg.Path(), "dry_run", f.dryRun)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.Build(ctx, cfg, app.Options{DryRun: f.dryRun, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("close service", "error", err)
		}
	}()

	if err := svc.Run(ctx); err != nil {
		return err
	}
	logger.Info("goodbye", "status", svc.State().Status())
	return nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <command string>",
		Short: "Validate a command string and print what would be queued",
		Example: `  ultron parse "fly; delay(0.5); fire(3)"
  ultron parse "message(gg, false); shutdown"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printParse(cmd.OutOrStdout(), args[0])
		},
	}
}

// errDiagnostics makes `ultron parse` exit non-zero when any token failed.
var errDiagnostics = errors.New("command string has invalid tokens")

func printParse(w io.Writer, s string) error {
	cmds, diags := command.Parse(s)
	for i, c := range cmds {
		fmt.Fprintf(w, "%d\t%s\n", i+1, c)
	}
	for _, d := range diags {
		fmt.Fprintf(w, "skip\t%v\n", d)
	}
	if len(diags) > 0 {
		return errDiagnostics
	}
	return nil
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := f.configPath
				if path == "" {
					p, err := config.DefaultPath()
					if err != nil {
						return err
					}
					path = p
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective configuration (defaults, file and environment) to disk",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(f.configPath)
				if err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", cfg.Path())
				return nil
			},
		},
	)
	return cmd
}
