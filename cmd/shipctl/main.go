package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"shipctl/internal/config"
	"shipctl/internal/console"
	"shipctl/internal/deployer"
	"shipctl/internal/dirstack"
	applog "shipctl/internal/log"
	"shipctl/internal/runner"
	"shipctl/pkg/sshutil"
)

// app carries the collaborators shared by every command
type app struct {
	runner     runner.Runner
	console    *console.Console
	dirs       *dirstack.Stack
	connect    deployer.UploaderFactory
	readSecret func() (string, error)

	configPath string
	logLevel   string
	logFormat  string
	cfg        *config.Config
}

func newApp() *app {
	return &app{
		runner:     runner.ExecRunner{},
		console:    console.Std(),
		dirs:       dirstack.New(),
		connect:    dialSFTP,
		readSecret: promptSecret,
	}
}

func dialSFTP(alias string) (deployer.Uploader, error) {
	client, err := sshutil.NewClient(alias)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shipctl",
		Short:         "Build and deploy the dotnet solution and frontend application",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "Project config file (optional)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text, json")

	rootCmd.AddCommand(newDeployCmd(a), newDotnetCmd(a), newWebpackCmd(a))
	return rootCmd
}

// setup configures logging and loads the project file before any command runs
func (a *app) setup(cmd *cobra.Command) error {
	logCfg := applog.FromEnv()
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	if a.logFormat != "" {
		logCfg.Format = applog.Format(a.logFormat)
	}
	logCfg.Output = cmd.ErrOrStderr()
	slog.SetDefault(applog.New(logCfg))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	slog.Debug("config loaded", "path", a.configPath)
	return nil
}

// exitCode reports anything the commands have not already printed and maps
// err to the process status
func exitCode(c *console.Console, err error) int {
	if err == nil {
		return runner.ExitSuccess
	}

	var invalid *deployer.ValidationError
	var exitErr *runner.ExitError
	switch {
	case errors.As(err, &invalid):
		// Problems were printed by the command
	case errors.As(err, &exitErr):
		// The failing step printed its own message; only surface the cause
		if exitErr.Cause != nil {
			c.Error(err.Error())
		}
		slog.Debug("command failed", "code", exitErr.Code, "error", err)
	default:
		c.Error(err.Error())
	}
	return runner.ExitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(a.console, err))
}
