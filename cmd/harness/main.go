// Command harness runs one child process through the deployment harness
// runner, forwarding its output and exiting with its status.
//
//	harness [flags] <command> [args...]
//	harness --args "-c 'echo hi'" sh
//
// Flags after the command name are passed to the child. Every flag with a
// config key can also be set in config.yml or through HARNESS_* variables;
// an explicit flag wins.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/surgicalcoder/deploymentharness/bootstrap"
	"github.com/surgicalcoder/deploymentharness/cmd/harness/tui"
	"github.com/surgicalcoder/deploymentharness/config"
	"github.com/surgicalcoder/deploymentharness/errors"
	"github.com/surgicalcoder/deploymentharness/logger"
	"github.com/surgicalcoder/deploymentharness/observability"
	"github.com/surgicalcoder/deploymentharness/observability/promobserver"
	"github.com/surgicalcoder/deploymentharness/process"
	"github.com/surgicalcoder/deploymentharness/version"
)

const exitUsage = 64

// bindings maps flags to config keys.
var bindings = config.FlagBindings{
	"grace-period":     "runner.grace_period",
	"timeout":          "runner.timeout",
	"max-line-bytes":   "runner.max_line_bytes",
	"no-capture":       "runner.passthrough",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
	"metrics-textfile": "telemetry.prometheus_textfile",
}

type options struct {
	dir         string
	argLine     string
	env         []string
	configFile  string
	envFile     string
	tui         bool
	printConfig bool
	version     bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func newFlagSet(stderr io.Writer, o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("harness", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: harness [flags] <command> [args...]")
		fs.PrintDefaults()
	}

	fs.StringVarP(&o.dir, "dir", "C", "", "working directory of the child")
	fs.StringVar(&o.argLine, "args", "", "argument string appended after the positional arguments")
	fs.StringArrayVarP(&o.env, "env", "e", nil, "extra environment variable KEY=VALUE (repeatable)")
	fs.StringVarP(&o.configFile, "config", "c", "", "config file (default: search for config.yml)")
	fs.StringVar(&o.envFile, "env-file", "", ".env file loaded before reading HARNESS_* variables")
	fs.BoolVar(&o.tui, "tui", false, "show a live terminal view of the run")
	fs.BoolVar(&o.printConfig, "print-config", false, "print the effective configuration and exit")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	fs.Bool("no-capture", false, "let the child write straight to this terminal")
	fs.Duration("grace-period", 0, "time between SIGTERM and SIGKILL when stopping the child")
	fs.Duration("timeout", 0, "stop the child after this long (0 disables)")
	fs.Int("max-line-bytes", 0, "longest output line delivered in one piece")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (console, json)")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(stderr, &o)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return exitUsage
	}

	if o.version {
		if err := version.Write(stdout, "harness"); err != nil {
			return 1
		}
		return 0
	}

	cfg, err := loadConfig(fs, o)
	if err != nil {
		fmt.Fprintf(stderr, "harness: %v\n", err)
		return exitCode(err)
	}

	logOut := stderr
	if o.tui {
		logOut = io.Discard
	}
	logger.SetGlobalLogger(logger.NewWithWriter(logOut, &cfg.Logging, cfg.Name))
	logger.RegisterDefaults("harness", "process")
	info := version.Get()

	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithLogger(logger.Get("harness")),
		bootstrap.WithVersion(info.Short()),
	)
	if err != nil {
		fmt.Fprintf(stderr, "harness: %v\n", err)
		return exitCode(err)
	}

	if o.printConfig {
		if err := config.Dump(stdout, cfg); err != nil {
			fmt.Fprintf(stderr, "harness: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}
	if o.tui && cfg.Runner.Passthrough {
		fmt.Fprintln(stderr, "harness: --tui needs captured output and cannot be combined with --no-capture")
		return exitUsage
	}

	log := app.Logger
	log.Info("harness starting", info.Fields())

	app.OnStart(func(ctx context.Context) error {
		shutdown, err := observability.Setup(ctx, &cfg.Telemetry, cfg.Name, info.Short(), cfg.Environment)
		if err != nil {
			log.WithError(err).Warn("telemetry disabled")
		}
		app.OnStop(func(ctx context.Context) error { return shutdown(ctx) })
		return nil
	})

	runnerOpts := []process.Option{
		process.WithLogger(logger.Get("process")),
		process.WithPassthroughOutput(stdout, stderr),
	}
	if m, err := observability.NewProcessMetrics(observability.Meter("harness")); err != nil {
		log.WithError(err).Warn("process metrics unavailable")
	} else {
		runnerOpts = append(runnerOpts, process.WithMetrics(m))
	}

	if path := cfg.Telemetry.PrometheusTextfile; path != "" {
		reg := prometheus.NewRegistry()
		runnerOpts = append(runnerOpts, process.WithObserver(promobserver.MustNew(reg)))
		app.OnStop(func(context.Context) error {
			if err := prometheus.WriteToTextfile(path, reg); err != nil {
				return fmt.Errorf("writing metrics textfile %s: %w", path, err)
			}
			return nil
		})
	}
	runner := process.NewRunnerFromConfig(cfg.Runner, runnerOpts...)

	rest := fs.Args()
	cmd := process.Command{
		Binary:  rest[0],
		Args:    rest[1:],
		ArgLine: o.argLine,
		Dir:     o.dir,
		Env:     o.env,
	}

	var (
		res    *process.Result
		runErr error
	)
	_ = app.RunTask(ctx, func(ctx context.Context) error {
		if o.tui {
			res, runErr = runWithTUI(ctx, runner, cmd, stdin, stdout, stderr)
			return runErr
		}
		cmd.Stdin = stdin
		res, runErr = runner.RunResult(ctx, cmd, nil)
		if res != nil {
			_, _ = io.WriteString(stdout, res.Stdout)
		}
		return runErr
	})

	// Stop hook failures are logged by the app and do not change the
	// child's status.
	if runErr != nil {
		log.Error("run failed", logger.MergeWithError(logger.Fields("code", string(errors.Code(runErr))), runErr))
		return exitCode(runErr)
	}
	if res == nil {
		return 1
	}
	if res.Signal != "" {
		return 1
	}
	return res.ExitCode
}

// loadConfig reads config.yml, .env, HARNESS_* variables and flags, in
// increasing precedence, and applies defaults. Validation happens in
// bootstrap.NewApp.
func loadConfig(fs *pflag.FlagSet, o options) (*config.HarnessConfig, error) {
	var cfg config.HarnessConfig
	err := config.LoadConfig("harness", &cfg,
		config.WithConfigFile(o.configFile),
		config.WithEnvFile(o.envFile),
		config.WithEnvPrefix("HARNESS"),
		config.WithFlags(fs, bindings),
	)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// runWithTUI runs cmd while a bubbletea program renders its events. The
// child is stopped if the program exits first.
func runWithTUI(ctx context.Context, runner *process.Runner, cmd process.Command, stdin io.Reader, stdout, stderr io.Writer) (*process.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := process.NewEventStream(64)
	model := tui.New(tui.Config{
		Command: cmd.String(),
		Events:  stream.Events(),
		Cancel:  cancel,
	})

	var (
		res    *process.Result
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		res, runErr = runner.RunResult(runCtx, cmd, stream)
		stream.Close()
	}()

	final, err := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(stdin),
		tea.WithOutput(stdout),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		cancel()
	}
	// Keep the stream flowing so the run can finish.
	go func() {
		for range stream.Events() {
		}
	}()
	<-done

	if m, ok := final.(tui.Model); ok {
		if s := m.Summary(); s != "" {
			fmt.Fprintln(stderr, s)
		}
	}
	return res, runErr
}

func exitCode(err error) int {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.ExitCode()
	}
	return 1
}
