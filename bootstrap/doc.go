// Package bootstrap runs a one-shot task with the harness lifecycle:
// validated config, a logger, start hooks, signal-driven cancellation and
// stop hooks that always run, even when the task fails.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnStart(setupTelemetry)
//	app.OnStop(flushMetrics)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := runner.Run(ctx, cmd, nil)
//	    return err
//	})
package bootstrap
