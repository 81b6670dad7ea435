// Package errors provides the structured error type used across the harness.
//
// Every failure surfaced by a process run is an *AppError carrying a
// machine-readable code, a human message, optional details and the
// underlying cause. Callers branch on the code rather than on message text:
//
//	out, err := runner.Run(ctx, cmd, nil)
//	if errors.HasCode(err, errors.ErrCodeLaunchFailed) {
//	    // the binary could not be started
//	}
package errors
