// Package process launches one external program, optionally captures its
// stdout and stderr line by line, and notifies observers as the child is
// created, writes output and terminates.
//
// Run blocks until the child has exited and both output streams are drained,
// then returns the captured stdout. Each captured line is terminated by "\n"
// in the returned text.
//
//	out, err := process.Run(ctx, "git", "status --short")
//
//	r := process.NewRunner(process.WithGracePeriod(2 * time.Second))
//	res, err := r.RunResult(ctx, process.Command{Binary: "make", Args: []string{"test"}},
//	    process.ObserverFuncs{
//	        Output: func(l process.Line) { fmt.Println(l.Text) },
//	    })
//
// Launch failures and wait failures are returned as errors.AppError with
// codes LAUNCH_FAILED and WAIT_FAILED. A non-zero exit code is not an error.
// Canceling ctx sends SIGTERM to the child's process group, then SIGKILL
// after the grace period; the run still reports termination and returns
// what was captured along with a CANCELED or TIMEOUT error.
package process
