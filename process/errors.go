package process

import "github.com/surgicalcoder/deploymentharness/errors"

// IsLaunchError reports whether err means the child could not be started.
func IsLaunchError(err error) bool {
	return errors.HasCode(err, errors.ErrCodeLaunchFailed)
}

// IsWaitError reports whether err means waiting for the child failed.
func IsWaitError(err error) bool {
	return errors.HasCode(err, errors.ErrCodeWaitFailed)
}

// IsCanceled reports whether the run was stopped by its context.
func IsCanceled(err error) bool {
	return errors.HasCode(err, errors.ErrCodeCanceled) || errors.HasCode(err, errors.ErrCodeTimeout)
}
