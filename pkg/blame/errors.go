package blame

import (
	"context"
	"errors"
)

// storeErr marks an error as originating from the object-store
// collaborator (commit/tree/blob lookup) rather than from the diff
// engine itself. runWalk uses this to decide whether a per-commit diff
// failure aborts the whole walk (store) or only abandons that one
// commit (diff engine), per spec §4.5.4's error-handling split.
type storeErr struct{ err error }

func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	return &storeErr{err: err}
}

func (e *storeErr) Error() string { return e.err.Error() }
func (e *storeErr) Unwrap() error { return e.err }

func isStoreErr(err error) bool {
	var se *storeErr
	return errors.As(err, &se)
}

// abortErr marks an error as caller cancellation rather than any
// engine failure, so it surfaces as the Aborted kind instead of
// StoreError.
type abortErr struct{ err error }

func wrapAbort(err error) error {
	if err == nil {
		return nil
	}
	return &abortErr{err: err}
}

func (e *abortErr) Error() string { return e.err.Error() }
func (e *abortErr) Unwrap() error { return e.err }

func isAbortErr(err error) bool {
	var ae *abortErr
	return errors.As(err, &ae)
}

// checkAborted reports ctx's cancellation, if any, as an abortErr.
// Called at the walk-loop and diff-driver boundaries so a cancelled
// context halts the blame promptly instead of running the walk to
// completion first.
func checkAborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrapAbort(context.Cause(ctx))
	}
	return nil
}
