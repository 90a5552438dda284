package domdrive

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/domdrive/dom"
	"github.com/hazyhaar/domdrive/internal/browser"
)

// Failure kinds surfaced through the command envelope. None are retried
// internally; re-resolving a page or re-extracting a stale snapshot is
// the caller's job.
var (
	// ErrLaunchFailed: the local Chrome could not be started.
	ErrLaunchFailed = browser.ErrLaunch
	// ErrConnectionFailed: the remote Chrome could not be attached.
	ErrConnectionFailed = browser.ErrConnect
	// ErrNavigationFailed: navigate or history move did not complete.
	ErrNavigationFailed = errors.New("domdrive: navigation failed")
	// ErrExtractionFailed: the in-page extraction routine could not run
	// or its result did not parse into the element schema.
	ErrExtractionFailed = dom.ErrExtraction
	// ErrElementNotFound: no live element matched the locator.
	ErrElementNotFound = errors.New("domdrive: element not found")
	// ErrTabOperationFailed: tab create/switch/close failed.
	ErrTabOperationFailed = browser.ErrTab
	// ErrNoActivePage: no open page qualifies as the action target.
	ErrNoActivePage = browser.ErrNoActivePage
	// ErrAmbiguousTarget: params carried both a selector and an index.
	ErrAmbiguousTarget = errors.New("domdrive: ambiguous target: specify selector or index, not both")
	// ErrMissingTarget: params carried neither a selector nor an index.
	ErrMissingTarget = errors.New("domdrive: missing target: specify selector or index")
	// ErrUnknownIndex: the index is not in the current snapshot's
	// registry. Expected after navigation; extract a new snapshot.
	ErrUnknownIndex = errors.New("domdrive: unknown element index")
)

// ActionError wraps an underlying-engine failure while applying an
// action. Never swallowed: it surfaces in the envelope's error field.
type ActionError struct {
	Command string
	Reason  string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("domdrive: %s failed: %s", e.Command, e.Reason)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func actionErr(command string, err error) *ActionError {
	return &ActionError{Command: command, Reason: err.Error(), Err: err}
}
