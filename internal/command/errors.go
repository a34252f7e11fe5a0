package command

import "errors"

var (
	// ErrCommandFailed wraps the failure of one command inside a Multi.
	ErrCommandFailed = errors.New("command failed")

	// ErrNotExecuted is returned by Undo of a command that never ran.
	ErrNotExecuted = errors.New("command was not executed")
)
