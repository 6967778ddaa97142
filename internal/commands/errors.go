package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to wrapped command errors so hosts can match on them
// without parsing messages.
const (
	CodeCommandInvalid  = "BLOG_COMMAND_INVALID"
	CodeCommandCanceled = "BLOG_COMMAND_CANCELED"
	CodeCommandTimeout  = "BLOG_COMMAND_TIMEOUT"
	CodeCommandAborted  = "BLOG_COMMAND_ABORTED"
	CodeCommandFailed   = "BLOG_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "publish command rejected by validation").
		WithTextCode(CodeCommandInvalid)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	msg, code := "publish command aborted", CodeCommandAborted
	switch {
	case errors.Is(err, context.Canceled):
		msg, code = "publish command canceled", CodeCommandCanceled
	case errors.Is(err, context.DeadlineExceeded):
		msg, code = "publish command timed out", CodeCommandTimeout
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "publish command failed").
		WithTextCode(CodeCommandFailed)
}
