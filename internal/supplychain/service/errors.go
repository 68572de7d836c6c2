package service

import (
	"context"
	"errors"

	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/platform/sentinel"
)

// translate maps store and lock failures onto engine error codes. Coded
// errors pass through.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeInvalidTransition, what+": entity already exists for contract")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, what+" timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, what)
	}
}
