package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/vikoba/internal/engine"
	"github.com/mmynk/vikoba/internal/storage"
)

// toConnectError maps engine failures onto Connect codes. The message is
// passed through unchanged.
func toConnectError(err error) *connect.Error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, engine.ErrUnknownGroup), errors.Is(err, engine.ErrUnknownMember):
		code = connect.CodeNotFound
	case errors.Is(err, engine.ErrInvalidCycle),
		errors.Is(err, engine.ErrAmountMismatch),
		errors.Is(err, engine.ErrInvalidGroup):
		code = connect.CodeInvalidArgument
	case errors.Is(err, engine.ErrNotReady),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrAlreadyCompleted):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, engine.ErrNotAuthorized):
		code = connect.CodePermissionDenied
	case errors.Is(err, storage.ErrConflict):
		code = connect.CodeAborted
	}
	return connect.NewError(code, err)
}
