package main

import (
	"errors"
	"fmt"

	"slidedeck/database"
	"slidedeck/export"
	"slidedeck/importer"
	"slidedeck/native"
	"slidedeck/pack"
	"slidedeck/store"
)

// Service names used in error messages and logs.
const (
	serviceConfig = "config"
	serviceDecks  = "decks"
	serviceExport = "export"
	serviceImport = "import"
)

// ServiceError tells which facade operation failed and, when known, on
// which deck, version or file.
type ServiceError struct {
	Service   string
	Operation string
	Target    string
	Err       error
}

// Error formats as "[Service.Operation] message", with the target quoted
// before the message when set.
func (e *ServiceError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("[%s.%s] %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("[%s.%s] %q: %v", e.Service, e.Operation, e.Target, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WrapError attaches service context to err. A nil err stays nil.
func WrapError(service, operation string, err error) error {
	return WrapTargetError(service, operation, "", err)
}

// WrapTargetError is WrapError naming what the operation ran on. An err
// that already carries the same service context is returned as is.
func WrapTargetError(service, operation, target string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) && se.Service == service && se.Target == target {
		return err
	}
	return &ServiceError{Service: service, Operation: operation, Target: target, Err: err}
}

// WrapOperationError wraps err as "failed to {operation}: err".
func WrapOperationError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// Exit codes of the command line.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitBadInput = 3
	exitNotFound = 4
)

// exitCode maps domain errors to exit codes so scripts can tell a bad file
// from a missing one.
func exitCode(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, export.ErrUnknownFormat), errors.As(err, &verr):
		return exitUsage
	case errors.Is(err, importer.ErrInvalidFormat),
		errors.Is(err, importer.ErrUnsupportedFile),
		errors.Is(err, native.ErrMalformedDocument),
		errors.Is(err, pack.ErrInvalidPack),
		errors.Is(err, pack.ErrWrongPassword),
		errors.Is(err, pack.ErrPasswordRequired):
		return exitBadInput
	case errors.Is(err, store.ErrNotFound), errors.Is(err, database.ErrVersionNotFound):
		return exitNotFound
	}
	return exitFailure
}

var errUsage = errors.New("usage")
