package rental

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was refused.
type Kind string

const (
	NotFound               Kind = "NOT_FOUND"
	ItemOccupied           Kind = "ITEM_OCCUPIED"
	AlreadyQueued          Kind = "ALREADY_QUEUED"
	QueueNotSupported      Kind = "QUEUE_NOT_SUPPORTED"
	DailyCapExceeded       Kind = "DAILY_CAP_EXCEEDED"
	ExtendBlockedByWaiters Kind = "EXTEND_BLOCKED_BY_WAITERS"
	ValidationError        Kind = "VALIDATION_ERROR"
	PersistenceError       Kind = "PERSISTENCE_ERROR"

	// AlreadyExists guards the (name, phone) identity of kiosk users.
	AlreadyExists Kind = "ALREADY_EXISTS"
)

// Error is the only error type the Service returns. Message is localized
// and safe to show; Detail names the offending field for validation
// failures; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, rental.ErrItemOccupied).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound               = &Error{Kind: NotFound}
	ErrItemOccupied           = &Error{Kind: ItemOccupied}
	ErrAlreadyQueued          = &Error{Kind: AlreadyQueued}
	ErrQueueNotSupported      = &Error{Kind: QueueNotSupported}
	ErrDailyCapExceeded       = &Error{Kind: DailyCapExceeded}
	ErrExtendBlockedByWaiters = &Error{Kind: ExtendBlockedByWaiters}
	ErrValidation             = &Error{Kind: ValidationError}
	ErrPersistence            = &Error{Kind: PersistenceError}
	ErrAlreadyExists          = &Error{Kind: AlreadyExists}
)

// KindOf reports the kind of err. Errors that did not come from this
// package are store failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return PersistenceError
}

// AsError converts any error into an *Error, localizing foreign errors as
// PERSISTENCE_ERROR.
func AsError(err error, locale string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: PersistenceError, Message: localize(locale, msgPersistence), Err: err}
}

func (s *Service) fail(key messageKey, format string, args ...any) *Error {
	e := &Error{Kind: key.kind(), Message: localize(s.locale, key)}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

func (s *Service) storeErr(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: PersistenceError, Message: localize(s.locale, msgPersistence), Err: err}
}

// Invalid builds a VALIDATION_ERROR for input rejected before it reaches
// the Service, such as a malformed request body.
func Invalid(locale, detail string) *Error {
	return &Error{Kind: ValidationError, Message: localize(locale, msgValidation), Detail: detail}
}

// Missing builds a NOT_FOUND error.
func Missing(locale, detail string) *Error {
	return &Error{Kind: NotFound, Message: localize(locale, msgNotFound), Detail: detail}
}
