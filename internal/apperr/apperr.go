package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuth
	KindForbidden
	KindValidation
	KindNotFound
	KindUpstream
	KindTaskTimeout
	KindTaskFailed
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_generation"
	case KindTaskTimeout:
		return "async_task_timeout"
	case KindTaskFailed:
		return "async_task_failed"
	case KindUpload:
		return "upload"
	default:
		return "internal"
	}
}

// Error carries a Kind so handlers and the orchestrator can classify failures
// without string matching. Op names the component that produced it.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works
// through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrAuth        = &Error{Kind: KindAuth}
	ErrForbidden   = &Error{Kind: KindForbidden}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrUpstream    = &Error{Kind: KindUpstream}
	ErrTaskTimeout = &Error{Kind: KindTaskTimeout}
	ErrTaskFailed  = &Error{Kind: KindTaskFailed}
	ErrUpload      = &Error{Kind: KindUpload}
)

func New(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func Auth(msg string) *Error { return New(KindAuth, "", msg, nil) }
func Forbidden(msg string) *Error { return New(KindForbidden, "", msg, nil) }
func Validation(msg string) *Error { return New(KindValidation, "", msg, nil) }
func NotFound(what string) *Error { return New(KindNotFound, "", what+" not found", nil) }

func Upstream(op, msg string, err error) *Error { return New(KindUpstream, op, msg, err) }
func TaskTimeout(op, msg string) *Error { return New(KindTaskTimeout, op, msg, nil) }
func TaskFailed(op, msg string, err error) *Error { return New(KindTaskFailed, op, msg, err) }
func Upload(op, msg string, err error) *Error { return New(KindUpload, op, msg, err) }

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
