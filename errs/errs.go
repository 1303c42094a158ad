// Package errs defines the failure kinds of the resolve pipeline and the proxies.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInput indicates a malformed request: missing season/episode or url parameter.
	ErrInput = errors.New("invalid input")
	// ErrTransport indicates a connection, TLS, timeout or body read failure upstream.
	ErrTransport = errors.New("upstream transport")
	// ErrStructure indicates a required element or pattern was absent from a scraped page.
	ErrStructure = errors.New("unexpected page structure")
	// ErrDecode indicates no stream URL could be recovered from the final page.
	ErrDecode = errors.New("decode failed")
	// ErrRewrite indicates a playlist could not be rewritten.
	ErrRewrite = errors.New("rewrite failed")
)

// Error carries a kind, the short message surfaced to clients, and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error against its kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// New creates an error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping cause.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Status maps an error to the HTTP status the front door answers with.
func Status(err error) int {
	if errors.Is(err, ErrInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Detail renders the message together with its cause, for logs.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return err.Error()
}
