// Package cos provides small low-level types and helpers shared by the
// relay: error types, an HTTP error-response writer, and fatal-startup
// logging, trimmed down from the common low-level package this one
// descends from.
package cos

import (
	"fmt"
	"net/http"
	"os"

	"github.com/aistorelabs/rendezvous/cmn/nlog"
)

type (
	// ErrNotFound is returned when a lookup by opaque id fails.
	ErrNotFound struct {
		what string
	}
	// ErrForbidden is returned when a capability check (secret) fails.
	ErrForbidden struct {
		what string
	}
)

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

func NewErrForbidden(format string, a ...any) *ErrForbidden {
	return &ErrForbidden{fmt.Sprintf(format, a...)}
}

func (e *ErrForbidden) Error() string { return e.what }

// WriteErr writes a short plain-text error response. It never panics on a
// write failure -- the client may already be gone.
func WriteErr(w http.ResponseWriter, status int, msg string) {
	WriteText(w, status, msg)
}

// WriteText writes a short plain-text response of any status, success
// included -- request_id/retire_id/upload's fixed success bodies use this
// directly rather than a separate "success writer".
func WriteText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set(HdrContentType, ContentText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

const fatalPrefix = "FATAL ERROR: "

// ExitLogf logs a fatal startup error and exits nonzero -- the fail-fast
// convention this codebase's daemons use for config and bind errors.
func ExitLogf(f string, a ...any) {
	msg := fmt.Sprintf(fatalPrefix+f, a...)
	nlog.ErrorDepth(1, msg)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
