package lifecycle

import (
	"errors"
	"fmt"

	"bookshare_backend/internal/common"
)

// Kind classifies why an action was refused.
type Kind string

const (
	KindInvalidActor     Kind = "InvalidActor"
	KindForbidden        Kind = "Forbidden"
	KindInvalidState     Kind = "InvalidState"
	KindConflict         Kind = "Conflict"
	KindNotFound         Kind = "NotFound"
	KindStoreUnavailable Kind = "StoreUnavailable"
)

// Rejection is the typed outcome of a refused action.
type Rejection struct {
	Kind   Kind
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func reject(kind Kind, format string, args ...interface{}) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// NewRejection builds a rejection outside the engine, e.g. for a lost
// compare-and-set or an unavailable store.
func NewRejection(kind Kind, reason string) *Rejection {
	return &Rejection{Kind: kind, Reason: reason}
}

// KindOf extracts the rejection kind from err.
func KindOf(err error) (Kind, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind, true
	}
	return "", false
}

// APIError maps the rejection onto the HTTP error taxonomy.
func (r *Rejection) APIError() *common.APIError {
	var base *common.APIError
	switch r.Kind {
	case KindInvalidActor:
		base = common.ErrInvalidActor
	case KindForbidden:
		base = common.ErrForbidden
	case KindInvalidState:
		base = common.ErrInvalidState
	case KindConflict:
		base = common.ErrConflict
	case KindNotFound:
		base = common.ErrNotFound
	case KindStoreUnavailable:
		base = common.ErrStoreUnavailable
	default:
		base = common.ErrInternalServer
	}
	return base.WithDetails(r.Reason)
}

// ToAPIError converts rejections to API errors and passes anything else through.
func ToAPIError(err error) error {
	var r *Rejection
	if errors.As(err, &r) {
		return r.APIError()
	}
	return err
}
