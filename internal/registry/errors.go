package registry

import (
	"errors"
	"fmt"

	"github.com/roach88/recordregistry/internal/record"
)

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// CodeRecordNotFound indicates the referenced id was never assigned.
	CodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// CodeNotOwner indicates an update by someone other than the record's owner.
	CodeNotOwner ErrorCode = "NOT_OWNER"
)

var (
	// ErrRecordNotFound matches any *Error with CodeRecordNotFound.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotOwner matches any *Error with CodeNotOwner.
	ErrNotOwner = errors.New("not the owner")

	// ErrCorruptLog is returned when replayed events contradict the
	// registry's invariants (a skipped id, an update to an unknown record).
	ErrCorruptLog = errors.New("registry: corrupt event log")
)

// Error is a rejected registry call. It is terminal for that call: retrying
// the same call against the same state fails the same way.
type Error struct {
	Code     ErrorCode
	RecordID int64
	Caller   record.Principal
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeNotOwner:
		return fmt.Sprintf("%s: %s (record=%d, caller=%s)", e.Code, ErrNotOwner, e.RecordID, e.Caller)
	case CodeRecordNotFound:
		return fmt.Sprintf("%s: %s (record=%d)", e.Code, ErrRecordNotFound, e.RecordID)
	default:
		return fmt.Sprintf("%s (record=%d)", e.Code, e.RecordID)
	}
}

// Is lets errors.Is match the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrRecordNotFound:
		return e.Code == CodeRecordNotFound
	case ErrNotOwner:
		return e.Code == CodeNotOwner
	}
	return false
}

func notFound(id int64) *Error {
	return &Error{Code: CodeRecordNotFound, RecordID: id}
}

func notOwner(id int64, caller record.Principal) *Error {
	return &Error{Code: CodeNotOwner, RecordID: id, Caller: caller}
}

// IsNotFound reports whether err is a RecordNotFound rejection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsNotOwner reports whether err is a NotOwner rejection.
func IsNotOwner(err error) bool {
	return errors.Is(err, ErrNotOwner)
}

// CodeOf returns the code of a registry rejection, or "" for any other error.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
