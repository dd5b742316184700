package record

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Principal is an opaque caller identity. Ownership checks compare principals
// with ==; no other relation between principals exists.
type Principal string

// ErrEmptyPrincipal is returned when a caller identity is blank.
var ErrEmptyPrincipal = errors.New("principal must not be empty")

// ParsePrincipal turns user-supplied text into a Principal.
//
// The value is NFC normalized so that canonically equivalent spellings
// ("é" as one code point or as e + combining accent) name the same principal.
// Surrounding whitespace is significant and rejected only when the value is
// entirely blank.
func ParsePrincipal(s string) (Principal, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyPrincipal
	}
	return Principal(norm.NFC.String(s)), nil
}

// String implements fmt.Stringer.
func (p Principal) String() string {
	return string(p)
}
