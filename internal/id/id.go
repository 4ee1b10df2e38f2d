// Package id parses and formats the numeric identifiers the store assigns to
// books and greetings.
package id

import (
	"fmt"
	"strconv"

	domainerrors "github.com/listenupapp/guestbook/internal/errors"
)

// Width is the number of decimal digits needed for any positive int64.
// Keys that embed identifiers zero-pad to this width so that byte order
// matches numeric order.
const Width = 19

// Parse converts a decimal path segment into an identifier.
// Text that is not a base-10 int64 yields a validation error.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, domainerrors.Wrapf(err, domainerrors.CodeValidation, "invalid id %q", s)
	}
	return v, nil
}

// Format renders an identifier the way it appears in URLs.
func Format(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Key renders an identifier zero-padded to Width digits.
func Key(v int64) string {
	return fmt.Sprintf("%0*d", Width, v)
}
