package locale

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLocale = errors.New("unknown locale")

type Locale string

const (
	CS Locale = "cs"
	EN Locale = "en"

	Default = CS
)

// Parse accepts the two supported locale tags, case-insensitively.
func Parse(s string) (Locale, error) {
	switch l := Locale(strings.ToLower(strings.TrimSpace(s))); l {
	case CS, EN:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
	}
}

// Pick returns cs or en depending on l.
func Pick(l Locale, cs, en string) string {
	if l == EN {
		return en
	}
	return cs
}
