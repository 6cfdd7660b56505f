package validators

import (
	"errors"
	"strings"
)

var (
	ErrPhoneEmpty   = errors.New("no phone number provided")
	ErrPhoneInvalid = errors.New("invalid phone number provided")
)

// PhoneValidator accepts E.164-ish numbers: a leading + followed by
// 7 to 15 digits. Anything fancier is the SMS gateway's problem.
func PhoneValidator(p string) error {
	if p == "" {
		return ErrPhoneEmpty
	}

	if !strings.HasPrefix(p, "+") {
		return ErrPhoneInvalid
	}

	digits := p[1:]
	if len(digits) < 7 || len(digits) > 15 {
		return ErrPhoneInvalid
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return ErrPhoneInvalid
		}
	}

	return nil
}
