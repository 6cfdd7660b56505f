// Package validators holds the small input checks shared by the auth
// and upload handlers.
package validators

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

// EmailValidator accepts anything net/mail parses as a single
// address. Whether the mailbox actually exists is the SMTP server's
// problem, the login link just bounces for a bad one.
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(e)
	if err != nil {
		return ErrEmailInvalid
	}

	// Reject display-name forms like "Bob <b@x.com>", only the bare
	// address belongs in the tokens table
	if addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
