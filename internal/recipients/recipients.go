// Package recipients validates and normalizes report recipient addresses.
package recipients

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Entry is one persisted recipient. Keyed by the normalized address.
type Entry struct {
	Email   string    `json:"email"`
	AddedAt time.Time `json:"added_at"`
}

var (
	// ErrInvalid is returned for input that does not look like an email
	// address.
	ErrInvalid = errors.New("recipients: invalid email address")
	// ErrDuplicate is returned when the normalized address is already in
	// the list.
	ErrDuplicate = errors.New("recipients: already added")
)

// local@domain.tld, no whitespace, single @
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims and lowercases an address, validating its shape.
func Normalize(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || !emailRe.MatchString(e) {
		return "", ErrInvalid
	}
	return e, nil
}

// Add validates the address and appends it to list, rejecting duplicates
// case-insensitively.
func Add(list []string, email string) ([]string, error) {
	e, err := Normalize(email)
	if err != nil {
		return list, err
	}
	for _, have := range list {
		if have == e {
			return list, ErrDuplicate
		}
	}
	return append(list, e), nil
}

// Remove drops an address from the list, matching after normalization.
func Remove(list []string, email string) []string {
	e := strings.ToLower(strings.TrimSpace(email))
	for i, have := range list {
		if have == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
