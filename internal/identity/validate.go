package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidEmail indicates the email does not look like local@domain.tld.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrEmptyName indicates the display name is blank.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyLabel indicates the label is blank.
	ErrEmptyLabel = errors.New("label cannot be empty")

	// ErrInvalidField indicates a field contains a character the store
	// format cannot represent.
	ErrInvalidField = errors.New("field contains a colon or line break")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidEmail reports whether email has one @ and a dotted domain ending in a
// suffix of at least two letters.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Normalize trims whitespace and NFC-normalizes free text so that the same
// name typed on different keyboards is stored identically.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CheckName validates a display name.
func CheckName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	return checkField("name", name)
}

// CheckEmail validates an email address.
func CheckEmail(email string) error {
	if !ValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// CheckLabel validates a menu label.
func CheckLabel(label string) error {
	if label == "" {
		return ErrEmptyLabel
	}
	return checkField("label", label)
}

// Validate normalizes the free-text fields of id and checks all of them.
// The returned identity carries the normalized values.
func Validate(id Identity) (Identity, error) {
	id.Name = Normalize(id.Name)
	id.Email = strings.TrimSpace(id.Email)
	id.Label = Normalize(id.Label)

	if err := CheckName(id.Name); err != nil {
		return id, err
	}
	if err := CheckEmail(id.Email); err != nil {
		return id, err
	}
	if err := CheckLabel(id.Label); err != nil {
		return id, err
	}
	return id, nil
}

func checkField(field, value string) error {
	if strings.ContainsAny(value, fieldSeparator+"\r\n") {
		return fmt.Errorf("%w: %s %q", ErrInvalidField, field, value)
	}
	return nil
}
