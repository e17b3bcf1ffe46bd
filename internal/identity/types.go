// Package identity provides the registry of git commit identities a user can
// pick from at commit time.
package identity

import "fmt"

// DefaultStoreFileName is the store file created in the user's home directory.
const DefaultStoreFileName = ".git-identities"

// fieldSeparator delimits the fields of one store record.
const fieldSeparator = ":"

// fieldCount is the number of fields in a well-formed record.
const fieldCount = 4

// Identity is a registered commit author option.
type Identity struct {
	// Seq is the menu selection key. Assigned on append, never reused.
	Seq int

	// Name becomes git's user.name.
	Name string

	// Email becomes git's user.email.
	Email string

	// Label is the short tag shown in menus (e.g. "Work").
	Label string
}

// String renders the identity the way menus show it.
func (i Identity) String() string {
	return fmt.Sprintf("%s <%s> [%s]", i.Name, i.Email, i.Label)
}

// line encodes the identity as one store record, without the newline.
func (i Identity) line() string {
	return fmt.Sprintf("%d:%s:%s:%s", i.Seq, i.Name, i.Email, i.Label)
}

// Skipped describes a store line that could not be read as a record.
type Skipped struct {
	// Line is the 1-based line number in the store file.
	Line int

	// Raw is the line as it appeared on disk.
	Raw string

	// Reason says why the line was not accepted.
	Reason string

	// Seq is the line's leading sequence number when that field is a
	// positive integer, else 0. Append never hands it out again.
	Seq int
}

func (s Skipped) String() string {
	return fmt.Sprintf("line %d: %s", s.Line, s.Reason)
}

// Entry is the result of parsing one store line: exactly one of Record or
// Skip is set.
type Entry struct {
	Record *Identity
	Skip   *Skipped
}
