package identity

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

var (
	// ErrNotFound indicates no identity has the requested sequence number.
	ErrNotFound = errors.New("identity not found")

	// ErrNoIdentities indicates the store holds no usable identity yet.
	ErrNoIdentities = errors.New("no identities registered")
)

// DefaultPath returns the standard store location in the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultStoreFileName), nil
}

// Store reads and appends identity records in a line-oriented file.
// Nothing is cached: every read goes back to disk, so edits made by another
// process or by hand are visible on the next call.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Init creates an empty store file if none exists yet.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating identity store: %w", err)
	}
	return f.Close()
}

// Exists reports whether the store file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns every well-formed identity in file order. A missing file is
// not an error: it yields no identities.
func (s *Store) Load() ([]Identity, error) {
	entries, err := s.LoadEntries()
	if err != nil {
		return nil, err
	}
	return Records(entries), nil
}

// LoadEntries parses the store and returns one entry per non-blank line,
// keeping the lines that were skipped so callers can report them.
func (s *Store) LoadEntries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Entry, error) {
	f, err := os.Open(s.path) //nolint:gosec // G304: path from user config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading identity store: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading identity store: %w", err)
	}
	return entries, nil
}

// Append validates id, assigns it the next sequence number and writes it as
// a new line at the end of the store. The returned identity carries the
// assigned number and normalized fields.
func (s *Store) Append(id Identity) (Identity, error) {
	id, err := Validate(id)
	if err != nil {
		return id, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return id, fmt.Errorf("creating store directory: %w", err)
	}

	// Another process (a hook in a second terminal) may append at the same
	// time; the file lock covers the read-max-then-write window.
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return id, fmt.Errorf("locking identity store: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := s.loadLocked()
	if err != nil {
		return id, err
	}
	id.Seq = HighestSeq(entries) + 1

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0600) //nolint:gosec // G304: path from user config
	if err != nil {
		return id, fmt.Errorf("opening identity store: %w", err)
	}
	defer f.Close()

	prefix, err := needsNewline(f)
	if err != nil {
		return id, fmt.Errorf("reading identity store: %w", err)
	}
	if _, err := f.WriteString(prefix + id.line() + "\n"); err != nil {
		return id, fmt.Errorf("writing identity store: %w", err)
	}

	return id, nil
}

// Find returns the identity with the given sequence number.
func (s *Store) Find(seq int) (Identity, error) {
	ids, err := s.Load()
	if err != nil {
		return Identity{}, err
	}
	return FindSeq(ids, seq)
}

// FindByEmail returns the first identity registered with email.
func (s *Store) FindByEmail(email string) (Identity, bool, error) {
	ids, err := s.Load()
	if err != nil {
		return Identity{}, false, err
	}
	id, ok := MatchEmail(ids, email)
	return id, ok, nil
}

// FindSeq scans ids for the given sequence number.
func FindSeq(ids []Identity, seq int) (Identity, error) {
	for _, id := range ids {
		if id.Seq == seq {
			return id, nil
		}
	}
	return Identity{}, fmt.Errorf("%w: %d", ErrNotFound, seq)
}

// MatchEmail returns the first identity whose email equals email, ignoring case.
func MatchEmail(ids []Identity, email string) (Identity, bool) {
	if email == "" {
		return Identity{}, false
	}
	for _, id := range ids {
		if strings.EqualFold(id.Email, email) {
			return id, true
		}
	}
	return Identity{}, false
}

// HighestSeq returns the largest sequence number claimed by any line,
// including lines that were skipped, or 0.
func HighestSeq(entries []Entry) int {
	highest := 0
	for _, e := range entries {
		seq := 0
		switch {
		case e.Record != nil:
			seq = e.Record.Seq
		case e.Skip != nil:
			seq = e.Skip.Seq
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}

// Records keeps only the parsed identities from entries.
func Records(entries []Entry) []Identity {
	var ids []Identity
	for _, e := range entries {
		if e.Record != nil {
			ids = append(ids, *e.Record)
		}
	}
	return ids
}

// Skips keeps only the skipped lines from entries.
func Skips(entries []Entry) []Skipped {
	var skips []Skipped
	for _, e := range entries {
		if e.Skip != nil {
			skips = append(skips, *e.Skip)
		}
	}
	return skips
}

// Parse reads store records from r. Lines that do not form a record are
// returned as skipped entries; blank lines are ignored.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		id, reason := parseLine(raw)
		if reason == "" && seen[id.Seq] {
			reason = fmt.Sprintf("duplicate sequence number %d", id.Seq)
		}
		if reason != "" {
			entries = append(entries, Entry{Skip: &Skipped{Line: lineNo, Raw: raw, Reason: reason, Seq: leadingSeq(raw)}})
			continue
		}

		seen[id.Seq] = true
		entries = append(entries, Entry{Record: &id})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseLine(raw string) (Identity, string) {
	fields := strings.Split(raw, fieldSeparator)
	if len(fields) != fieldCount {
		return Identity{}, fmt.Sprintf("expected %d fields, got %d", fieldCount, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	seq, err := strconv.Atoi(fields[0])
	if err != nil || seq < 1 {
		return Identity{}, fmt.Sprintf("invalid sequence number %q", fields[0])
	}
	for _, f := range fields[1:] {
		if f == "" {
			return Identity{}, "empty field"
		}
	}

	return Identity{Seq: seq, Name: fields[1], Email: fields[2], Label: fields[3]}, ""
}

// leadingSeq reads the first field of raw as a sequence number, or 0.
func leadingSeq(raw string) int {
	first, _, _ := strings.Cut(raw, fieldSeparator)
	seq, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || seq < 1 {
		return 0
	}
	return seq
}

// needsNewline returns "\n" when the file is non-empty and its last byte is
// not a newline, as happens after hand edits.
func needsNewline(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return "", err
	}
	if bytes.Equal(last, []byte("\n")) {
		return "", nil
	}
	return "\n", nil
}
