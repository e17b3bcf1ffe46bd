package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ksteinfeldt/gitid/internal/identity"
)

func TestTerminal_ReadLine(t *testing.T) {
	term := NewTerminal(strings.NewReader("  first \nsecond\nlast"), io.Discard)

	for _, want := range []string{"first", "second", "last"} {
		got, err := term.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}

	if _, err := term.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after input, got: %v", err)
	}
}

func TestTerminal_NotInteractive(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), io.Discard)
	if term.Interactive() {
		t.Error("string reader should not be interactive")
	}
	if err := term.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestTerminal_AskYesNo(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\ny\n", false, true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			term := NewTerminal(strings.NewReader(tt.input), io.Discard)
			got, err := term.AskYesNo("Continue?", tt.def)
			if err != nil {
				t.Fatalf("AskYesNo: %v", err)
			}
			if got != tt.want {
				t.Errorf("AskYesNo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminal_CollectIdentityReprompts(t *testing.T) {
	var out bytes.Buffer
	input := "\nAlice\na@b\nnoatsign.com\na@b.co\nWork:Home\nWork\n"
	term := NewTerminal(strings.NewReader(input), &out)

	id, err := term.CollectIdentity()
	if err != nil {
		t.Fatalf("CollectIdentity: %v", err)
	}
	want := identity.Identity{Name: "Alice", Email: "a@b.co", Label: "Work"}
	if id != want {
		t.Errorf("identity = %+v, want %+v", id, want)
	}

	if got := strings.Count(out.String(), "Full name:"); got != 2 {
		t.Errorf("name asked %d times, want 2", got)
	}
	if got := strings.Count(out.String(), "Email:"); got != 3 {
		t.Errorf("email asked %d times, want 3", got)
	}
	if got := strings.Count(out.String(), "Label"); got < 2 {
		t.Errorf("label asked %d times, want 2", got)
	}
}
