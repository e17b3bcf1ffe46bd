package prompt

import (
	"fmt"
	"strings"

	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/style"
)

// Ask prints question and returns the typed line.
func (t *Terminal) Ask(question string) (string, error) {
	t.Printf("%s: ", question)
	return t.ReadLine()
}

// AskValidated keeps asking until check accepts the normalized answer.
// Rejections are printed and never returned; only read errors end the loop.
func (t *Terminal) AskValidated(question string, normalize func(string) string, check func(string) error) (string, error) {
	for {
		answer, err := t.Ask(question)
		if err != nil {
			return "", err
		}
		if normalize != nil {
			answer = normalize(answer)
		}
		if err := check(answer); err != nil {
			t.Printf("%s %s\n", style.ErrorPrefix, err)
			continue
		}
		return answer, nil
	}
}

// AskYesNo asks a y/n question. Enter picks def.
func (t *Terminal) AskYesNo(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		t.Printf("%s [%s]: ", question, hint)
		answer, err := t.ReadLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		t.Println("Please answer y or n")
	}
}

// CollectIdentity asks for a name, email and label, re-prompting each field
// until it is valid. The returned identity has no sequence number yet.
func (t *Terminal) CollectIdentity() (identity.Identity, error) {
	var id identity.Identity
	var err error

	if id.Name, err = t.AskValidated("Full name", identity.Normalize, identity.CheckName); err != nil {
		return id, err
	}
	if id.Email, err = t.AskValidated("Email", strings.TrimSpace, identity.CheckEmail); err != nil {
		return id, err
	}
	if id.Label, err = t.AskValidated("Label (e.g. Work, Personal)", identity.Normalize, identity.CheckLabel); err != nil {
		return id, err
	}
	return id, nil
}

// AddIdentity collects a new identity and appends it to store.
func (t *Terminal) AddIdentity(store *identity.Store) (identity.Identity, error) {
	id, err := t.CollectIdentity()
	if err != nil {
		return id, err
	}
	added, err := store.Append(id)
	if err != nil {
		return added, fmt.Errorf("saving identity: %w", err)
	}
	t.Printf("%s Added identity %d: %s\n", style.SuccessPrefix, added.Seq, added)
	return added, nil
}
