package gitcfg

import (
	"context"
	"fmt"

	"github.com/ksteinfeldt/gitid/internal/identity"
)

// Applier writes a chosen identity into git configuration.
type Applier interface {
	Apply(ctx context.Context, id identity.Identity, scope Scope) error
}

var _ Applier = (*Git)(nil)

// Apply sets user.name and user.email at scope. ScopeLocal touches only the
// repository in g.Dir; ScopeGlobal sets the account-wide default.
func (g *Git) Apply(ctx context.Context, id identity.Identity, scope Scope) error {
	if scope != ScopeLocal && scope != ScopeGlobal {
		return fmt.Errorf("applying identity: unsupported scope %q", scope)
	}
	if err := g.Set(ctx, scope, KeyUserName, id.Name); err != nil {
		return fmt.Errorf("setting %s: %w", KeyUserName, err)
	}
	if err := g.Set(ctx, scope, KeyUserEmail, id.Email); err != nil {
		return fmt.Errorf("setting %s: %w", KeyUserEmail, err)
	}
	return nil
}
