package git

import (
	"fmt"
	"os/exec"

	"github.com/go-git/go-git/v5/config"
)

// Identity is the global git identity used to sign commits
type Identity struct {
	Name          string
	Email         string
	DefaultBranch string
}

// Signature returns the commit signature of the identity
func (i Identity) Signature() Signature {
	return Signature{Name: i.Name, Email: i.Email}
}

var (
	// LookPath finds the git binary. Replaced in tests.
	LookPath = exec.LookPath

	loadGlobalConfig = func() (*config.Config, error) {
		return config.LoadConfig(config.GlobalScope)
	}
)

// GlobalIdentity reads user.name, user.email and init.defaultBranch from the
// global git config
func GlobalIdentity() (Identity, error) {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read global git config: %w", err)
	}
	return Identity{
		Name:          cfg.User.Name,
		Email:         cfg.User.Email,
		DefaultBranch: cfg.Init.DefaultBranch,
	}, nil
}
