package token

import (
	"fmt"
	"strings"
)

// Kind describes which flavour of GitHub credential a token is
type Kind string

const (
	KindClassic        Kind = "classic"
	KindFineGrained    Kind = "fine-grained"
	KindOAuth          Kind = "oauth"
	KindUserToServer   Kind = "user-to-server"
	KindServerToServer Kind = "server-to-server"
)

// DetectKind attempts to determine the token kind from its prefix.
// Unknown formats return "".
func DetectKind(tokenValue string) Kind {
	switch {
	case strings.HasPrefix(tokenValue, "ghp_"):
		return KindClassic
	case strings.HasPrefix(tokenValue, "github_pat_"):
		return KindFineGrained
	case strings.HasPrefix(tokenValue, "gho_"):
		return KindOAuth
	case strings.HasPrefix(tokenValue, "ghu_"):
		return KindUserToServer
	case strings.HasPrefix(tokenValue, "ghs_"):
		return KindServerToServer
	default:
		return ""
	}
}

// ReportsScopes reports whether GitHub returns X-OAuth-Scopes for this kind
func (k Kind) ReportsScopes() bool {
	return k == KindClassic || k == KindOAuth
}

// ScopeError represents a token scope validation error with detailed status
type ScopeError struct {
	Missing []string        // List of missing required scopes
	Status  map[string]bool // Status of all required scopes (present/missing)
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("missing required scopes: %s", strings.Join(e.Missing, ", "))
}
