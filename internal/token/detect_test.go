package token

import "testing"

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		want   Kind
		scopes bool
	}{
		{name: "classic", token: "ghp_1234567890abcdef", want: KindClassic, scopes: true},
		{name: "fine grained", token: "github_pat_1234567890abcdef", want: KindFineGrained},
		{name: "oauth from gh login", token: "gho_1234567890abcdef", want: KindOAuth, scopes: true},
		{name: "user to server", token: "ghu_1234567890abcdef", want: KindUserToServer},
		{name: "server to server", token: "ghs_1234567890abcdef", want: KindServerToServer},
		{name: "gitlab token", token: "glpat-1234567890abcdef", want: ""},
		{name: "empty token", token: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectKind(tt.token)
			if got != tt.want {
				t.Errorf("DetectKind() = %v, want %v", got, tt.want)
			}
			if got.ReportsScopes() != tt.scopes {
				t.Errorf("ReportsScopes() = %v, want %v", got.ReportsScopes(), tt.scopes)
			}
		})
	}
}

func TestScopeError(t *testing.T) {
	err := &ScopeError{Missing: []string{"repo", "delete_repo"}}
	if got := err.Error(); got != "missing required scopes: repo, delete_repo" {
		t.Errorf("Error() = %q", got)
	}
}
