package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitmastery/internal/check"
	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

const testTokenVar = "GITMASTERY_TEST_TOKEN"

// fakeGitHub serves the subset of the GitHub API the CLI uses
type fakeGitHub struct {
	mu      sync.Mutex
	login   string
	fork    bool
	openPRs int
	created []map[string]any
	deleted []string
	server  *httptest.Server
}

func newFakeGitHub(t *testing.T, login string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{login: login, fork: true}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OAuth-Scopes", "repo, delete_repo")
		json.NewEncoder(w).Encode(map[string]string{"login": f.login})
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.fork || r.PathValue("owner") != f.login {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"name": r.PathValue("repo"), "fork": true})
	})
	mux.HandleFunc("DELETE /repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleted = append(f.deleted, r.PathValue("owner")+"/"+r.PathValue("repo"))
		f.fork = false
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /repos/git-mastery/progress/pulls", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		prs := []map[string]any{}
		for i := 0; i < f.openPRs; i++ {
			prs = append(prs, map[string]any{
				"number": i + 1,
				"head":   map[string]any{"repo": map[string]any{"owner": map[string]string{"login": f.login}}},
			})
		}
		json.NewEncoder(w).Encode(prs)
	})
	mux.HandleFunc("POST /repos/git-mastery/progress/pulls", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		f.openPRs++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 1}`))
	})
	mux.HandleFunc("GET /repos/git-mastery/app/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "v9.1.0"}, {"name": "v0.1.0"}]`))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

var testIdentity = git.Identity{Name: "Jane Doe", Email: "jane@example.com", DefaultBranch: "main"}

// newTestApp returns an app whose collaborators are stubbed and whose
// working directory is wd
func newTestApp(t *testing.T, wd string, api *fakeGitHub) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("GITMASTERY_LOG_FILE", filepath.Join(t.TempDir(), "gitmastery.log"))
	t.Setenv(testTokenVar, "test-token")
	if api != nil {
		t.Setenv("GITMASTERY_API_BASE_URL", api.server.URL)
	}

	var stdout, stderr bytes.Buffer
	a := newApp()
	a.stdout = &stdout
	a.stderr = &stderr
	a.getwd = func() (string, error) { return wd, nil }
	a.gitChecker = func() *check.GitChecker {
		return &check.GitChecker{
			LookPath: func(string) (string, error) { return "/usr/bin/git", nil },
			Identity: func() (git.Identity, error) { return testIdentity, nil },
		}
	}
	a.tokenChain = func(string) check.Resolver {
		return token.Chain{token.VarSource{Names: []string{testTokenVar}}}
	}
	return a, &stdout, &stderr
}

func execute(a *app, args ...string) int {
	return run(context.Background(), a, args)
}

// newGitMasteryRoot creates a root directory with the given config and progress file
func newGitMasteryRoot(t *testing.T, cfg, progress string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitmastery.json"), []byte(cfg), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "progress"), 0o755))
	if progress != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "progress", "progress.json"), []byte(progress), 0o644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
