package remotesync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
)

type fakeHost struct {
	username    string
	usernameErr error

	forks        map[string]bool // "owner/name" -> exists
	hasForkErr   error
	forkErr      error
	forkCalls    []string
	visibleAfter int // HasFork calls after Fork that still report false
	hasForkCalls int

	prs       []github.PullRequest
	listErr   error
	created   []github.PROptions
	createErr error

	deleted   []string
	deleteErr error
}

func newFakeHost(username string) *fakeHost {
	return &fakeHost{username: username, forks: map[string]bool{}}
}

func (h *fakeHost) Username(context.Context) (string, error) {
	return h.username, h.usernameErr
}

func (h *fakeHost) HasFork(_ context.Context, owner, name string) (bool, error) {
	h.hasForkCalls++
	if h.hasForkErr != nil {
		return false, h.hasForkErr
	}
	key := owner + "/" + name
	if h.forks[key] && h.visibleAfter > 0 {
		h.visibleAfter--
		return false, nil
	}
	return h.forks[key], nil
}

func (h *fakeHost) Fork(_ context.Context, upstream, forkName string) error {
	h.forkCalls = append(h.forkCalls, upstream+"->"+forkName)
	if h.forkErr != nil {
		return h.forkErr
	}
	h.forks[h.username+"/"+forkName] = true
	return nil
}

func (h *fakeHost) ListPullRequests(_ context.Context, upstream, branch, owner string) ([]github.PullRequest, error) {
	if h.listErr != nil {
		return nil, h.listErr
	}
	return h.prs, nil
}

func (h *fakeHost) CreatePullRequest(_ context.Context, opts github.PROptions) error {
	if h.createErr != nil {
		return h.createErr
	}
	h.created = append(h.created, opts)
	h.prs = append(h.prs, github.PullRequest{Number: len(h.created), Title: opts.Title})
	return nil
}

func (h *fakeHost) DeleteRepository(_ context.Context, owner, repo string) error {
	if h.deleteErr != nil {
		return h.deleteErr
	}
	h.deleted = append(h.deleted, owner+"/"+repo)
	delete(h.forks, owner+"/"+repo)
	return nil
}

// fakeCloner writes files into the clone directory instead of cloning
type fakeCloner struct {
	fs    billy.Filesystem
	files map[string]string
	err   error
	calls []git.CloneOptions
}

func (c *fakeCloner) Clone(_ context.Context, opts git.CloneOptions) error {
	c.calls = append(c.calls, opts)
	if c.err != nil {
		// Leave a partial clone behind like an interrupted transfer would
		_ = util.WriteFile(c.fs, opts.Dir+"/.git/HEAD", []byte("ref: refs/heads/main\n"), 0o644)
		return c.err
	}
	if err := c.fs.MkdirAll(opts.Dir+"/.git", 0o755); err != nil {
		return err
	}
	for name, content := range c.files {
		if err := util.WriteFile(c.fs, opts.Dir+"/"+name, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeRepo struct {
	calls     []string
	commitErr error
	pushErr   error
}

func (r *fakeRepo) AddAll(context.Context) error {
	r.calls = append(r.calls, "add")
	return nil
}

func (r *fakeRepo) Commit(_ context.Context, msg string) error {
	r.calls = append(r.calls, "commit:"+msg)
	return r.commitErr
}

func (r *fakeRepo) Push(_ context.Context, remote, branch string) error {
	r.calls = append(r.calls, "push:"+remote+"/"+branch)
	return r.pushErr
}

type fakePrereqs struct {
	err   error
	calls int
}

func (p *fakePrereqs) Check(context.Context) error {
	p.calls++
	return p.err
}

type recorder struct {
	lines []string
}

func (r *recorder) Info(format string, args ...any) {
	r.lines = append(r.lines, "info: "+fmt.Sprintf(format, args...))
}

func (r *recorder) Warn(format string, args ...any) {
	r.lines = append(r.lines, "warn: "+fmt.Sprintf(format, args...))
}

func (r *recorder) Success(format string, args ...any) {
	r.lines = append(r.lines, "success: "+fmt.Sprintf(format, args...))
}

func (r *recorder) String() string {
	return strings.Join(r.lines, "\n")
}

// testSettings disables fork polling delays
func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.ForkPollInterval = 0
	return s
}

// newRoot creates a Git-Mastery root on disk holding the config and, when
// progress is non-empty, progress/progress.json
func newRoot(t *testing.T, cfg, progress string) (string, billy.Filesystem) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.RootFileName), []byte(cfg), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "progress"), 0o755))
	if progress != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "progress", "progress.json"), []byte(progress), 0o644))
	}
	return dir, osfs.New(dir)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// siblings lists the entries of dir other than want
func siblings(t *testing.T, dir string, want ...string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var extra []string
	for _, e := range entries {
		found := false
		for _, w := range want {
			if e.Name() == w {
				found = true
			}
		}
		if !found {
			extra = append(extra, e.Name())
		}
	}
	return extra
}
