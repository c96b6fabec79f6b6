package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "git-mastery/progress", s.UpstreamRepo)
	assert.Equal(t, "main", s.Branch)
	assert.Equal(t, "progress/progress.json", s.ProgressPath())
	assert.Equal(t, "octocat-gitmastery-progress", s.ForkNameFor("octocat"))
	assert.Equal(t, 5, s.ForkPollAttempts)
	assert.Equal(t, 2*time.Second, s.ForkPollInterval)
	assert.NoError(t, s.Validate())
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(NewViper())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	t.Setenv("GITMASTERY_UPSTREAM_REPO", "my-org/progress")
	t.Setenv("GITMASTERY_FORK_POLL_INTERVAL", "500ms")
	t.Setenv("GITMASTERY_VERBOSE", "true")

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "my-org/progress", s.UpstreamRepo)
	assert.Equal(t, 500*time.Millisecond, s.ForkPollInterval)
	assert.True(t, s.Verbose)
}

func TestLoadSettings_Invalid(t *testing.T) {
	v := NewViper()
	v.Set("upstream_repo", "no-slash")

	_, err := LoadSettings(v)
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Settings)
		expectError bool
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "missing upstream", mutate: func(s *Settings) { s.UpstreamRepo = "" }, expectError: true},
		{name: "upstream with extra part", mutate: func(s *Settings) { s.UpstreamRepo = "a/b/c" }, expectError: true},
		{name: "fork name with slash", mutate: func(s *Settings) { s.ForkName = "x/y" }, expectError: true},
		{name: "nested local folder", mutate: func(s *Settings) { s.LocalFolder = "a/b" }, expectError: true},
		{name: "dot local folder", mutate: func(s *Settings) { s.LocalFolder = ".." }, expectError: true},
		{name: "empty branch", mutate: func(s *Settings) { s.Branch = "" }, expectError: true},
		{name: "bad api url", mutate: func(s *Settings) { s.APIBaseURL = "api.github.com" }, expectError: true},
		{name: "local api url", mutate: func(s *Settings) { s.APIBaseURL = "http://127.0.0.1:8080" }},
		{name: "negative poll", mutate: func(s *Settings) { s.ForkPollAttempts = -1 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRepoFormat(t *testing.T) {
	assert.NoError(t, ValidateRepoFormat("git-mastery/progress"))
	assert.Error(t, ValidateRepoFormat(""))
	assert.Error(t, ValidateRepoFormat("/progress"))
	assert.Error(t, ValidateRepoFormat("git-mastery/"))
}
