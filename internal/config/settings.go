package config

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings
const EnvPrefix = "GITMASTERY"

// Settings holds the tunables of the progress sync. Every field can be
// overridden through a GITMASTERY_* environment variable or a bound flag.
type Settings struct {
	UpstreamRepo     string        `mapstructure:"upstream_repo"`
	ForkName         string        `mapstructure:"fork_name"`
	LocalFolder      string        `mapstructure:"local_folder"`
	ProgressFile     string        `mapstructure:"progress_file"`
	Branch           string        `mapstructure:"branch"`
	APIBaseURL       string        `mapstructure:"api_base_url"`
	GitHubHost       string        `mapstructure:"github_host"`
	ForkPollAttempts int           `mapstructure:"fork_poll_attempts"`
	ForkPollInterval time.Duration `mapstructure:"fork_poll_interval"`
	Verbose          bool          `mapstructure:"verbose"`
	LogFile          string        `mapstructure:"log_file"`
}

// DefaultSettings provides default configuration values
func DefaultSettings() Settings {
	return Settings{
		UpstreamRepo:     "git-mastery/progress",
		ForkName:         "{username}-gitmastery-progress",
		LocalFolder:      "progress",
		ProgressFile:     "progress.json",
		Branch:           "main",
		APIBaseURL:       "https://api.github.com",
		GitHubHost:       "github.com",
		ForkPollAttempts: 5,
		ForkPollInterval: 2 * time.Second,
	}
}

// NewViper returns a viper instance preloaded with defaults and bound to
// the GITMASTERY_ environment
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultSettings()
	v.SetDefault("upstream_repo", d.UpstreamRepo)
	v.SetDefault("fork_name", d.ForkName)
	v.SetDefault("local_folder", d.LocalFolder)
	v.SetDefault("progress_file", d.ProgressFile)
	v.SetDefault("branch", d.Branch)
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("github_host", d.GitHubHost)
	v.SetDefault("fork_poll_attempts", d.ForkPollAttempts)
	v.SetDefault("fork_poll_interval", d.ForkPollInterval)
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings decodes and validates the settings held by v
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks if the settings are usable
func (s Settings) Validate() error {
	if err := ValidateRepoFormat(s.UpstreamRepo); err != nil {
		return fmt.Errorf("invalid upstream repository: %w", err)
	}
	if s.ForkName == "" || strings.Contains(s.ForkName, "/") {
		return fmt.Errorf("invalid fork name %q", s.ForkName)
	}
	if s.LocalFolder == "" || strings.ContainsAny(s.LocalFolder, `/\`) || s.LocalFolder == "." || s.LocalFolder == ".." {
		return fmt.Errorf("local folder must be a single directory name, got %q", s.LocalFolder)
	}
	if s.ProgressFile == "" {
		return fmt.Errorf("progress file cannot be empty")
	}
	if s.Branch == "" {
		return fmt.Errorf("branch cannot be empty")
	}
	if !strings.HasPrefix(s.APIBaseURL, "https://") && !strings.HasPrefix(s.APIBaseURL, "http://") {
		return fmt.Errorf("invalid API base URL %q", s.APIBaseURL)
	}
	if s.ForkPollAttempts < 0 {
		return fmt.Errorf("fork poll attempts cannot be negative")
	}
	return nil
}

// ForkNameFor expands the fork name template for username
func (s Settings) ForkNameFor(username string) string {
	return strings.ReplaceAll(s.ForkName, "{username}", username)
}

// ProgressPath is the progress file path relative to the Git-Mastery root
func (s Settings) ProgressPath() string {
	return path.Join(s.LocalFolder, s.ProgressFile)
}

// ValidateRepoFormat validates the owner/repo format
func ValidateRepoFormat(repo string) error {
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}

	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return fmt.Errorf("invalid repository format, expected 'owner/repo'")
	}

	if parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("both owner and repo must be non-empty")
	}

	return nil
}
