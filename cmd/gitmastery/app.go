package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/NicabarNimble/go-gitmastery/internal/check"
	"github.com/NicabarNimble/go-gitmastery/internal/config"
	"github.com/NicabarNimble/go-gitmastery/internal/console"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
	"github.com/NicabarNimble/go-gitmastery/internal/logging"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

// app holds what every command shares. The func fields are replaced in tests.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	getwd  func() (string, error)

	gitChecker func() *check.GitChecker
	tokenChain func(host string) check.Resolver
	repoURL    func(fullName string) (string, error)

	settings config.Settings
	logger   *slog.Logger
	closer   io.Closer
	console  *console.Console
}

func newApp() *app {
	return &app{
		v:          config.NewViper(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		getwd:      os.Getwd,
		gitChecker: check.NewGitChecker,
		tokenChain: func(host string) check.Resolver { return token.DefaultChain(host) },
		logger:     logging.Discard(),
	}
}

// setup loads settings and opens the log. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	s, err := config.LoadSettings(a.v)
	if err != nil {
		return err
	}
	a.settings = s

	logPath := s.LogFile
	if logPath == "" {
		start, _ := a.startDir()
		root, _, _ := config.FindRoot(start, config.RootFileName)
		if logPath, err = logging.DefaultPath(root); err != nil {
			return err
		}
	}
	logger, closer, err := logging.Setup(logging.Options{Path: logPath, Verbose: s.Verbose, Stderr: a.stderr})
	if err != nil {
		return err
	}
	a.logger, a.closer = logger, closer
	a.console = console.New(a.stdout, logger)
	a.logger.Debug("command started", "command", cmd.CommandPath())
	return nil
}

func (a *app) teardown() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// startDir is --root when given, the working directory otherwise
func (a *app) startDir() (string, error) {
	if dir := a.v.GetString("root"); dir != "" {
		return dir, nil
	}
	return a.getwd()
}

// requireRoot locates the Git-Mastery root and returns a filesystem on it
func (a *app) requireRoot(atRoot bool) (string, billy.Filesystem, error) {
	start, err := a.startDir()
	if err != nil {
		return "", nil, err
	}
	dir, err := config.RequireRoot(start, atRoot)
	if err != nil {
		return "", nil, err
	}
	return dir, osfs.New(dir), nil
}

func (a *app) newClient(t *token.Token) *github.Client {
	return github.NewClient(t, github.WithBaseURL(a.settings.APIBaseURL), github.WithLogger(a.logger))
}

// gitHubChecker validates the resolved token, requiring scopes when the
// token reports any (repo when none are given)
func (a *app) gitHubChecker(scopes ...string) *check.GitHubChecker {
	return &check.GitHubChecker{
		Resolver:  a.tokenChain(a.settings.GitHubHost),
		Validator: github.NewTokenValidator(a.settings.APIBaseURL, scopes...),
	}
}

func (a *app) checks(scopes ...string) *check.All {
	return &check.All{Git: a.gitChecker(), GitHub: a.gitHubChecker(scopes...), Out: a.console}
}

// reportError prints err as one styled error line
func (a *app) reportError(err error) {
	if a.console == nil {
		a.console = console.New(a.stderr, a.logger)
	}
	a.console.Error("%v", err)
}
