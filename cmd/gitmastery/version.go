package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/NicabarNimble/go-gitmastery/internal/github"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3"
var version = "v0.0.0-dev"

const appRepo = "git-mastery/app"

type versionOptions struct {
	check bool
}

func newVersionCmd(a *app) *cobra.Command {
	opts := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.check, "check", false, "Compare against the latest release")

	return cmd
}

func runVersion(ctx context.Context, a *app, opts *versionOptions) error {
	a.console.Info("Git-Mastery CLI is %s", a.console.Bold(version))
	if !opts.check {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	tags, err := a.newClient(nil).ListTags(ctx, appRepo)
	if err != nil {
		// Not being able to check is not a failure of this command
		a.logger.Warn("failed to list releases", "error", err)
		return nil
	}
	latest := latestVersion(tags)
	if latest != "" && isBehind(version, latest) {
		a.console.Warn("Your version of Git-Mastery CLI %s is behind the latest version %s. Please update the CLI.",
			a.console.Bold(version), a.console.Bold(latest))
	}
	return nil
}

// latestVersion returns the highest valid semantic version among tags
func latestVersion(tags []github.Tag) string {
	var latest string
	for _, t := range tags {
		if !semver.IsValid(t.Name) {
			continue
		}
		if latest == "" || semver.Compare(t.Name, latest) > 0 {
			latest = t.Name
		}
	}
	return latest
}

// isBehind reports whether current trails latest in major or minor version
func isBehind(current, latest string) bool {
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(semver.MajorMinor(current), semver.MajorMinor(latest)) < 0
}
