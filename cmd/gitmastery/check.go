package main

import (
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify your setup for Git-Mastery",
	}
	cmd.AddCommand(newCheckGitCmd(a), newCheckGitHubCmd(a))
	return cmd
}

func newCheckGitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "git",
		Short: "Verify that Git is installed and configured",
		Long: `Verify that git is installed and that user.name, user.email and
init.defaultBranch are set in your global git config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.gitChecker().Check(cmd.Context(), a.console)
			return err
		},
	}
}

func newCheckGitHubCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "github",
		Short: "Verify that a usable GitHub token is available",
		Long: `Look for a GitHub token in GIT_TOKEN_GITHUB, GITHUB_TOKEN, GH_TOKEN or the
GitHub CLI, and verify it against the GitHub API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.gitHubChecker().Check(cmd.Context(), a.console)
			return err
		},
	}
}
