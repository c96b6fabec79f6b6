package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/progress"
)

const dashboardURL = "https://git-mastery.github.io/progress-dashboard/#/dashboard/"

func newProgressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "View and sync your exercise progress",
	}
	cmd.AddCommand(newShowCmd(a), newResetCmd(a), newSyncCmd(a))
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the latest result of every exercise you attempted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), a)
		},
	}
}

func runShow(ctx context.Context, a *app) error {
	_, fs, err := a.requireRoot(false)
	if err != nil {
		return err
	}
	cfg, err := config.LoadRoot(fs, config.RootFileName)
	if err != nil {
		return err
	}
	if !cfg.ProgressLocal() {
		return gerrors.NewKind(gerrors.KindConfig, "show progress", errors.New("You do not have progress tracking supported."))
	}
	if info, err := fs.Stat(a.settings.LocalFolder); err != nil || !info.IsDir() {
		return gerrors.NewKind(gerrors.KindConfig, "show progress",
			errors.New("Something strange has occurred, try to recreate the Git-Mastery exercise directory using 'gitmastery setup'"))
	}

	log, err := progress.NewStore(fs, a.settings.ProgressPath()).Load()
	if err != nil {
		return err
	}

	var lines []string
	for _, s := range progress.Latest(log) {
		status := s.Status
		if status == "" {
			status = "UNKNOWN"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", s.ExerciseName, status))
	}
	if len(lines) == 0 {
		lines = append(lines, "No exercise attempts recorded yet.")
	}

	if cfg.ProgressRemote() {
		tok, err := a.gitHubChecker().Check(ctx, a.console)
		if err != nil {
			return err
		}
		username, err := a.newClient(tok).Username(ctx)
		if err != nil {
			return gerrors.NewKind(gerrors.KindRemoteOperation, "get username", err)
		}
		lines = append(lines, "", "Check out your progress on the dashboard: "+a.console.Bold(dashboardURL+username))
	}

	fmt.Fprintln(a.stdout, strings.Join(lines, "\n"))
	return nil
}

type resetOptions struct {
	exercise string
}

func newResetCmd(a *app) *cobra.Command {
	opts := &resetOptions{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the recorded progress of one exercise",
		Long: `Remove every recorded attempt of an exercise from your local progress.
Without --exercise the exercise of the current exercise directory is used.`,
		Example: `  gitmastery progress reset
  gitmastery progress reset --exercise branch-bender`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.exercise, "exercise", "", "Exercise to reset (default: the exercise in the current directory)")

	return cmd
}

func runReset(a *app, opts *resetOptions) error {
	_, fs, err := a.requireRoot(false)
	if err != nil {
		return err
	}

	exercise := opts.exercise
	if exercise == "" {
		if exercise, err = a.currentExercise(); err != nil {
			return err
		}
	}

	if info, err := fs.Stat(a.settings.LocalFolder); err != nil || !info.IsDir() {
		a.console.Warn("Progress directory is missing. Set it up again using %s", a.console.Bold("gitmastery setup"))
		return nil
	}
	store := progress.NewStore(fs, a.settings.ProgressPath())
	exists, err := store.Exists()
	if err != nil {
		return err
	}
	if !exists {
		a.console.Warn("Progress tracking file not created yet. No progress to reset.")
		return nil
	}

	a.console.Info("Resetting your progress for %s", a.console.Bold(exercise))
	log, err := store.Load()
	if err != nil {
		return err
	}
	kept, removed := log.Without(exercise)
	if err := store.Save(kept); err != nil {
		return err
	}
	a.logger.Info("progress reset", "exercise", exercise, "removed", removed)

	a.console.Success("Reset your progress for %s", a.console.Bold(exercise))
	return nil
}

// currentExercise reads the exercise name of the exercise directory enclosing the start directory
func (a *app) currentExercise() (string, error) {
	start, err := a.startDir()
	if err != nil {
		return "", err
	}
	dir, _, err := config.FindRoot(start, config.ExerciseFileName)
	if err != nil {
		return "", gerrors.NewKind(gerrors.KindConfig, "find exercise",
			fmt.Errorf("not inside an exercise directory, pass --exercise or cd into one"))
	}
	name, err := config.ExerciseName(osfs.New(dir), config.ExerciseFileName)
	if err != nil {
		return "", err
	}
	return name, nil
}
