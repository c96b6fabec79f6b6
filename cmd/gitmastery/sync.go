package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	"github.com/NicabarNimble/go-gitmastery/internal/console"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
	"github.com/NicabarNimble/go-gitmastery/internal/remotesync"
)

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Turn syncing of your progress with GitHub on or off",
	}
	cmd.AddCommand(newSyncOnCmd(a), newSyncOffCmd(a))
	return cmd
}

func newSyncOnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Sync your local progress with your fork of the progress repository",
		Long: `Fork the Git-Mastery progress repository if needed, merge your local progress
with the fork, push any new entries and open a pull request to share them.
Must be run from the Git-Mastery root directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncOn(cmd.Context(), a)
		},
	}
}

func runSyncOn(ctx context.Context, a *app) error {
	_, fs, err := a.requireRoot(true)
	if err != nil {
		return err
	}
	cfg, err := config.LoadRoot(fs, config.RootFileName)
	if err != nil {
		return err
	}

	opts := a.syncOptions(a.newSession(fs))
	opts.Tracker = console.NewTracker(a.logger)
	syncer := remotesync.NewSyncer(opts)
	if err := syncer.Run(ctx, cfg); err != nil {
		a.logger.Error("sync failed", "state", syncer.State().String(), "error", err)
		return err
	}
	a.logger.Info("sync finished", "pushed", syncer.HadUpdate())
	return nil
}

type syncOffOptions struct {
	yes bool
}

func newSyncOffCmd(a *app) *cobra.Command {
	opts := &syncOffOptions{}

	cmd := &cobra.Command{
		Use:   "off",
		Short: "Stop syncing and delete your fork of the progress repository",
		Long: `Delete your fork of the progress repository and turn remote sync off.
Your local progress is kept. Must be run from the Git-Mastery root directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncOff(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runSyncOff(ctx context.Context, a *app, opts *syncOffOptions) error {
	_, fs, err := a.requireRoot(true)
	if err != nil {
		return err
	}
	cfg, err := config.LoadRoot(fs, config.RootFileName)
	if err != nil {
		return err
	}
	if !cfg.ProgressRemote() {
		return gerrors.NewKind(gerrors.KindConfig, "sync off", remotesync.ErrSyncNotEnabled)
	}

	a.console.AssumeYes = opts.yes
	ok, err := a.console.Confirm(ctx, "Are you sure you want to turn off syncing?")
	if err != nil {
		return err
	}
	if !ok {
		a.console.Info("Cancelling command")
		return nil
	}

	sess := a.newSession(fs, github.ScopeRepo, github.ScopeDeleteRepo)
	return remotesync.NewDisabler(a.syncOptions(sess)).Run(ctx, cfg)
}
