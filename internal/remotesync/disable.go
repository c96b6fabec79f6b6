package remotesync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/progress"
)

// ErrSyncNotEnabled is returned by Disabler.Run when progress_remote is off
var ErrSyncNotEnabled = errors.New("You have not enabled sync for Git-Mastery yet.")

// Disabler runs the "sync off" sequence
type Disabler struct {
	fs       billy.Filesystem
	host     Host
	remover  RepoRemover
	prereqs  Prerequisites
	settings config.Settings
	out      Reporter
	logger   *slog.Logger
}

// NewDisabler builds a Disabler from opts. opts.Remover must be set.
func NewDisabler(opts Options) *Disabler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Disabler{
		fs:       opts.FS,
		host:     opts.Host,
		remover:  opts.Remover,
		prereqs:  opts.Prereqs,
		settings: opts.Settings,
		out:      reporterOrNop(opts.Out),
		logger:   logger,
	}
}

// Run deletes the fork, clears progress_remote and leaves the local folder as
// a plain directory holding the current log
func (d *Disabler) Run(ctx context.Context, cfg *config.Root) error {
	if !cfg.ProgressRemote() {
		return gerrors.NewKind(gerrors.KindConfig, "sync off", ErrSyncNotEnabled)
	}
	if err := d.prereqs.Check(ctx); err != nil {
		return err
	}

	// Captured before anything is deleted so a malformed file aborts early
	store := progress.NewStore(d.fs, d.settings.ProgressPath())
	local, err := store.Load()
	if err != nil {
		return err
	}

	username, err := d.host.Username(ctx)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "get username", err)
	}
	forkName := d.settings.ForkNameFor(username)

	d.out.Info("Removing fork")
	if err := d.remover.DeleteRepository(ctx, username, forkName); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "delete fork", err)
	}
	d.logger.Info("fork deleted", "fork", username+"/"+forkName)

	if err := cfg.SetProgressRemote(false); err != nil {
		return err
	}
	if err := config.SaveRoot(d.fs, config.RootFileName, cfg); err != nil {
		return err
	}

	if err := util.RemoveAll(d.fs, d.settings.LocalFolder); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "reset local folder", err)
	}
	if err := store.Save(local); err != nil {
		return err
	}
	d.logger.Info("local folder reset", "entries", len(local))

	d.out.Info("Successfully removed your remote sync")
	return nil
}
