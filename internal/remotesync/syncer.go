package remotesync

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/go-git/go-billy/v5"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	"github.com/NicabarNimble/go-gitmastery/internal/console"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/progress"
)

// CommitMessage is used for the commit pushing merged progress to the fork
const CommitMessage = "Sync progress with local machine"

// State is the last step a sync run completed
type State int

const (
	StateInitial State = iota
	StatePrereqsChecked
	StateForkEnsured
	StateLocalCaptured
	StateRecloned
	StateReconciled
	StatePushed
	StateSkipPush
	StatePREnsured
	StateConfigPersisted
)

var stateNames = [...]string{
	StateInitial:         "initial",
	StatePrereqsChecked:  "prereqs_checked",
	StateForkEnsured:     "fork_ensured",
	StateLocalCaptured:   "local_captured",
	StateRecloned:        "recloned",
	StateReconciled:      "reconciled",
	StatePushed:          "pushed",
	StateSkipPush:        "skip_push",
	StatePREnsured:       "pr_ensured",
	StateConfigPersisted: "config_persisted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Options wires a Syncer or Disabler
type Options struct {
	FS       billy.Filesystem // Rooted at the Git-Mastery root
	Host     Host
	Remover  RepoRemover
	Cloner   Cloner
	Open     OpenFunc
	Prereqs  Prerequisites
	Settings config.Settings
	Out      Reporter
	Logger   *slog.Logger
	Tracker  console.Tracker

	// RepoURL overrides how clone URLs are built
	RepoURL func(fullName string) (string, error)
}

// Syncer runs the "sync on" sequence
type Syncer struct {
	fs       billy.Filesystem
	host     Host
	open     OpenFunc
	prereqs  Prerequisites
	settings config.Settings
	out      Reporter
	logger   *slog.Logger
	tracker  console.Tracker

	forks  *ForkManager
	clones *CloneManager
	prs    *PullRequestManager

	state     State
	hadUpdate bool
}

// NewSyncer builds a Syncer and its managers from opts
func NewSyncer(opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = console.NewTracker(logger)
	}
	out := reporterOrNop(opts.Out)
	return &Syncer{
		fs:       opts.FS,
		host:     opts.Host,
		open:     opts.Open,
		prereqs:  opts.Prereqs,
		settings: opts.Settings,
		out:      out,
		logger:   logger,
		tracker:  tracker,
		forks:    &ForkManager{Host: opts.Host, Settings: opts.Settings, Out: out, Logger: logger},
		clones: &CloneManager{
			FS:       opts.FS,
			Cloner:   opts.Cloner,
			Settings: opts.Settings,
			Logger:   logger,
			RepoURL:  opts.RepoURL,
		},
		prs: &PullRequestManager{Host: opts.Host, Settings: opts.Settings, Out: out},
	}
}

// State returns the last state reached by Run
func (s *Syncer) State() State {
	return s.state
}

// HadUpdate reports whether the last run pushed local entries to the fork
func (s *Syncer) HadUpdate() bool {
	return s.hadUpdate
}

func (s *Syncer) advance(to State) {
	s.logger.Debug("sync state", "from", s.state.String(), "to", to.String())
	s.state = to
}

// step runs fn as a tracked phase and advances to next on success
func (s *Syncer) step(name string, next State, fn func() error) error {
	s.tracker.Start(name)
	if err := fn(); err != nil {
		s.tracker.Error(err)
		s.logger.Error("sync step failed", "step", name, "state", s.state.String(), "error", err)
		return err
	}
	s.tracker.Complete()
	s.advance(next)
	return nil
}

// Run synchronizes the local progress log with the fork and records
// progress_remote in cfg. cfg is saved only when every step succeeded.
func (s *Syncer) Run(ctx context.Context, cfg *config.Root) error {
	s.state = StateInitial
	s.hadUpdate = false
	store := progress.NewStore(s.fs, s.settings.ProgressPath())

	if err := s.step("check prerequisites", StatePrereqsChecked, func() error {
		return s.prereqs.Check(ctx)
	}); err != nil {
		return err
	}

	s.out.Info("Syncing progress tracker")

	var username string
	if err := s.step("ensure fork", StateForkEnsured, func() error {
		var err error
		username, err = s.host.Username(ctx)
		if err != nil {
			return gerrors.NewKind(gerrors.KindRemoteOperation, "get username", err)
		}
		return s.forks.Ensure(ctx, username)
	}); err != nil {
		return err
	}
	forkName := s.settings.ForkNameFor(username)

	var local progress.Log
	if err := s.step("capture local progress", StateLocalCaptured, func() error {
		var err error
		local, err = store.Load()
		return err
	}); err != nil {
		return err
	}
	s.logger.Info("local progress captured", "entries", len(local))

	if err := s.step("clone fork", StateRecloned, func() error {
		return s.clones.Replace(ctx, username, forkName)
	}); err != nil {
		return err
	}

	var merged progress.Log
	if err := s.step("reconcile", StateReconciled, func() error {
		remote, err := store.Load()
		if err != nil {
			return err
		}
		var hadUpdate bool
		merged, hadUpdate, err = progress.Merge(local, remote)
		if err != nil {
			return gerrors.NewKind(gerrors.KindMalformedProgress, "reconcile", err)
		}
		s.hadUpdate = hadUpdate
		s.logger.Info("progress reconciled", "local", len(local), "remote", len(remote), "merged", len(merged), "had_update", hadUpdate)
		return store.Save(merged)
	}); err != nil {
		return err
	}

	if s.hadUpdate {
		if err := s.step("push", StatePushed, func() error {
			return s.push(ctx)
		}); err != nil {
			return err
		}
	} else {
		s.advance(StateSkipPush)
	}

	if err := s.step("ensure pull request", StatePREnsured, func() error {
		return s.prs.Ensure(ctx, username)
	}); err != nil {
		return err
	}

	if err := s.step("persist config", StateConfigPersisted, func() error {
		if err := cfg.SetProgressRemote(true); err != nil {
			return err
		}
		return config.SaveRoot(s.fs, config.RootFileName, cfg)
	}); err != nil {
		return err
	}

	s.out.Success("You have setup the progress tracker for Git-Mastery!")
	return nil
}

func (s *Syncer) push(ctx context.Context) error {
	repo, err := s.open(s.settings.LocalFolder)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "open "+s.settings.LocalFolder, err)
	}
	if err := repo.AddAll(ctx); err != nil {
		return err
	}
	if err := repo.Commit(ctx, CommitMessage); err != nil {
		return err
	}
	if err := repo.Push(ctx, "origin", s.settings.Branch); err != nil {
		return err
	}
	s.logger.Info("progress pushed", "path", path.Join(s.settings.LocalFolder, s.settings.ProgressFile))
	return nil
}
