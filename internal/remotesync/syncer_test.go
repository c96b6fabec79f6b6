package remotesync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
	"github.com/NicabarNimble/go-gitmastery/internal/progress"
)

type syncFixture struct {
	dir     string
	fs      billy.Filesystem
	host    *fakeHost
	cloner  *fakeCloner
	repo    *fakeRepo
	opened  []string
	prereqs *fakePrereqs
	out     *recorder
	cfg     *config.Root
	syncer  *Syncer
}

const rootConfig = `{"progress_local": true, "progress_remote": false, "exercises_directory": "ex"}`

func newSyncFixture(t *testing.T, local, remote string) *syncFixture {
	t.Helper()
	f := &syncFixture{
		host:    newFakeHost("jane"),
		repo:    &fakeRepo{},
		prereqs: &fakePrereqs{},
		out:     &recorder{},
	}
	f.host.forks["jane/jane-gitmastery-progress"] = true
	f.dir, f.fs = newRoot(t, rootConfig, local)
	f.cloner = &fakeCloner{fs: f.fs, files: map[string]string{}}
	if remote != "" {
		f.cloner.files["progress.json"] = remote
	}

	cfg, err := config.LoadRoot(f.fs, config.RootFileName)
	require.NoError(t, err)
	f.cfg = cfg

	f.syncer = NewSyncer(Options{
		FS:     f.fs,
		Host:   f.host,
		Cloner: f.cloner,
		Open: func(dir string) (Repository, error) {
			f.opened = append(f.opened, dir)
			return f.repo, nil
		},
		Prereqs:  f.prereqs,
		Settings: testSettings(),
		Out:      f.out,
	})
	return f
}

func (f *syncFixture) savedConfig(t *testing.T) string {
	return readFile(t, filepath.Join(f.dir, config.RootFileName))
}

func (f *syncFixture) progressFile(t *testing.T) progress.Log {
	t.Helper()
	log, err := progress.NewStore(f.fs, "progress/progress.json").Load()
	require.NoError(t, err)
	return log
}

func keys(log progress.Log) []string {
	out := make([]string, len(log))
	for i, e := range log {
		out[i] = e.Key().String()
	}
	return out
}

func TestSyncer_LocalOnlyEntryIsPushed(t *testing.T) {
	f := newSyncFixture(t, `[{"exercise_name":"ex1","started_at":"t1"}]`, `[]`)

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))

	assert.Equal(t, StateConfigPersisted, f.syncer.State())
	assert.True(t, f.syncer.HadUpdate())
	assert.Equal(t, []string{"ex1@t1"}, keys(f.progressFile(t)))
	assert.Equal(t, []string{"progress"}, f.opened)
	assert.Equal(t, []string{"add", "commit:" + CommitMessage, "push:origin/main"}, f.repo.calls)

	saved := f.savedConfig(t)
	assert.True(t, gjson.Get(saved, "progress_remote").Bool())
	assert.Equal(t, "ex", gjson.Get(saved, "exercises_directory").String())
	assert.True(t, gjson.Get(saved, "progress_local").Bool())

	require.Len(t, f.host.created, 1)
	assert.Equal(t, "jane:main", f.host.created[0].Head)
	assert.Equal(t, "success: You have setup the progress tracker for Git-Mastery!", f.out.lines[len(f.out.lines)-1])
}

func TestSyncer_RemoteSupersetSkipsPush(t *testing.T) {
	f := newSyncFixture(t,
		`[{"exercise_name":"ex1","started_at":"t1"}]`,
		`[{"exercise_name":"ex2","started_at":"t2"},{"exercise_name":"ex1","started_at":"t1"}]`)

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))

	assert.False(t, f.syncer.HadUpdate())
	assert.Equal(t, []string{"ex1@t1", "ex2@t2"}, keys(f.progressFile(t)))
	assert.Empty(t, f.opened)
	assert.Empty(t, f.repo.calls)
	assert.True(t, gjson.Get(f.savedConfig(t), "progress_remote").Bool())
}

func TestSyncer_LocalWinsOnDuplicateKey(t *testing.T) {
	f := newSyncFixture(t,
		`[{"exercise_name":"ex1","started_at":"t1","status":"SUCCESSFUL"}]`,
		`[{"exercise_name":"ex1","started_at":"t1","status":"UNSUCCESSFUL"}]`)

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))

	log := f.progressFile(t)
	require.Len(t, log, 1)
	assert.Equal(t, "SUCCESSFUL", log[0].Status())
	assert.False(t, f.syncer.HadUpdate())
}

func TestSyncer_AbsentFilesAreEmpty(t *testing.T) {
	f := newSyncFixture(t, "", "")

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))

	assert.Empty(t, f.progressFile(t))
	assert.False(t, f.syncer.HadUpdate())
	assert.Empty(t, f.repo.calls)
	assert.Equal(t, StateConfigPersisted, f.syncer.State())
}

func TestSyncer_SecondRunIsNoOp(t *testing.T) {
	f := newSyncFixture(t, `[{"exercise_name":"ex1","started_at":"t1"}]`, `[]`)
	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))

	// The fork now holds what the first run pushed
	f.cloner.files["progress.json"] = readFile(t, filepath.Join(f.dir, "progress", "progress.json"))
	f.repo.calls = nil

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))
	assert.False(t, f.syncer.HadUpdate())
	assert.Empty(t, f.repo.calls)
	assert.Len(t, f.host.created, 1)
	assert.Empty(t, f.host.forkCalls)
	assert.Equal(t, []string{"ex1@t1"}, keys(f.progressFile(t)))
}

func TestSyncer_CreatesMissingFork(t *testing.T) {
	f := newSyncFixture(t, "", "")
	delete(f.host.forks, "jane/jane-gitmastery-progress")

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))
	assert.Equal(t, []string{"git-mastery/progress->jane-gitmastery-progress"}, f.host.forkCalls)
}

func TestSyncer_ExistingPullRequest(t *testing.T) {
	f := newSyncFixture(t, "", "")
	f.host.prs = []github.PullRequest{{Number: 3}}

	require.NoError(t, f.syncer.Run(context.Background(), f.cfg))
	assert.Empty(t, f.host.created)
}

func TestSyncer_Failures(t *testing.T) {
	const local = `[{"exercise_name":"ex1","started_at":"t1"}]`
	boom := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(f *syncFixture)
		wantState State
		wantKind  gerrors.Kind
		keepLocal bool
	}{
		{
			name:      "prerequisites",
			setup:     func(f *syncFixture) { f.prereqs.err = gerrors.NewKind(gerrors.KindMissingPrerequisite, "check git", boom) },
			wantState: StateInitial,
			wantKind:  gerrors.KindMissingPrerequisite,
			keepLocal: true,
		},
		{
			name:      "username",
			setup:     func(f *syncFixture) { f.host.usernameErr = boom },
			wantState: StatePrereqsChecked,
			wantKind:  gerrors.KindRemoteOperation,
			keepLocal: true,
		},
		{
			name: "fork",
			setup: func(f *syncFixture) {
				delete(f.host.forks, "jane/jane-gitmastery-progress")
				f.host.forkErr = boom
			},
			wantState: StatePrereqsChecked,
			wantKind:  gerrors.KindRemoteOperation,
			keepLocal: true,
		},
		{
			name:      "clone",
			setup:     func(f *syncFixture) { f.cloner.err = boom },
			wantState: StateLocalCaptured,
			wantKind:  gerrors.KindRemoteOperation,
			keepLocal: true,
		},
		{
			name:      "push",
			setup:     func(f *syncFixture) { f.repo.pushErr = gerrors.NewKind(gerrors.KindRemoteOperation, "push", boom) },
			wantState: StateReconciled,
			wantKind:  gerrors.KindRemoteOperation,
		},
		{
			name:      "pull request",
			setup:     func(f *syncFixture) { f.host.createErr = boom },
			wantState: StatePushed,
			wantKind:  gerrors.KindRemoteOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, local, `[]`)
			tt.setup(f)

			err := f.syncer.Run(context.Background(), f.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.True(t, gerrors.IsKind(err, tt.wantKind), "kind of %v", err)
			assert.Equal(t, tt.wantState, f.syncer.State())

			assert.Equal(t, rootConfig, f.savedConfig(t))
			for _, line := range f.out.lines {
				assert.NotContains(t, line, "success:")
			}
			if tt.keepLocal {
				assert.Equal(t, local, readFile(t, filepath.Join(f.dir, "progress", "progress.json")))
			}
		})
	}
}

func TestSyncer_MalformedLocalProgress(t *testing.T) {
	f := newSyncFixture(t, `[{"exercise_name": "ex1"`, `[]`)

	err := f.syncer.Run(context.Background(), f.cfg)
	require.Error(t, err)
	assert.True(t, gerrors.IsKind(err, gerrors.KindMalformedProgress))
	assert.Equal(t, StateForkEnsured, f.syncer.State())
	assert.Empty(t, f.cloner.calls)
	assert.Equal(t, rootConfig, f.savedConfig(t))
}

func TestSyncer_MalformedRemoteProgress(t *testing.T) {
	f := newSyncFixture(t, `[]`, `[{"started_at": "t1"}]`)

	err := f.syncer.Run(context.Background(), f.cfg)
	require.Error(t, err)
	assert.True(t, gerrors.IsKind(err, gerrors.KindMalformedProgress))
	assert.Equal(t, StateRecloned, f.syncer.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "initial", StateInitial.String())
	assert.Equal(t, "skip_push", StateSkipPush.String())
	assert.Equal(t, "config_persisted", StateConfigPersisted.String())
	assert.Equal(t, "state(42)", State(42).String())
}
