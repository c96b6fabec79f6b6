package remotesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/urlutils"
)

// CloneManager replaces the local progress folder with a clone of the fork.
// FS is rooted at the Git-Mastery root.
type CloneManager struct {
	FS       billy.Filesystem
	Cloner   Cloner
	Settings config.Settings
	Logger   *slog.Logger

	// RepoURL maps "owner/repo" to a clone URL. Defaults to HTTPS on Settings.GitHubHost.
	RepoURL func(fullName string) (string, error)
}

func (m *CloneManager) repoURL(fullName string) (string, error) {
	if m.RepoURL != nil {
		return m.RepoURL(fullName)
	}
	return urlutils.RepoURL(m.Settings.GitHubHost, fullName)
}

func (m *CloneManager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

// Replace clones username/forkName next to the local folder and swaps it in.
// On any failure the existing folder is left as it was.
func (m *CloneManager) Replace(ctx context.Context, username, forkName string) error {
	const op = "replace local folder"
	folder := m.Settings.LocalFolder

	forkURL, err := m.repoURL(username + "/" + forkName)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, op, fmt.Errorf("fork URL: %w", err))
	}
	upstreamURL, err := m.repoURL(m.Settings.UpstreamRepo)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, op, fmt.Errorf("upstream URL: %w", err))
	}

	staging, err := util.TempDir(m.FS, ".", "."+folder+"-clone-")
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, op, fmt.Errorf("create staging directory: %w", err))
	}
	log := m.logger().With("folder", folder, "staging", staging)

	err = m.Cloner.Clone(ctx, git.CloneOptions{
		URL:         forkURL,
		UpstreamURL: upstreamURL,
		Dir:         staging,
	})
	if err != nil {
		m.cleanup(log, staging)
		return gerrors.NewKind(gerrors.KindRemoteOperation, op, err)
	}
	log.Debug("fork cloned into staging", "url", urlutils.Redact(forkURL))

	if err := m.swap(log, staging, folder); err != nil {
		m.cleanup(log, staging)
		return gerrors.NewKind(gerrors.KindRemoteOperation, op, err)
	}
	return nil
}

// swap moves folder aside, renames staging into its place and removes the
// old copy. If the second rename fails the old folder is moved back.
func (m *CloneManager) swap(log *slog.Logger, staging, folder string) error {
	_, err := m.FS.Stat(folder)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := m.FS.Rename(staging, folder); err != nil {
			return fmt.Errorf("move clone into place: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat %s: %w", folder, err)
	}

	old, err := m.reserveName("." + folder + "-old-")
	if err != nil {
		return err
	}
	if err := m.FS.Rename(folder, old); err != nil {
		return fmt.Errorf("move %s aside: %w", folder, err)
	}
	if err := m.FS.Rename(staging, folder); err != nil {
		if rerr := m.FS.Rename(old, folder); rerr != nil {
			log.Error("failed to restore local folder", "old", old, "error", rerr)
			return fmt.Errorf("move clone into place: %w (previous folder kept at %s)", err, old)
		}
		return fmt.Errorf("move clone into place: %w", err)
	}
	if err := util.RemoveAll(m.FS, old); err != nil {
		log.Warn("failed to remove previous folder", "old", old, "error", err)
	}
	return nil
}

// reserveName returns an unused sibling path starting with prefix
func (m *CloneManager) reserveName(prefix string) (string, error) {
	name, err := util.TempDir(m.FS, ".", prefix)
	if err != nil {
		return "", fmt.Errorf("reserve backup name: %w", err)
	}
	if err := m.FS.Remove(name); err != nil {
		return "", fmt.Errorf("reserve backup name: %w", err)
	}
	return name, nil
}

func (m *CloneManager) cleanup(log *slog.Logger, staging string) {
	if err := util.RemoveAll(m.FS, staging); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove staging directory", "error", err)
	}
}
