package remotesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

// ForkManager ensures the user owns a fork of the upstream repository
type ForkManager struct {
	Host     Host
	Settings config.Settings
	Out      Reporter
	Logger   *slog.Logger

	// sleep waits between readiness polls. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ensure creates the fork of username when it does not exist yet. A fork that
// already exists is left untouched.
func (m *ForkManager) Ensure(ctx context.Context, username string) error {
	out := reporterOrNop(m.Out)
	forkName := m.Settings.ForkNameFor(username)

	out.Info("Checking if you have fork of %s", m.Settings.UpstreamRepo)
	exists, err := m.Host.HasFork(ctx, username, forkName)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "check fork", err)
	}
	if exists {
		out.Info("You already have a fork")
		return nil
	}

	out.Warn("You don't have a fork yet, creating one")
	if err := m.Host.Fork(ctx, m.Settings.UpstreamRepo, forkName); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "create fork", err)
	}
	m.logger().Info("fork requested", "upstream", m.Settings.UpstreamRepo, "fork", username+"/"+forkName)

	return m.waitReady(ctx, username, forkName)
}

// waitReady polls until the new fork is visible. Forking is asynchronous on
// GitHub and a clone issued too early fails.
func (m *ForkManager) waitReady(ctx context.Context, owner, forkName string) error {
	attempts := m.Settings.ForkPollAttempts
	if attempts <= 0 {
		return nil
	}
	sleep := m.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for i := 1; i <= attempts; i++ {
		ready, err := m.Host.HasFork(ctx, owner, forkName)
		if err != nil {
			return gerrors.NewKind(gerrors.KindRemoteOperation, "check fork", err)
		}
		if ready {
			m.logger().Debug("fork ready", "attempt", i)
			return nil
		}
		if i == attempts {
			break
		}
		if err := sleep(ctx, m.Settings.ForkPollInterval); err != nil {
			return gerrors.NewKind(gerrors.KindRemoteOperation, "create fork", err)
		}
	}
	return gerrors.NewKind(gerrors.KindRemoteOperation, "create fork",
		fmt.Errorf("fork %s/%s is not available after %d checks", owner, forkName, attempts))
}

func (m *ForkManager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}
