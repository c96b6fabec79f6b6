// Package remotesync keeps the local progress log in step with the student's
// fork of the shared progress repository.
//
// Key Components:
//
// ForkManager: Makes sure the student owns a fork of the upstream progress
// repository, creating one only when absent and waiting until it is visible.
//
// CloneManager: Replaces the local progress folder with a fresh clone of the
// fork. The clone lands in a sibling staging directory first and is swapped
// into place only after it succeeds, so a failed clone never loses the
// existing folder.
//
// PullRequestManager: Makes sure exactly one open pull request from the fork
// into upstream exists.
//
// Syncer: Runs the full "sync on" sequence and persists progress_remote only
// once every step has succeeded.
//
// Disabler: Runs "sync off", deleting the fork and leaving a plain local
// folder that holds the current log.
//
// Every collaborator (GitHub, git, prerequisite checks) is an interface, so
// the whole sequence runs against fakes in tests.
package remotesync
