// Package git provides the local repository operations of the progress sync.
//
// Everything runs in-process through go-git on a billy filesystem, so no git
// binary is needed to clone, commit or push.
//
// Key Components:
//
// CloneOptions / Clone: Clone a remote into a directory of a billy
// filesystem, authenticating HTTPS remotes with a token, and register the
// optional upstream remote.
//
// Repo: An opened working copy. AddAll, Commit and Push cover the
// stage/commit/push cycle. Commit signs with the configured identity.
//
// Workspace: Binds a filesystem, token and identity so callers can clone
// and open repositories by directory name alone.
//
// Identity: The global user.name, user.email and init.defaultBranch.
//
// Example Usage:
//
//	ws := &git.Workspace{FS: osfs.New(root), Token: tok, Author: sig}
//	if err := ws.Clone(ctx, "progress", forkURL, upstreamURL); err != nil {
//	    return err
//	}
//	repo, err := ws.Open("progress")
//
// Error Handling:
//
// Failures are returned as *errors.OperationError of kind
// KindRemoteOperation, naming the operation that failed.
//
// Thread Safety:
//
// A Repo must not be used from multiple goroutines at once.
package git
