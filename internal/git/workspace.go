package git

import (
	"context"
	"io"

	"github.com/go-git/go-billy/v5"
)

// Workspace clones and opens repositories under one filesystem root
type Workspace struct {
	FS       billy.Filesystem
	Token    string
	Progress io.Writer
	Author   Signature
}

// Clone clones opts.URL into opts.Dir. Token and Progress default to the
// workspace values when unset.
func (w *Workspace) Clone(ctx context.Context, opts CloneOptions) error {
	if opts.Token == "" {
		opts.Token = w.Token
	}
	if opts.Progress == nil && w.Progress != nil {
		opts.Progress = NewProgressWriter("  ", w.Progress)
	}
	_, err := Clone(ctx, w.FS, opts)
	return err
}

// Open opens the repository in dir with the workspace author set
func (w *Workspace) Open(dir string) (*Repo, error) {
	r, err := Open(w.FS, dir, w.Token)
	if err != nil {
		return nil, err
	}
	r.SetAuthor(w.Author)
	if w.Progress != nil {
		r.progress = NewProgressWriter("  ", w.Progress)
	}
	return r, nil
}
