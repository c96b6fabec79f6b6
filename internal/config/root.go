package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

const (
	// RootFileName marks the Git-Mastery root directory
	RootFileName = ".gitmastery.json"

	keyProgressLocal  = "progress_local"
	keyProgressRemote = "progress_remote"
)

// ErrRootNotFound is returned when no ancestor directory holds the config file
var ErrRootNotFound = errors.New("not inside a Git-Mastery directory")

// FindRoot walks from start towards the filesystem root looking for a directory
// containing name. It returns that directory and how many levels up it is.
func FindRoot(start, name string) (string, int, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", 0, fmt.Errorf("resolve %s: %w", start, err)
	}
	for steps := 0; ; steps++ {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return dir, steps, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", 0, ErrRootNotFound
		}
		dir = parent
	}
}

// CdHint returns the "cd .." sequence needed to climb the given number of levels
func CdHint(steps int) string {
	if steps <= 0 {
		return ""
	}
	return "cd " + strings.TrimSuffix(strings.Repeat("../", steps), "/")
}

// RequireRoot finds the Git-Mastery root above start. When atRoot is set the
// caller must already be in the root; otherwise the error names the way up.
func RequireRoot(start string, atRoot bool) (string, error) {
	dir, steps, err := FindRoot(start, RootFileName)
	if err != nil {
		return "", gerrors.NewKind(gerrors.KindConfig, "find root",
			fmt.Errorf("%w, run gitmastery setup first", err))
	}
	if atRoot && steps > 0 {
		return "", gerrors.NewKind(gerrors.KindConfig, "find root",
			fmt.Errorf("use %q to return to the Git-Mastery root first", CdHint(steps)))
	}
	return dir, nil
}

// Root is the root configuration document. The raw bytes are kept so that
// every key other than the ones written here survives a save untouched.
type Root struct {
	raw []byte
}

// ParseRoot wraps an existing document
func ParseRoot(data []byte) (*Root, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, gerrors.NewKind(gerrors.KindConfig, "parse config",
			fmt.Errorf("%s is not a JSON object", RootFileName))
	}
	return &Root{raw: data}, nil
}

// LoadRoot reads the config file at name on fs
func LoadRoot(fs billy.Filesystem, name string) (*Root, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindConfig, "load config", err)
	}
	return ParseRoot(data)
}

// ProgressLocal reports whether local progress tracking is set up
func (r *Root) ProgressLocal() bool {
	return gjson.GetBytes(r.raw, keyProgressLocal).Bool()
}

// ProgressRemote reports whether remote sync is enabled
func (r *Root) ProgressRemote() bool {
	return gjson.GetBytes(r.raw, keyProgressRemote).Bool()
}

// SetProgressRemote sets the progress_remote flag in place
func (r *Root) SetProgressRemote(enabled bool) error {
	out, err := sjson.SetBytes(r.raw, keyProgressRemote, enabled)
	if err != nil {
		return gerrors.NewKind(gerrors.KindConfig, "set "+keyProgressRemote, err)
	}
	r.raw = out
	return nil
}

// Get returns the raw value of an arbitrary key path
func (r *Root) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Bytes returns the current document
func (r *Root) Bytes() []byte {
	return append([]byte(nil), r.raw...)
}

// SaveRoot writes the document back to name on fs
func SaveRoot(fs billy.Filesystem, name string, r *Root) error {
	if err := util.WriteFile(fs, name, r.raw, 0o644); err != nil {
		return gerrors.NewKind(gerrors.KindConfig, "save config", err)
	}
	return nil
}
