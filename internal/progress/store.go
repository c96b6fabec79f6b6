package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

// Store reads and writes a progress log file
type Store struct {
	fs   billy.Filesystem
	path string
}

// NewStore creates a store for the file at name, relative to fs
func NewStore(fs billy.Filesystem, name string) *Store {
	return &Store{fs: fs, path: name}
}

// Path returns the file path relative to the store filesystem
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the progress file is present
func (s *Store) Exists() (bool, error) {
	_, err := s.fs.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", s.path, err)
}

// Load reads the log. An absent or empty file, and the empty object
// written by setup, all read as an empty log.
func (s *Store) Load() (Log, error) {
	data, err := util.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Log{}, nil
		}
		return nil, gerrors.New("load progress", fmt.Errorf("read %s: %w", s.path, err))
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("{}")) {
		return Log{}, nil
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, gerrors.NewKind(gerrors.KindMalformedProgress, "load progress",
			fmt.Errorf("%s: %w", s.path, err))
	}
	if log == nil {
		log = Log{}
	}
	return log, nil
}

// Save overwrites the file with the log, indented by two spaces.
// Parent directories are created as needed.
func (s *Store) Save(log Log) error {
	if log == nil {
		log = Log{}
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return gerrors.New("save progress", err)
	}
	if dir := path.Dir(s.path); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return gerrors.New("save progress", fmt.Errorf("create %s: %w", dir, err))
		}
	}
	if err := util.WriteFile(s.fs, s.path, append(data, '\n'), 0o644); err != nil {
		return gerrors.New("save progress", fmt.Errorf("write %s: %w", s.path, err))
	}
	return nil
}
