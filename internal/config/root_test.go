package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, RootFileName), []byte(`{}`), 0o644))
	nested := filepath.Join(root, "ex1", "repo")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	dir, steps, err := FindRoot(nested, RootFileName)
	require.NoError(t, err)
	assert.Equal(t, root, dir)
	assert.Equal(t, 2, steps)

	dir, steps, err = FindRoot(root, RootFileName)
	require.NoError(t, err)
	assert.Equal(t, root, dir)
	assert.Equal(t, 0, steps)
}

func TestFindRoot_NotFound(t *testing.T) {
	_, _, err := FindRoot(t.TempDir(), ".does-not-exist-anywhere.json")
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestRequireRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, RootFileName), []byte(`{}`), 0o644))
	nested := filepath.Join(root, "ex1")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	dir, err := RequireRoot(nested, false)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	_, err = RequireRoot(nested, true)
	require.Error(t, err)
	assert.True(t, gerrors.IsKind(err, gerrors.KindConfig))
	assert.Contains(t, err.Error(), "cd ..")
}

func TestCdHint(t *testing.T) {
	assert.Equal(t, "", CdHint(0))
	assert.Equal(t, "cd ..", CdHint(1))
	assert.Equal(t, "cd ../../..", CdHint(3))
}

func TestRoot_SetProgressRemotePreservesKeys(t *testing.T) {
	fs := memfs.New()
	original := `{"progress_local": true, "progress_remote": false, "nested": {"b": 2, "a": [1, 2]}, "zeta": "last"}`
	require.NoError(t, util.WriteFile(fs, RootFileName, []byte(original), 0o644))

	cfg, err := LoadRoot(fs, RootFileName)
	require.NoError(t, err)
	assert.True(t, cfg.ProgressLocal())
	assert.False(t, cfg.ProgressRemote())

	require.NoError(t, cfg.SetProgressRemote(true))
	require.NoError(t, SaveRoot(fs, RootFileName, cfg))

	data, err := util.ReadFile(fs, RootFileName)
	require.NoError(t, err)
	assert.Equal(t, `{"progress_local": true, "progress_remote": true, "nested": {"b": 2, "a": [1, 2]}, "zeta": "last"}`, string(data))

	reloaded, err := LoadRoot(fs, RootFileName)
	require.NoError(t, err)
	assert.True(t, reloaded.ProgressRemote())
	assert.Equal(t, int64(2), reloaded.Get("nested.b").Int())
}

func TestRoot_SetProgressRemoteAddsKey(t *testing.T) {
	cfg, err := ParseRoot([]byte(`{"progress_local": true}`))
	require.NoError(t, err)

	require.NoError(t, cfg.SetProgressRemote(true))
	assert.True(t, cfg.ProgressRemote())
	assert.JSONEq(t, `{"progress_local": true, "progress_remote": true}`, string(cfg.Bytes()))
}

func TestParseRoot_Invalid(t *testing.T) {
	for _, input := range []string{`[1,2]`, `{"a":`, `"str"`} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRoot([]byte(input))
			require.Error(t, err)
			assert.True(t, gerrors.IsKind(err, gerrors.KindConfig))
		})
	}
}

func TestLoadRoot_Missing(t *testing.T) {
	_, err := LoadRoot(memfs.New(), RootFileName)
	require.Error(t, err)
	assert.True(t, gerrors.IsKind(err, gerrors.KindConfig))
}

func TestExerciseName(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "ex/"+ExerciseFileName, []byte(`{"exercise_name": "amateur-detective", "tags": []}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "bad/"+ExerciseFileName, []byte(`{"tags": []}`), 0o644))

	name, err := ExerciseName(fs, "ex/"+ExerciseFileName)
	require.NoError(t, err)
	assert.Equal(t, "amateur-detective", name)

	_, err = ExerciseName(fs, "bad/"+ExerciseFileName)
	assert.True(t, gerrors.IsKind(err, gerrors.KindConfig))
}
