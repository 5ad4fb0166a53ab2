package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/apperrors"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := New(t.TempDir(), nil)

	in := widget{Name: "gizmo", Count: 3}
	require.NoError(t, s.Save("things", "gizmo.json", in))

	var out widget
	require.NoError(t, s.Load("things", "gizmo.json", &out))
	assert.Equal(t, in, out)
}

func TestStore_Save_CreatesMissingDirectory(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)

	require.NoError(t, s.Save("a/b/c", "doc.json", widget{Name: "x"}))

	_, err := os.Stat(filepath.Join(root, "a", "b", "c", "doc.json"))
	require.NoError(t, err)
}

func TestStore_Save_WritesAtomically(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)

	require.NoError(t, s.Save("things", "gizmo.json", widget{Name: "gizmo"}))

	// the temp file must not linger once the rename has landed
	_, err := os.Stat(filepath.Join(root, "things", "gizmo.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Load_NotFound(t *testing.T) {
	s := New(t.TempDir(), nil)

	var out widget
	err := s.Load("things", "missing.json", &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_List(t *testing.T) {
	s := New(t.TempDir(), nil)
	require.NoError(t, s.Save("things", "a.json", widget{Name: "a"}))
	require.NoError(t, s.Save("things", "b.json", widget{Name: "b"}))

	names, err := s.List("things")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.json", "b.json"}, names)
}

func TestStore_List_AbsentDirectoryIsEmptyNotError(t *testing.T) {
	s := New(t.TempDir(), nil)

	names, err := s.List("never-written")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_Delete(t *testing.T) {
	s := New(t.TempDir(), nil)
	require.NoError(t, s.Save("things", "a.json", widget{Name: "a"}))

	require.NoError(t, s.Delete("things", "a.json"))

	var out widget
	err := s.Load("things", "a.json", &out)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_Delete_AbsentIsNoop(t *testing.T) {
	s := New(t.TempDir(), nil)
	assert.NoError(t, s.Delete("things", "never-existed.json"))
}

func TestStore_ListDirs(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)
	require.NoError(t, s.Save("kg_storage/graph_one", "metadata.json", widget{Name: "one"}))
	require.NoError(t, s.Save("kg_storage/graph_two", "metadata.json", widget{Name: "two"}))

	names, err := s.ListDirs("kg_storage")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"graph_one", "graph_two"}, names)
}
