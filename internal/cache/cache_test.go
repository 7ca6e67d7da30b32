package cache

import (
	"testing"

	"github.com/leakhound/leakhound/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsEmptyDB(t *testing.T) {
	db, err := Load(t.TempDir())
	assert.Error(t, err)
	assert.NotNil(t, db.Entries)
	assert.Empty(t, db.Entries)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	root := t.TempDir()
	db := DB{Entries: map[string]string{"a.go": Hash([]byte("content"))}}
	require.NoError(t, Save(root, db))

	got, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, db.Entries, got.Entries)
}

func TestHashStableAndDistinct(t *testing.T) {
	assert.Equal(t, Hash([]byte("x")), Hash([]byte("x")))
	assert.NotEqual(t, Hash([]byte("x")), Hash([]byte("y")))
	assert.Equal(t, "0000000000000000", Hash(nil))
	assert.Len(t, Hash([]byte("anything")), 16)
}

func TestResultRoundtrip(t *testing.T) {
	root := t.TempDir()
	res := types.ScanResult{
		ScanID: "abc",
		Mode:   types.ModeQuick,
		Findings: []types.Finding{
			{Category: "aws_access_key", Severity: types.SevCritical, Path: "a.py", Line: 3, Match: "AKIA...", Source: types.SourceCurrent, Status: types.StatusActive},
		},
	}
	require.NoError(t, SaveResult(root, res))
	last, err := LoadResult(root)
	require.NoError(t, err)
	assert.Equal(t, "abc", last.Result.ScanID)
	require.Len(t, last.Result.Findings, 1)
	assert.Equal(t, "aws_access_key", last.Result.Findings[0].Category)
}
