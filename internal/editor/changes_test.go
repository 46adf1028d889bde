package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/internal/grid"
)

func trackedStore(t *testing.T, rows [][]string) (*grid.Store, *ChangeTracker) {
	t.Helper()
	store, err := grid.New(rows)
	require.NoError(t, err)
	ct := NewChangeTracker()
	store.Subscribe(ct.Observe)
	return store, ct
}

func TestChangeTracker_StagesCellWrites(t *testing.T) {
	store, ct := trackedStore(t, [][]string{{"a", "b"}})

	require.NoError(t, store.SetCell(0, 1, "x"))
	require.NoError(t, store.SetCell(0, 1, "y"))

	assert.True(t, ct.IsModified(0, 1))
	assert.False(t, ct.IsModified(0, 0))
	e, ok := ct.GetCellEdit(grid.Cell{Row: 0, Col: 1})
	require.True(t, ok)
	assert.Equal(t, "b", e.OldValue)
	assert.Equal(t, "y", e.NewValue)
	assert.Equal(t, 1, ct.PendingCount())
}

func TestChangeTracker_RestoringOriginalUnstages(t *testing.T) {
	store, ct := trackedStore(t, [][]string{{"a"}})

	require.NoError(t, store.SetCell(0, 0, "x"))
	require.NoError(t, store.SetCell(0, 0, "a"))

	assert.False(t, ct.IsModified(0, 0))
	assert.False(t, ct.HasChanges())
}

func TestChangeTracker_FollowsStructuralChanges(t *testing.T) {
	store, ct := trackedStore(t, [][]string{{"a", "b"}, {"c", "d"}})

	require.NoError(t, store.SetCell(0, 1, "x"))
	require.NoError(t, store.SetCell(1, 0, "y"))
	require.NoError(t, store.InsertRow(0))
	require.NoError(t, store.DeleteColumn(0))

	assert.Equal(t, []CellEdit{{Cell: grid.Cell{Row: 1, Col: 0}, OldValue: "b", NewValue: "x"}}, ct.Edits())
	assert.Equal(t, 2, ct.StructuralCount())
	assert.True(t, ct.HasChanges())

	ct.Clear()
	assert.False(t, ct.HasChanges())
}
