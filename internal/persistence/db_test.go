package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needle-hull/internal/physics"
	"github.com/talgya/needle-hull/internal/snapshot"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "nested", "hullsim.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.SaveSnapshot(snapshot.Build(physics.Recompute(physics.NewPipelineState())))
	assert.NoError(t, err)
}

func TestSaveAndLoadSnapshots(t *testing.T) {
	db := testDB(t)
	st := physics.Recompute(physics.NewPipelineState())

	id, err := db.SaveSnapshot(snapshot.Build(st))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rows, err := db.RecentSnapshots(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, "hover", rows[0].Mode)
	assert.Equal(t, "NOMINAL", rows[0].Status)
	assert.InEpsilon(t, st.PowerAvgMW, rows[0].PowerAvgMW, 1e-9)
	assert.Contains(t, rows[0].PayloadJSON, `"sectorCount":400`)
}

func TestRecentSnapshotsOrderAndLimit(t *testing.T) {
	db := testDB(t)

	for _, m := range []physics.Mode{physics.ModeStandby, physics.ModeHover, physics.ModeWarp} {
		s := physics.NewPipelineState()
		s.Mode = m
		_, err := db.SaveSnapshot(snapshot.Build(physics.Recompute(s)))
		require.NoError(t, err)
	}

	rows, err := db.RecentSnapshots(2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPruneSnapshots(t *testing.T) {
	db := testDB(t)
	st := physics.Recompute(physics.NewPipelineState())

	for i := 0; i < 5; i++ {
		_, err := db.SaveSnapshot(snapshot.Build(st))
		require.NoError(t, err)
	}
	require.NoError(t, db.PruneSnapshots(2))

	rows, err := db.RecentSnapshots(100)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMetaRoundTrip(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SaveMeta("schema_rev", "3"))
	require.NoError(t, db.SaveMeta("schema_rev", "4"))

	v, err := db.GetMeta("schema_rev")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}
