package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"souq/internal/models"
)

func openTest(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return gdb
}

func appliedVersions(t *testing.T, gdb *gorm.DB) []int {
	t.Helper()
	var versions []int
	require.NoError(t, gdb.Model(&models.MigrationRecord{}).Order("version").Pluck("version", &versions).Error)
	return versions
}

func TestEnsureSchema(t *testing.T) {
	t.Run("applies all steps in order", func(t *testing.T) {
		gdb := openTest(t)
		require.NoError(t, EnsureSchema(gdb, Steps()))

		for _, table := range []string{"schema_migrations", "products", "sellers", "product_images"} {
			assert.True(t, gdb.Migrator().HasTable(table), "missing table %s", table)
		}
		assert.True(t, gdb.Migrator().HasColumn(&models.Product{}, "seller_id"))
		assert.Equal(t, []int{1, 2, 3, 4}, appliedVersions(t, gdb))
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		gdb := openTest(t)
		require.NoError(t, EnsureSchema(gdb, Steps()))
		require.NoError(t, EnsureSchema(gdb, Steps()))

		assert.Equal(t, []int{1, 2, 3, 4}, appliedVersions(t, gdb))
	})

	t.Run("steps run once even when the list is re-shuffled", func(t *testing.T) {
		gdb := openTest(t)
		runs := map[int]int{}
		steps := []Step{
			{Version: 3, Name: "c", Run: func(*gorm.DB) error { runs[3]++; return nil }},
			{Version: 1, Name: "a", Run: func(*gorm.DB) error { runs[1]++; return nil }},
			{Version: 2, Name: "b", Run: func(*gorm.DB) error { runs[2]++; return nil }},
		}

		require.NoError(t, EnsureSchema(gdb, steps))
		require.NoError(t, EnsureSchema(gdb, []Step{steps[2], steps[0], steps[1]}))

		assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, runs)
		assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, gdb))
	})

	t.Run("sorts shuffled input ascending by version", func(t *testing.T) {
		gdb := openTest(t)
		var order []int
		steps := []Step{
			{Version: 4, Run: func(*gorm.DB) error { order = append(order, 4); return nil }},
			{Version: 1, Run: func(*gorm.DB) error { order = append(order, 1); return nil }},
			{Version: 3, Run: func(*gorm.DB) error { order = append(order, 3); return nil }},
			{Version: 2, Run: func(*gorm.DB) error { order = append(order, 2); return nil }},
		}

		require.NoError(t, EnsureSchema(gdb, steps))
		assert.Equal(t, []int{1, 2, 3, 4}, order)
	})

	t.Run("failing step aborts and converges on retry", func(t *testing.T) {
		gdb := openTest(t)
		boom := errors.New("boom")
		broken := true
		steps := []Step{
			{Version: 1, Run: func(*gorm.DB) error { return nil }},
			{Version: 2, Run: func(*gorm.DB) error {
				if broken {
					return boom
				}
				return nil
			}},
			{Version: 3, Run: func(*gorm.DB) error { return nil }},
		}

		err := EnsureSchema(gdb, steps)
		require.ErrorIs(t, err, boom)
		// v1 stays recorded, the failed step and everything after it do not.
		assert.Equal(t, []int{1}, appliedVersions(t, gdb))

		broken = false
		require.NoError(t, EnsureSchema(gdb, steps))
		assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, gdb))
	})
}

func TestLedger(t *testing.T) {
	gdb := openTest(t)
	require.NoError(t, gdb.AutoMigrate(&models.MigrationRecord{}))

	done, err := isApplied(gdb, 7)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, recordApplied(gdb, 7))

	done, err = isApplied(gdb, 7)
	require.NoError(t, err)
	assert.True(t, done)

	// Versions are recorded at most once.
	assert.Error(t, recordApplied(gdb, 7))
}
