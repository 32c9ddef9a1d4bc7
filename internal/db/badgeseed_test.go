package db

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gdb.AutoMigrate(&types.BadgeDefinition{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "badges.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestSeedBadgeCatalog(t *testing.T) {
	gdb := openSeedDB(t)
	path := writeCatalog(t, `
badges:
  - name: First Steps
    description: Complete your first reading session.
    category: milestone
    condition_kind: first_reading
    condition_value: 1
    display_order: 1
  - name: Science Explorer
    category: genre
    condition_kind: genre_count
    condition_value: 10
    condition_extra: science
    display_order: 2
`)

	if err := SeedBadgeCatalog(gdb, logger.NewNop(), path); err != nil {
		t.Fatalf("SeedBadgeCatalog: %v", err)
	}

	var defs []types.BadgeDefinition
	if err := gdb.Order("display_order").Find(&defs).Error; err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[1].ConditionKind != types.BadgeCondGenreCount || defs[1].ConditionExtra != "science" {
		t.Fatalf("unexpected second definition: %+v", defs[1])
	}
}

func TestSeedBadgeCatalogUpsertsByName(t *testing.T) {
	gdb := openSeedDB(t)

	first := writeCatalog(t, `
badges:
  - name: Bookworm
    category: milestone
    condition_kind: total_readings
    condition_value: 10
`)
	if err := SeedBadgeCatalog(gdb, logger.NewNop(), first); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	second := writeCatalog(t, `
badges:
  - name: Bookworm
    description: Complete 20 reading sessions.
    category: milestone
    condition_kind: total_readings
    condition_value: 20
`)
	if err := SeedBadgeCatalog(gdb, logger.NewNop(), second); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var defs []types.BadgeDefinition
	if err := gdb.Find(&defs).Error; err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1 after upsert", len(defs))
	}
	if defs[0].ConditionValue != 20 {
		t.Fatalf("condition value = %d, want the reseeded 20", defs[0].ConditionValue)
	}
}

func TestSeedBadgeCatalogRejectsUnknownCondition(t *testing.T) {
	gdb := openSeedDB(t)
	path := writeCatalog(t, `
badges:
  - name: Broken
    category: milestone
    condition_kind: reads_per_minute
    condition_value: 1
`)
	if err := SeedBadgeCatalog(gdb, logger.NewNop(), path); err == nil {
		t.Fatal("unknown condition kind must fail")
	}
}

func TestSeedBadgeCatalogRejectsMissingName(t *testing.T) {
	gdb := openSeedDB(t)
	path := writeCatalog(t, `
badges:
  - category: milestone
    condition_kind: first_reading
    condition_value: 1
`)
	if err := SeedBadgeCatalog(gdb, logger.NewNop(), path); err == nil {
		t.Fatal("missing name must fail")
	}
}
