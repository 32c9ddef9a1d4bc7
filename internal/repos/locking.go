package repos

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate applies a row-level lock on dialects that support it. The sqlite
// used by the test harness has no FOR UPDATE; its single-writer transaction
// lock gives the same exclusion there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
