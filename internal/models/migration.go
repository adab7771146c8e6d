package models

// MigrationRecord tracks which schema versions have been applied.
// Rows are inserted once per version and never touched again.
type MigrationRecord struct {
	Version int `gorm:"primaryKey"`
}

// TableName pins the ledger to its historical name.
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}
