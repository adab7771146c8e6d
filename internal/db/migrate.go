package db

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"souq/internal/models"
)

// Step is one versioned schema change. Run must be written to be safe to
// re-run (guard with HasTable/HasColumn), so a crash between the DDL and
// the ledger insert converges on retry. Version numbers are never reused
// or reordered once shipped.
type Step struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

// EnsureSchema brings the store up to the latest known version. It creates
// the ledger table first, then walks the steps in ascending version order,
// skipping versions the ledger already holds and recording each newly
// applied one before moving on. Any failure aborts the whole call; partial
// schema state is fine because the failed step is retried on the next run.
func EnsureSchema(gdb *gorm.DB, steps []Step) error {
	if err := gdb.AutoMigrate(&models.MigrationRecord{}); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, s := range sorted {
		done, err := isApplied(gdb, s.Version)
		if err != nil {
			return fmt.Errorf("check migration v%d: %w", s.Version, err)
		}
		if done {
			continue
		}
		if err := s.Run(gdb); err != nil {
			return fmt.Errorf("apply migration v%d %s: %w", s.Version, s.Name, err)
		}
		if err := recordApplied(gdb, s.Version); err != nil {
			return fmt.Errorf("record migration v%d: %w", s.Version, err)
		}
	}
	return nil
}

func isApplied(gdb *gorm.DB, version int) (bool, error) {
	var n int64
	err := gdb.Model(&models.MigrationRecord{}).Where("version = ?", version).Count(&n).Error
	return n > 0, err
}

func recordApplied(gdb *gorm.DB, version int) error {
	return gdb.Create(&models.MigrationRecord{Version: version}).Error
}

// productV1 is the products table as first shipped, before sellers existed.
type productV1 struct {
	models.Base
	Name    string  `gorm:"not null"`
	Price   float64 `gorm:"not null"`
	Details string  `gorm:"type:text;not null"`
}

func (productV1) TableName() string { return "products" }

// Steps returns the full schema history in shipped order.
func Steps() []Step {
	return []Step{
		{
			Version: 1,
			Name:    "create products",
			Run: func(tx *gorm.DB) error {
				if tx.Migrator().HasTable("products") {
					return nil
				}
				return tx.Migrator().CreateTable(&productV1{})
			},
		},
		{
			Version: 2,
			Name:    "create sellers",
			Run: func(tx *gorm.DB) error {
				if tx.Migrator().HasTable("sellers") {
					return nil
				}
				return tx.Migrator().CreateTable(&models.Seller{})
			},
		},
		{
			Version: 3,
			Name:    "products seller_id",
			Run: func(tx *gorm.DB) error {
				m := tx.Migrator()
				if !m.HasColumn(&models.Product{}, "seller_id") {
					if err := m.AddColumn(&models.Product{}, "SellerID"); err != nil {
						return err
					}
				}
				if !m.HasIndex(&models.Product{}, "idx_products_seller_id") {
					return m.CreateIndex(&models.Product{}, "SellerID")
				}
				return nil
			},
		},
		{
			Version: 4,
			Name:    "create product_images",
			Run: func(tx *gorm.DB) error {
				if tx.Migrator().HasTable("product_images") {
					return nil
				}
				return tx.Migrator().CreateTable(&models.ProductImage{})
			},
		},
	}
}
