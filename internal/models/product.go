package models

// Product — products table. SellerID is nullable: rows that predate the
// sellers table have no owner.
type Product struct {
	Base
	Name     string  `gorm:"not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	Details  string  `gorm:"type:text;not null" json:"details"`
	SellerID *uint   `gorm:"index:idx_products_seller_id" json:"seller_id"`
}

// ProductImage — product_images table. Filename points into the upload
// store; the row and the file are created and destroyed together. Rows
// cascade when the owning product is deleted, files are the workflow's job.
type ProductImage struct {
	Base
	ProductID uint     `gorm:"not null;index:idx_product_images_product_id" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename  string   `gorm:"not null" json:"filename"`
	SortOrder int      `gorm:"not null;default:0" json:"sort_order"`
}
