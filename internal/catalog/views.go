package catalog

import "time"

// SellerView is the public slice of a seller row joined onto a product.
type SellerView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
}

// ProductView is a product assembled with its owner and its image
// filenames in display order. Filenames are store-relative; turning them
// into URLs is the serving layer's concern.
type ProductView struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Price     float64     `json:"price"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"created_at"`
	SellerID  *uint       `json:"seller_id"`
	Seller    *SellerView `json:"seller"`
	Images    []string    `json:"images"`
}
