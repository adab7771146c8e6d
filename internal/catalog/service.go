// Package catalog is the marketplace core: seller accounts and the
// product-creation workflow that couples relational rows with files in
// the upload store. Callers pass an already-resolved seller id; nothing
// in here reads sessions or requests.
package catalog

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"gorm.io/gorm"

	"souq/internal/images"
	"souq/internal/models"
)

// MaxImagesPerProduct caps uploads on a single product.
const MaxImagesPerProduct = 5

// Service runs the marketplace workflows over one store and one intake.
type Service struct {
	db     *gorm.DB
	intake *images.Intake
}

// NewService wires the workflows. EnsureSchema must have run already.
func NewService(db *gorm.DB, intake *images.Intake) *Service {
	return &Service{db: db, intake: intake}
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name     string
	Whatsapp string
	Pin      string
}

// RegisterSeller validates and creates a seller account. A duplicate
// normalized WhatsApp number surfaces as ErrConflict with nothing written.
func (s *Service) RegisterSeller(in RegisterInput) (*models.Seller, error) {
	name := strings.TrimSpace(in.Name)
	whatsapp := models.NormalizeWhatsapp(in.Whatsapp)
	pin := strings.TrimSpace(in.Pin)

	if len(name) < 2 || len(name) > 60 {
		return nil, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	if len(whatsapp) < 10 {
		return nil, fmt.Errorf("%w: invalid whatsapp", ErrValidation)
	}
	if !isDigits(pin) || len(pin) < 4 || len(pin) > 8 {
		return nil, fmt.Errorf("%w: pin must be 4-8 digits", ErrValidation)
	}

	hash, err := models.HashPin(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	seller := models.Seller{Name: name, Whatsapp: whatsapp, PinHash: hash}
	if err := s.db.Create(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: whatsapp already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create seller: %w", err)
	}
	return &seller, nil
}

// Login resolves a seller by normalized WhatsApp number and PIN. Unknown
// number and wrong PIN are indistinguishable to the caller.
func (s *Service) Login(whatsapp, pin string) (*models.Seller, error) {
	whatsapp = models.NormalizeWhatsapp(whatsapp)
	pin = strings.TrimSpace(pin)
	if whatsapp == "" || pin == "" {
		return nil, fmt.Errorf("%w: whatsapp and pin required", ErrValidation)
	}

	var seller models.Seller
	if err := s.db.Where("whatsapp = ?", whatsapp).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find seller: %w", err)
	}
	if !models.CheckPin(seller.PinHash, pin) {
		return nil, ErrInvalidCredentials
	}
	return &seller, nil
}

// GetSeller fetches one seller row.
func (s *Service) GetSeller(id uint) (*models.Seller, error) {
	var seller models.Seller
	if err := s.db.First(&seller, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find seller: %w", err)
	}
	return &seller, nil
}

// CreateProduct runs the two-phase creation workflow:
//
//  1. Insert the product row. It is the transactional anchor.
//  2. For each image in input order, store the file, then insert its row
//     with sort_order equal to the input position.
//  3. On any failure partway, delete the anchor row (image rows cascade)
//     and best-effort remove every file written by this call. No partial
//     product stays visible.
//
// A rejected image surfaces as ErrImageRejected after cleanup.
func (s *Service) CreateProduct(sellerID uint, name string, price float64, details string, imgs [][]byte) (*ProductView, error) {
	name = strings.TrimSpace(name)
	details = strings.TrimSpace(details)
	if name == "" || details == "" || price < 0 || math.IsNaN(price) {
		return nil, fmt.Errorf("%w: name, details required, price >= 0", ErrValidation)
	}
	if len(imgs) > MaxImagesPerProduct {
		return nil, fmt.Errorf("%w: max %d images allowed", ErrValidation, MaxImagesPerProduct)
	}

	product := models.Product{Name: name, Price: price, Details: details, SellerID: &sellerID}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	var saved []string
	rollback := func() {
		// Image rows go with the product via the cascade; files are
		// undone newest-first.
		if err := s.db.Delete(&models.Product{}, product.ID).Error; err != nil {
			log.Println("rollback product:", err)
		}
		for i := len(saved) - 1; i >= 0; i-- {
			s.intake.Remove(saved[i])
		}
	}

	for i, content := range imgs {
		filename, err := s.intake.Store(content)
		if err != nil {
			rollback()
			if errors.Is(err, images.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%w: %v", ErrImageRejected, err)
			}
			return nil, fmt.Errorf("store image: %w", err)
		}
		saved = append(saved, filename)

		row := models.ProductImage{ProductID: product.ID, Filename: filename, SortOrder: i}
		if err := s.db.Create(&row).Error; err != nil {
			rollback()
			return nil, fmt.Errorf("create product image: %w", err)
		}
	}

	return s.GetProduct(product.ID)
}

// DeleteProduct removes a seller's product. Image rows cascade with the
// product row; the stored files are removed best-effort afterwards.
func (s *Service) DeleteProduct(sellerID, productID uint) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find product: %w", err)
	}
	if product.SellerID == nil || *product.SellerID != sellerID {
		return ErrForbidden
	}

	var filenames []string
	if err := s.db.Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Pluck("filename", &filenames).Error; err != nil {
		return fmt.Errorf("list product images: %w", err)
	}

	if err := s.db.Delete(&models.Product{}, productID).Error; err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	for _, fn := range filenames {
		s.intake.Remove(fn)
	}
	return nil
}

// productRow is the join shape used by the read side.
type productRow struct {
	models.Product
	SellerName     *string
	SellerWhatsapp *string
}

// ListProducts returns every product, newest first, each with its owner
// and its images ordered by (sort_order, id).
func (s *Service) ListProducts() ([]ProductView, error) {
	var rows []productRow
	if err := s.joined().Order("products.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	imagesByProduct, err := s.imagesFor(ids)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.view(imagesByProduct[r.ID]))
	}
	return views, nil
}

// GetProduct assembles a single product view.
func (s *Service) GetProduct(id uint) (*ProductView, error) {
	var row productRow
	res := s.joined().Where("products.id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("get product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	imagesByProduct, err := s.imagesFor([]uint{id})
	if err != nil {
		return nil, err
	}
	view := row.view(imagesByProduct[id])
	return &view, nil
}

func (s *Service) joined() *gorm.DB {
	return s.db.Model(&models.Product{}).
		Select("products.*, sellers.name AS seller_name, sellers.whatsapp AS seller_whatsapp").
		Joins("LEFT JOIN sellers ON sellers.id = products.seller_id")
}

func (s *Service) imagesFor(productIDs []uint) (map[uint][]string, error) {
	byProduct := make(map[uint][]string)
	if len(productIDs) == 0 {
		return byProduct, nil
	}
	var imgs []models.ProductImage
	if err := s.db.Where("product_id IN ?", productIDs).
		Order("sort_order ASC, id ASC").
		Find(&imgs).Error; err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	for _, img := range imgs {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img.Filename)
	}
	return byProduct, nil
}

func (r productRow) view(filenames []string) ProductView {
	v := ProductView{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Details:   r.Details,
		CreatedAt: r.CreatedAt,
		SellerID:  r.SellerID,
		Images:    filenames,
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	if r.SellerID != nil && r.SellerName != nil {
		v.Seller = &SellerView{ID: *r.SellerID, Name: *r.SellerName, Whatsapp: *r.SellerWhatsapp}
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
