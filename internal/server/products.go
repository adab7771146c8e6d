package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"souq/internal/catalog"
)

const uploadsPrefix = "/uploads/"

// productResponse is a ProductView with filenames rewritten as URLs.
type productResponse struct {
	catalog.ProductView
	Images []string `json:"images"`
}

func toProductResponse(v catalog.ProductView) productResponse {
	urls := make([]string, 0, len(v.Images))
	for _, fn := range v.Images {
		urls = append(urls, uploadsPrefix+fn)
	}
	return productResponse{ProductView: v, Images: urls}
}

func (h *handlers) listProducts(c *gin.Context) {
	views, err := h.svc.ListProducts()
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) createProduct(c *gin.Context) {
	sellerID, ok := currentSellerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	name := c.PostForm("name")
	details := c.PostForm("details")
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number >= 0"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	files := form.File["images"]
	if len(files) > catalog.MaxImagesPerProduct {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max 5 images allowed"})
		return
	}

	var contents [][]byte
	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
			return
		}
		contents = append(contents, data)
	}

	view, err := h.svc.CreateProduct(sellerID, name, price, details, contents)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*view))
}

func (h *handlers) deleteProduct(c *gin.Context) {
	sellerID, ok := currentSellerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := h.svc.DeleteProduct(sellerID, uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
