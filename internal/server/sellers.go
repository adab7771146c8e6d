package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"souq/internal/catalog"
)

type registerRequest struct {
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
	Pin      string `json:"pin"`
}

type loginRequest struct {
	Whatsapp string `json:"whatsapp"`
	Pin      string `json:"pin"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	seller, err := h.svc.RegisterSeller(catalog.RegisterInput{
		Name:     req.Name,
		Whatsapp: req.Whatsapp,
		Pin:      req.Pin,
	})
	if err != nil {
		fail(c, err)
		return
	}
	setSessionSeller(c, seller.ID)
	c.JSON(http.StatusCreated, seller)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	seller, err := h.svc.Login(req.Whatsapp, req.Pin)
	if err != nil {
		fail(c, err)
		return
	}
	setSessionSeller(c, seller.ID)
	c.JSON(http.StatusOK, seller)
}

func (h *handlers) logout(c *gin.Context) {
	clearSessionSeller(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handlers) me(c *gin.Context) {
	id, ok := currentSellerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	seller, err := h.svc.GetSeller(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}
