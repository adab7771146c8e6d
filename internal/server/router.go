// Package server is the HTTP surface: routing, sessions, and translation
// between request bodies and the catalog workflows. All marketplace rules
// live in internal/catalog; handlers only parse, call, and map errors to
// status codes.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"souq/internal/catalog"
	"souq/internal/chatbot"
)

const sessionSellerKey = "seller_id"

// Config carries the knobs the router needs.
type Config struct {
	SessionSecret string
	UploadDir     string
	MaxBodyBytes  int64
}

// New builds the gin engine with all routes mounted.
func New(gdb *gorm.DB, svc *catalog.Service, bot chatbot.Responder, cfg Config) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxBodyBytes
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodyBytes)
		c.Next()
	})

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("souq_session", store))

	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	h := &handlers{svc: svc, bot: bot}

	api := r.Group("/api")
	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.DELETE("/products/:id", h.deleteProduct)
	api.POST("/sellers/register", h.register)
	api.POST("/sellers/login", h.login)
	api.POST("/sellers/logout", h.logout)
	api.GET("/sellers/me", h.me)
	api.POST("/chat", h.chat)

	return r
}

type handlers struct {
	svc *catalog.Service
	bot chatbot.Responder
}

// currentSellerID resolves the authenticated seller from the session.
func currentSellerID(c *gin.Context) (uint, bool) {
	sess := sessions.Default(c)
	switch v := sess.Get(sessionSellerKey).(type) {
	case uint:
		return v, true
	case int:
		if v > 0 {
			return uint(v), true
		}
	}
	return 0, false
}

func setSessionSeller(c *gin.Context, id uint) {
	sess := sessions.Default(c)
	sess.Set(sessionSellerKey, id)
	_ = sess.Save()
}

func clearSessionSeller(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(sessionSellerKey)
	_ = sess.Save()
}

// fail maps the catalog error taxonomy onto status codes.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, catalog.ErrImageRejected):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, catalog.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
