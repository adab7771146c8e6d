package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Seller — sellers table. A seller is identified by their normalized
// WhatsApp number; the PIN hash never leaves the server.
type Seller struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Whatsapp string `gorm:"uniqueIndex:idx_sellers_whatsapp;not null" json:"whatsapp"`
	PinHash  string `gorm:"not null" json:"-"`
}

// HashPin turns a plain PIN into a bcrypt hash for storage.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPin reports whether a plain PIN matches the stored hash.
func CheckPin(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// NormalizeWhatsapp canonicalizes a phone string: spaces dropped, a leading
// "+" kept, everything else reduced to digits. Registration and login must
// both go through this so the uniqueness index sees one spelling per number.
func NormalizeWhatsapp(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
		s = s[1:]
	}
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 || b.String() == "+" {
		return ""
	}
	return b.String()
}
