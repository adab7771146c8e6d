package db

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultPath is the embedded store used when DB_DSN is not set.
const DefaultPath = "souq.db"

// Open connects to the store behind dsn. A postgres DSN selects the
// postgres driver; anything else is treated as a sqlite file path, with
// foreign key enforcement switched on (sqlite ships with it off).
func Open(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch {
	case dsn == "":
		dial = sqlite.Open(DefaultPath + "?_foreign_keys=on")
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		dial = postgres.Open(dsn)
	default:
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
		dial = sqlite.Open(dsn)
	}
	return gorm.Open(dial, &gorm.Config{TranslateError: true})
}

// MustOpen opens the store from the DB_DSN env var or dies.
func MustOpen() *gorm.DB {
	gdb, err := Open(os.Getenv("DB_DSN"))
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	return gdb
}
