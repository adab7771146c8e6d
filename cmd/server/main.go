package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"souq/internal/catalog"
	"souq/internal/chatbot"
	mydb "souq/internal/db"
	"souq/internal/images"
	"souq/internal/server"
)

const defaultMaxBody = 10 << 20 // 10 MiB

func main() {
	// .env from the current dir and the parents, for running out of cmd/server.
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	gdb := mydb.MustOpen()
	sqlDB, _ := gdb.DB()
	defer sqlDB.Close()

	// Startup barrier: nothing touches the tables before the schema is current.
	if err := mydb.EnsureSchema(gdb, mydb.Steps()); err != nil {
		log.Fatal("schema migration failed: ", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	intake, err := images.NewIntake(uploadDir)
	if err != nil {
		log.Fatal(err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-only-change-me"
	}

	maxBody := int64(defaultMaxBody)
	if raw := os.Getenv("MAX_CONTENT_LENGTH"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			maxBody = n
		}
	}

	svc := catalog.NewService(gdb, intake)
	r := server.New(gdb, svc, chatbot.New(), server.Config{
		SessionSecret: secret,
		UploadDir:     uploadDir,
		MaxBodyBytes:  maxBody,
	})

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server listening on :" + port)
	log.Fatal(r.Run(":" + port))
}
