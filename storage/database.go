package storage

import (
	"kos-marketplace-server/models"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connecting to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Kos{},
		&models.Facility{},
		&models.KosPicture{},
		&models.Book{},
		&models.Review{},
		&models.Notification{},
	)

	// Backstop for the handler-level conflict check: a renter can hold at
	// most one live pending book per kos.
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_books_one_pending
		ON books (user_id, kos_id)
		WHERE status = 'pending' AND deleted_at IS NULL;`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
