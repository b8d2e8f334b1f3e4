package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
)

var DB *gorm.DB

// Connect opens the PostgreSQL connection described by the loaded config.
// On Cloud Run the Cloud SQL instance is reached over its unix socket;
// locally we fall back to TCP on the default port.
func Connect(cfg *config.Config) {
	var dsn string
	if cfg.InstanceConnectionName != "" {
		dsn = fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceConnectionName, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		log.Printf("Connecting to Cloud SQL via socket: %s", cfg.InstanceConnectionName)
	} else {
		dsn = fmt.Sprintf("host=localhost user=%s password=%s dbname=%s port=5432 sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBName)
		log.Println("Connecting to local PostgreSQL")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		panic(err)
	}

	log.Println("✅ Database connected successfully!")
}
