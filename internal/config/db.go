package config

import (
	"log"
	"os"
	"time"

	"legalhub-backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB koneksi global, dipakai langsung oleh handler & engine
var DB *gorm.DB

// ConnectDB buka koneksi MySQL + auto migrate semua tabel
func ConnectDB() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/legalhub?charset=utf8mb4&parseTime=True&loc=UTC"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Gagal konek database: ", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Gagal ambil sql.DB: ", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatal("Gagal migrasi: ", err)
	}

	DB = db
	log.Println("Database terkoneksi")
}

// Migrate dipisah biar bisa dipakai juga sama test (sqlite in-memory)
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PaymentOrder{},
		&models.PaymentCallbackEvent{},
		&models.Wallet{},
		&models.IncomeRecord{},
		&models.WithdrawalRequest{},
		&models.Consultation{},
		&models.VIPPlan{},
		&models.QuotaPack{},
	)
}
