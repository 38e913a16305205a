package models

import "time"

// VIPPlan paket langganan VIP (akses fitur premium + bebas kuota AI)
type VIPPlan struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	Price        float64   `gorm:"not null" json:"price"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuotaPack paket isi ulang kuota tanya AI
type QuotaPack struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Quota     int       `gorm:"not null" json:"quota"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
