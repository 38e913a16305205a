package models

import "time"

// Wallet dompet saldo per user (1:1). AvailableBalance gak boleh minus
// di titik commit manapun. Mutasi saldo CUMA boleh terjadi di dalam
// transaksi yang juga nulis row ledger pemicunya (order paid / payout).
type Wallet struct {
	ID               uint64    `gorm:"primaryKey" json:"id"`
	UserID           uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	AvailableBalance float64   `gorm:"default:0" json:"available_balance"`
	UpdatedAt        time.Time `json:"updated_at"`
}
