package models

import "time"

// Verdict hasil verifikasi callback. Satu row per percobaan,
// termasuk yang ditolak dan yang duplikat.
const (
	VerdictOK               = "ok"
	VerdictSignatureInvalid = "signature_invalid"
	VerdictAmountMismatch   = "amount_mismatch"
	VerdictOrderNotFound    = "order_not_found"
	VerdictAlreadyProcessed = "already_processed"
	VerdictOrderExpired     = "order_expired"
	VerdictOrderClosed      = "order_closed"
)

// PaymentCallbackEvent adalah jejak forensik untuk sengketa pembayaran.
// Append-only: tidak pernah di-update atau dihapus.
type PaymentCallbackEvent struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	OrderNo       string    `gorm:"index;size:50" json:"order_no"`
	Provider      string    `gorm:"size:20" json:"provider"`
	PayloadDigest string    `gorm:"size:64" json:"payload_digest"` // sha256 hex dari raw body
	Verdict       string    `gorm:"size:30;not null" json:"verdict"`
	ProcessedAt   time.Time `json:"processed_at"`
}
