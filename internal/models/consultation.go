package models

import "time"

// Status konsultasi. awaiting_payment -> confirmed terjadi SATU kali,
// di dalam transaksi commit engine pembayaran.
const (
	ConsultationAwaitingPayment = "awaiting_payment"
	ConsultationConfirmed       = "confirmed"
	ConsultationCompleted       = "completed"
	ConsultationCancelled       = "cancelled"
)

// Consultation sesi konsultasi berbayar antara user dan pengacara
type Consultation struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	LawyerID  uint64    `gorm:"index;not null" json:"lawyer_id"`
	Topic     string    `gorm:"size:200" json:"topic"`
	Price     float64   `gorm:"not null" json:"price"`
	Status    string    `gorm:"size:30;not null;default:awaiting_payment" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
