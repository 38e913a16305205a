package models

import "time"

// Status pendapatan pengacara.
// frozen -> matured (sweep, setelah lewat masa beku) -> settled (ikut payout).
const (
	IncomeStatusFrozen  = "frozen"
	IncomeStatusMatured = "matured"
	IncomeStatusSettled = "settled"
)

// IncomeRecord dicatat waktu order konsultasi dibayar.
// Masa beku dipakai buat nyerap risiko refund/sengketa sebelum
// dananya bisa ditarik.
type IncomeRecord struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	LawyerID    uint64    `gorm:"index;not null" json:"lawyer_id"`
	OrderNo     string    `gorm:"index;size:50;not null" json:"order_no"`
	GrossAmount float64   `gorm:"not null" json:"gross_amount"`
	PlatformFee float64   `gorm:"not null" json:"platform_fee"`
	NetAmount   float64   `gorm:"not null" json:"net_amount"`
	Status      string    `gorm:"size:20;not null;default:frozen" json:"status"`
	UnfreezeAt  time.Time `gorm:"index" json:"unfreeze_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status pengajuan penarikan.
// pending -> approved -> paid, atau pending -> rejected.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// WithdrawalRequest pengajuan tarik dana oleh pengacara.
// Saldo dompet baru benar-benar keluar pas transisi ke paid.
type WithdrawalRequest struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	LawyerID   uint64     `gorm:"index;not null" json:"lawyer_id"`
	Amount     float64    `gorm:"not null" json:"amount"`
	Status     string     `gorm:"size:20;not null;default:pending" json:"status"`
	ReviewedBy *uint64    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type WithdrawalInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type ReviewWithdrawalInput struct {
	Action string `json:"action" binding:"required,oneof=approve reject pay"`
}
