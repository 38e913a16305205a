package models

import "time"

// Status order. Transisi yang diizinkan cuma:
// pending -> paid/cancelled/failed, paid -> refunded.
// Jangan pernah balikin paid ke pending!
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
	OrderStatusFailed    = "failed"
)

// Tipe order menentukan benefit apa yang dikirim pas pembayaran sukses
const (
	OrderTypeVIP          = "vip"
	OrderTypeAIPack       = "ai_pack"
	OrderTypeConsultation = "lawyer_consultation"
	OrderTypeGeneric      = "generic"
)

// Metode pembayaran
const (
	PayMethodBalance = "balance"
	PayMethodAlipay  = "alipay"
	PayMethodIkunpay = "ikunpay"
)

// PaymentOrder adalah catatan tagihan. Row-nya TIDAK PERNAH dihapus,
// status cuma nambah maju biar jejak auditnya utuh.
type PaymentOrder struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	OrderNo       string     `gorm:"uniqueIndex;size:50;not null" json:"order_no"`
	UserID        uint64     `gorm:"index;not null" json:"user_id"`
	OrderType     string     `gorm:"size:30;not null" json:"order_type"`
	Amount        float64    `gorm:"not null" json:"amount"`
	ActualAmount  float64    `gorm:"not null" json:"actual_amount"`
	Status        string     `gorm:"size:20;not null;default:pending" json:"status"`
	PaymentMethod string     `gorm:"size:20" json:"payment_method"`
	RelatedType   string     `gorm:"size:30" json:"related_type"` // vip_plan, quota_pack, consultation
	RelatedID     uint64     `json:"related_id"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type CreateOrderInput struct {
	OrderType string  `json:"order_type" binding:"required,oneof=vip ai_pack lawyer_consultation generic"`
	RelatedID uint64  `json:"related_id"`
	Amount    float64 `json:"amount"` // Cuma dipakai untuk tipe generic
}

type PayOrderInput struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=balance alipay ikunpay"`
}
