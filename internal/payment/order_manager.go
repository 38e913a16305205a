package payment

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"legalhub-backend/internal/models"
	"legalhub-backend/pkg/utils"

	"gorm.io/gorm"
)

// CreateOrder bikin tagihan baru status pending. Harga diambil dari
// tabel paket/konsultasi, BUKAN dari input user — kecuali tipe generic
// yang memang bayar nominal bebas (mis. top-up saldo).
func CreateOrder(db *gorm.DB, userID uint64, input models.CreateOrderInput) (*models.PaymentOrder, error) {
	var amount float64
	var relatedType string

	switch input.OrderType {
	case models.OrderTypeVIP:
		var plan models.VIPPlan
		if err := db.Where("id = ? AND is_active = ?", input.RelatedID, true).First(&plan).Error; err != nil {
			return nil, fmt.Errorf("paket vip tidak ditemukan: %w", err)
		}
		amount = plan.Price
		relatedType = "vip_plan"
	case models.OrderTypeAIPack:
		var pack models.QuotaPack
		if err := db.Where("id = ? AND is_active = ?", input.RelatedID, true).First(&pack).Error; err != nil {
			return nil, fmt.Errorf("paket kuota tidak ditemukan: %w", err)
		}
		amount = pack.Price
		relatedType = "quota_pack"
	case models.OrderTypeConsultation:
		var cons models.Consultation
		if err := db.First(&cons, input.RelatedID).Error; err != nil {
			return nil, fmt.Errorf("konsultasi tidak ditemukan: %w", err)
		}
		if cons.UserID != userID {
			return nil, errors.New("konsultasi ini bukan milik kamu")
		}
		if cons.Status != models.ConsultationAwaitingPayment {
			return nil, errors.New("konsultasi sudah tidak menunggu pembayaran")
		}
		amount = cons.Price
		relatedType = "consultation"
	case models.OrderTypeGeneric:
		amount = input.Amount
	default:
		return nil, fmt.Errorf("tipe order tidak dikenal: %s", input.OrderType)
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	order := models.PaymentOrder{
		OrderNo:      utils.GenerateOrderNo(userID),
		UserID:       userID,
		OrderType:    input.OrderType,
		Amount:       amount,
		ActualAmount: amount,
		Status:       models.OrderStatusPending,
		RelatedType:  relatedType,
		RelatedID:    input.RelatedID,
		ExpiresAt:    now.Add(orderTTL()),
	}
	if err := db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// InitiatePayment mulai pembayaran untuk order pending.
//   - balance: langsung sinkron lewat TryMarkPaid, hasil final saat itu juga
//   - alipay/ikunpay: cuma bangun redirect URL ke gateway. Status order
//     TIDAK berubah di sini — perubahan datang dari callback (atau
//     konfirmasi manual belakangan)
func InitiatePayment(db *gorm.DB, userID uint64, orderNo, method string) (*models.PaymentOrder, string, error) {
	var order models.PaymentOrder
	if err := db.Where("order_no = ? AND user_id = ?", orderNo, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrOrderNotFound
		}
		return nil, "", err
	}
	if order.Status != models.OrderStatusPending {
		return nil, "", ErrOrderNotPayable
	}
	if time.Now().UTC().After(order.ExpiresAt) {
		return nil, "", ErrOrderNotPayable
	}

	if method == models.PayMethodBalance {
		res, err := TryMarkPaid(db, orderNo, models.PayMethodBalance, order.ActualAmount, "")
		if err != nil {
			return nil, "", err
		}
		switch res.Outcome {
		case OutcomeApplied, OutcomeAlreadyPaid:
			db.Where("order_no = ?", orderNo).First(&order)
			return &order, "", nil
		default:
			if res.Reason == "insufficient_balance" {
				return nil, "", ErrInsufficientBalance
			}
			return nil, "", ErrOrderNotPayable
		}
	}

	return &order, buildRedirectURL(&order, method), nil
}

// buildRedirectURL susun link pembayaran di gateway pihak ketiga.
// return_url cuma buat balikin user ke app — penentuan paid tetap
// lewat webhook notify, jangan percaya redirect browser.
func buildRedirectURL(order *models.PaymentOrder, method string) string {
	base := os.Getenv("PAY_GATEWAY_BASE_URL")
	if base == "" {
		base = "https://pay.sandbox.legalhub.id"
	}
	q := url.Values{}
	q.Set("out_trade_no", order.OrderNo)
	q.Set("total_amount", fmt.Sprintf("%.2f", order.ActualAmount))
	q.Set("return_url", os.Getenv("PAY_RETURN_URL"))
	return fmt.Sprintf("%s/%s/gateway?%s", base, method, q.Encode())
}

// ExpireStaleOrders batalin order pending yang lewat expires_at.
// Per order pakai disiplin lock yang sama dengan TryMarkPaid, biar gak
// balapan sama callback yang datang telat: siapa yang pegang lock
// duluan, dia yang menang.
func ExpireStaleOrders(db *gorm.DB) (int, error) {
	var orderNos []string
	now := time.Now().UTC()
	if err := db.Model(&models.PaymentOrder{}).
		Where("status = ? AND expires_at < ?", models.OrderStatusPending, now).
		Pluck("order_no", &orderNos).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, no := range orderNos {
		err := db.Transaction(func(tx *gorm.DB) error {
			var order models.PaymentOrder
			if err := lockRow(tx).Where("order_no = ?", no).First(&order).Error; err != nil {
				return err
			}
			// Cek ulang di bawah lock: bisa aja barusan keburu dibayar
			if order.Status != models.OrderStatusPending || now.Before(order.ExpiresAt) {
				return nil
			}
			res := tx.Model(&models.PaymentOrder{}).
				Where("order_no = ? AND status = ?", no, models.OrderStatusPending).
				Update("status", models.OrderStatusCancelled)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				expired++
			}
			return nil
		})
		if err != nil {
			log.Printf("[Expiry] Gagal expire order %s: %v", no, err)
		}
	}
	return expired, nil
}

func orderTTL() time.Duration {
	s := os.Getenv("ORDER_TTL_MINUTES")
	if s == "" {
		return 2 * time.Hour
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(v) * time.Minute
}
