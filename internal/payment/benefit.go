package payment

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"legalhub-backend/internal/models"

	"gorm.io/gorm"
)

// applyBenefit kirim benefit sesuai tipe order. CUMA boleh dipanggil
// dari dalam transaksi commit TryMarkPaid — di luar itu jaminan
// "benefit cuma sekali per order" nya bolong.
func applyBenefit(tx *gorm.DB, order *models.PaymentOrder) error {
	switch order.OrderType {
	case models.OrderTypeVIP:
		return applyVIP(tx, order)
	case models.OrderTypeAIPack:
		return applyAIPack(tx, order)
	case models.OrderTypeConsultation:
		return applyConsultation(tx, order)
	case models.OrderTypeGeneric:
		return nil // generic: bayar doang, gak ada benefit otomatis
	}
	return fmt.Errorf("tipe order tidak dikenal: %s", order.OrderType)
}

// applyVIP perpanjang masa VIP. Kalau masih aktif, nyambung dari masa
// berlaku sekarang; kalau sudah lewat, mulai dari sekarang.
func applyVIP(tx *gorm.DB, order *models.PaymentOrder) error {
	var plan models.VIPPlan
	if err := tx.First(&plan, order.RelatedID).Error; err != nil {
		return fmt.Errorf("paket vip %d tidak ditemukan: %w", order.RelatedID, err)
	}

	var user models.User
	if err := tx.First(&user, order.UserID).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	base := now
	if user.VIPExpiresAt != nil && user.VIPExpiresAt.After(now) {
		base = *user.VIPExpiresAt
	}
	newExpiry := base.AddDate(0, 0, plan.DurationDays)

	return tx.Model(&user).Update("vip_expires_at", newExpiry).Error
}

// applyAIPack kredit kuota tanya AI
func applyAIPack(tx *gorm.DB, order *models.PaymentOrder) error {
	var pack models.QuotaPack
	if err := tx.First(&pack, order.RelatedID).Error; err != nil {
		return fmt.Errorf("paket kuota %d tidak ditemukan: %w", order.RelatedID, err)
	}

	return tx.Model(&models.User{}).
		Where("id = ?", order.UserID).
		Update("ai_quota", gorm.Expr("ai_quota + ?", pack.Quota)).Error
}

// applyConsultation konfirmasi sesi konsultasi + catat pendapatan
// pengacara dalam keadaan beku (frozen)
func applyConsultation(tx *gorm.DB, order *models.PaymentOrder) error {
	var cons models.Consultation
	if err := tx.First(&cons, order.RelatedID).Error; err != nil {
		return fmt.Errorf("konsultasi %d tidak ditemukan: %w", order.RelatedID, err)
	}
	if cons.Status != models.ConsultationAwaitingPayment {
		return errors.New("konsultasi sudah tidak menunggu pembayaran")
	}

	if err := tx.Model(&cons).Update("status", models.ConsultationConfirmed).Error; err != nil {
		return err
	}

	gross := order.ActualAmount
	fee := round2(gross * platformFeePercent() / 100.0)
	income := models.IncomeRecord{
		LawyerID:    cons.LawyerID,
		OrderNo:     order.OrderNo,
		GrossAmount: gross,
		PlatformFee: fee,
		NetAmount:   round2(gross - fee),
		Status:      models.IncomeStatusFrozen,
		UnfreezeAt:  time.Now().UTC().AddDate(0, 0, freezeDays()),
	}
	return tx.Create(&income).Error
}

func platformFeePercent() float64 {
	s := os.Getenv("PLATFORM_FEE_PERCENT")
	if s == "" {
		return 10.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 10.0
	}
	return v
}

func freezeDays() int {
	s := os.Getenv("INCOME_FREEZE_DAYS")
	if s == "" {
		return 7
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 7
	}
	return v
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
