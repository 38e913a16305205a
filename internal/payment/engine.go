package payment

import (
	"errors"
	"log"
	"math"
	"time"

	"legalhub-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Toleransi pembulatan pas banding nominal callback vs order
const amountEpsilon = 0.005

var (
	ErrInvalidAmount       = errors.New("nominal order harus lebih dari 0")
	ErrOrderNotFound       = errors.New("order tidak ditemukan")
	ErrOrderNotPayable     = errors.New("order sudah tidak bisa dibayar")
	ErrInsufficientBalance = errors.New("saldo tidak cukup")
)

// Outcome hasil TryMarkPaid. "Sudah dibayar" itu BUKAN error:
// tiap call site dipaksa bedain sukses-idempoten dari penolakan beneran.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeAlreadyPaid
	OutcomeRejected
)

type PayResult struct {
	Outcome Outcome
	Reason  string // verdict penolakan, kosong kalau Applied/AlreadyPaid
}

func rejected(reason string) PayResult {
	return PayResult{Outcome: OutcomeRejected, Reason: reason}
}

// TryMarkPaid satu-satunya jalan order pindah dari pending ke paid.
//
// Pola kuncinya: lock row order -> baca ulang DI BAWAH lock -> cek ->
// baru mutasi. N call bersamaan untuk satu order_no bakal serial di
// lock, dan cuma SATU yang dapat Applied; sisanya AlreadyPaid/Rejected
// tanpa efek finansial kedua. Callback ganda dari gateway, manual pay
// yang balapan, restart proses — semuanya aman lewat jalur ini.
//
// Semua efek (status order, debit saldo, benefit, audit event) commit
// dalam SATU transaksi. Gagal separuh = rollback total, order tetap
// pending, dan retry berikutnya aman.
func TryMarkPaid(db *gorm.DB, orderNo, source string, verifiedAmount float64, digest string) (PayResult, error) {
	var result PayResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.PaymentOrder
		err := lockRow(tx).Where("order_no = ?", orderNo).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result = rejected(models.VerdictOrderNotFound)
			return recordCallbackEvent(tx, orderNo, source, digest, models.VerdictOrderNotFound)
		}
		if err != nil {
			return err
		}

		// Baca ulang di bawah lock: status bisa berubah antara request
		// masuk dan lock kepegang
		switch order.Status {
		case models.OrderStatusPending:
			// lanjut
		case models.OrderStatusPaid:
			// Inilah jaminan idempotennya: callback duplikat cuma
			// ninggalin jejak audit, gak pernah kredit dua kali
			result = PayResult{Outcome: OutcomeAlreadyPaid}
			return recordCallbackEvent(tx, orderNo, source, digest, models.VerdictAlreadyProcessed)
		default: // cancelled / failed / refunded
			result = rejected(models.VerdictOrderClosed)
			return recordCallbackEvent(tx, orderNo, source, digest, models.VerdictOrderClosed)
		}

		now := time.Now().UTC()
		if now.After(order.ExpiresAt) {
			// Callback telat untuk order kadaluarsa ditolak (kebijakan:
			// tanpa grace window). Row audit tetap dicatat, jadi ops bisa
			// follow-up manual kalau user ternyata beneran bayar.
			result = rejected(models.VerdictOrderExpired)
			return recordCallbackEvent(tx, orderNo, source, digest, models.VerdictOrderExpired)
		}

		if math.Abs(verifiedAmount-order.ActualAmount) > amountEpsilon {
			// Potensi fraud, jangan cuma didiemin di log
			log.Printf("[Engine] AMOUNT MISMATCH order %s: callback %.2f vs order %.2f",
				orderNo, verifiedAmount, order.ActualAmount)
			result = rejected(models.VerdictAmountMismatch)
			return recordCallbackEvent(tx, orderNo, source, digest, models.VerdictAmountMismatch)
		}

		// ===== Transisi pending -> paid =====
		if err := tx.Model(&models.PaymentOrder{}).
			Where("order_no = ? AND status = ?", orderNo, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusPaid,
				"paid_at":        now,
				"payment_method": source,
			}).Error; err != nil {
			return err
		}
		order.Status = models.OrderStatusPaid
		order.PaidAt = &now
		order.PaymentMethod = source

		if source == models.PayMethodBalance {
			if err := debitWallet(tx, order.UserID, order.ActualAmount); err != nil {
				// Rollback seluruh transisi, order balik pending
				result = rejected("insufficient_balance")
				return err
			}
		}

		if err := applyBenefit(tx, &order); err != nil {
			return err
		}

		if err := recordCallbackEvent(tx, orderNo, source, digest, models.VerdictOK); err != nil {
			return err
		}

		result = PayResult{Outcome: OutcomeApplied}
		return nil
	})

	if errors.Is(err, ErrInsufficientBalance) {
		return result, nil
	}
	if err != nil {
		return PayResult{}, err
	}
	return result, nil
}

// debitWallet kurangi saldo secara kondisional. Guard available_balance >= amount
// ada di SQL-nya langsung, jadi saldo gak mungkin minus walau ada
// debit yang balapan di luar lock order (misal dua order beda dibayar
// dari satu dompet barengan).
func debitWallet(tx *gorm.DB, userID uint64, amount float64) error {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND available_balance >= ?", userID, amount).
		Update("available_balance", gorm.Expr("available_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// creditWallet nambah saldo, bikin dompet baru kalau belum ada.
// Dipanggil settlement waktu income matang — selalu di dalam transaksi
// yang juga nulis row ledger pemicunya.
func CreditWallet(tx *gorm.DB, userID uint64, amount float64) error {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("available_balance", gorm.Expr("available_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.Wallet{UserID: userID, AvailableBalance: amount}).Error
	}
	return nil
}

// recordCallbackEvent append-only, satu row per percobaan.
// Jangan pernah di-update/dihapus: ini jejak forensik kalau ada sengketa.
func recordCallbackEvent(tx *gorm.DB, orderNo, provider, digest, verdict string) error {
	return tx.Create(&models.PaymentCallbackEvent{
		OrderNo:       orderNo,
		Provider:      provider,
		PayloadDigest: digest,
		Verdict:       verdict,
		ProcessedAt:   time.Now().UTC(),
	}).Error
}

// lockRow SELECT ... FOR UPDATE. sqlite (dipakai di test) gak kenal
// klausa itu, tapi writernya memang serial jadi aman di-skip.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
