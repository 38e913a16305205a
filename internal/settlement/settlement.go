package settlement

import (
	"errors"
	"log"
	"time"

	"legalhub-backend/internal/models"
	"legalhub-backend/internal/payment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientSettledFunds = errors.New("dana matang belum cukup untuk ditarik")
	ErrRequestNotFound          = errors.New("pengajuan penarikan tidak ditemukan")
	ErrInvalidReviewState       = errors.New("status pengajuan tidak bisa diproses dari keadaan sekarang")
)

// MatureFrozenIncome sweep berkala: income frozen yang masa bekunya
// habis jadi matured + saldonya masuk dompet pengacara. Jalannya
// digate Periodic Lock Runner, jadi cuma satu replica per siklus.
//
// Flip status + kredit dompet satu transaksi per row: kalau ada yang
// gagal di tengah, sisanya keangkut sweep berikutnya.
func MatureFrozenIncome(db *gorm.DB) (int, error) {
	var ids []uint64
	now := time.Now().UTC()
	if err := db.Model(&models.IncomeRecord{}).
		Where("status = ? AND unfreeze_at <= ?", models.IncomeStatusFrozen, now).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	matured := 0
	for _, id := range ids {
		applied := false
		err := db.Transaction(func(tx *gorm.DB) error {
			var rec models.IncomeRecord
			if err := lockRow(tx).First(&rec, id).Error; err != nil {
				return err
			}
			// Guard status di WHERE: replica lain bisa aja keburu
			// mematangkan row yang sama
			res := tx.Model(&models.IncomeRecord{}).
				Where("id = ? AND status = ?", id, models.IncomeStatusFrozen).
				Update("status", models.IncomeStatusMatured)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			applied = true
			return payment.CreditWallet(tx, rec.LawyerID, rec.NetAmount)
		})
		if err != nil {
			log.Printf("[Settlement] Gagal mematangkan income %d: %v", id, err)
			continue
		}
		if applied {
			matured++
		}
	}
	return matured, nil
}

// RequestWithdrawal pengacara ngajuin tarik dana. Batasnya: saldo
// dompet dikurangi jumlah yang sudah direservasi pengajuan lain yang
// masih pending/approved — dana beku otomatis gak kehitung karena
// belum pernah masuk dompet.
func RequestWithdrawal(db *gorm.DB, lawyerID uint64, amount float64) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := lockRow(tx).Where("user_id = ?", lawyerID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientSettledFunds
			}
			return err
		}

		var reserved float64
		if err := tx.Model(&models.WithdrawalRequest{}).
			Where("lawyer_id = ? AND status IN ?", lawyerID,
				[]string{models.WithdrawalStatusPending, models.WithdrawalStatusApproved}).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&reserved).Error; err != nil {
			return err
		}

		if amount > wallet.AvailableBalance-reserved+1e-9 {
			return ErrInsufficientSettledFunds
		}

		req = &models.WithdrawalRequest{
			LawyerID: lawyerID,
			Amount:   amount,
			Status:   models.WithdrawalStatusPending,
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ReviewWithdrawal state machine review oleh admin/finance:
// pending -> approved | rejected, approved -> paid.
// Transisi paid adalah SATU-SATUNYA titik uang beneran keluar ledger:
// debit dompet + income matured ditandai settled, satu transaksi.
func ReviewWithdrawal(db *gorm.DB, requestID uint64, action string, reviewerID uint64) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		now := time.Now().UTC()
		switch action {
		case "approve":
			if req.Status != models.WithdrawalStatusPending {
				return ErrInvalidReviewState
			}
			req.Status = models.WithdrawalStatusApproved
			req.ReviewedBy = &reviewerID
			req.ReviewedAt = &now
			return tx.Save(&req).Error

		case "reject":
			if req.Status != models.WithdrawalStatusPending {
				return ErrInvalidReviewState
			}
			req.Status = models.WithdrawalStatusRejected
			req.ReviewedBy = &reviewerID
			req.ReviewedAt = &now
			return tx.Save(&req).Error

		case "pay":
			if req.Status != models.WithdrawalStatusApproved {
				return ErrInvalidReviewState
			}
			// Guard saldo di SQL — reservasi harusnya sudah menjamin
			// cukup, tapi invariant saldo >= 0 tetap dipagari di sini
			res := tx.Model(&models.Wallet{}).
				Where("user_id = ? AND available_balance >= ?", req.LawyerID, req.Amount).
				Update("available_balance", gorm.Expr("available_balance - ?", req.Amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return payment.ErrInsufficientBalance
			}
			if err := settleMaturedIncome(tx, req.LawyerID, req.Amount); err != nil {
				return err
			}
			req.Status = models.WithdrawalStatusPaid
			return tx.Save(&req).Error
		}
		return ErrInvalidReviewState
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// settleMaturedIncome tandain income matured jadi settled, FIFO,
// sampai nominal payout tertutup. Row yang cuma ketutup sebagian
// dibiarkan matured — pembukuannya konservatif.
func settleMaturedIncome(tx *gorm.DB, lawyerID uint64, amount float64) error {
	var records []models.IncomeRecord
	if err := tx.Where("lawyer_id = ? AND status = ?", lawyerID, models.IncomeStatusMatured).
		Order("unfreeze_at asc").
		Find(&records).Error; err != nil {
		return err
	}

	remaining := amount
	for _, rec := range records {
		if remaining < rec.NetAmount-1e-9 {
			break
		}
		if err := tx.Model(&models.IncomeRecord{}).
			Where("id = ? AND status = ?", rec.ID, models.IncomeStatusMatured).
			Update("status", models.IncomeStatusSettled).Error; err != nil {
			return err
		}
		remaining -= rec.NetAmount
	}
	return nil
}

func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
