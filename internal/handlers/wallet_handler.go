package handlers

import (
	"errors"
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/internal/settlement"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetMyWallet saldo pengacara + rincian pendapatan per status
func GetMyWallet(c *gin.Context) {
	userID, _ := c.Get("userID")

	var wallet models.Wallet
	if err := config.DB.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		// Belum pernah ada pemasukan: tampilkan dompet kosong aja,
		// row-nya baru dibuat pas kredit pertama
		wallet = models.Wallet{UserID: userID.(uint64), AvailableBalance: 0}
	}

	// Rekap income per status biar pengacara tau dananya nyangkut di mana
	type rekap struct {
		Status string  `json:"status"`
		Total  float64 `json:"total"`
	}
	var rows []rekap
	config.DB.Model(&models.IncomeRecord{}).
		Where("lawyer_id = ?", userID).
		Select("status, COALESCE(SUM(net_amount), 0) as total").
		Group("status").
		Scan(&rows)

	utils.APIResponse(c, http.StatusOK, true, "Dompet Saya", gin.H{
		"wallet": wallet,
		"income": rows,
	})
}

// RequestWithdrawal pengacara mengajukan penarikan dana
func RequestWithdrawal(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input models.WithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	req, err := settlement.RequestWithdrawal(config.DB, userID.(uint64), input.Amount)
	if err != nil {
		if errors.Is(err, settlement.ErrInsufficientSettledFunds) {
			utils.APIResponse(c, http.StatusConflict, false,
				"Dana matang belum cukup. Pendapatan yang masih dibekukan belum bisa ditarik.", nil)
			return
		}
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengajukan penarikan", nil)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true,
		"Permintaan penarikan berhasil diajukan. Tunggu review Admin.", req)
}

// GetMyWithdrawals riwayat pengajuan penarikan pengacara
func GetMyWithdrawals(c *gin.Context) {
	userID, _ := c.Get("userID")

	var reqs []models.WithdrawalRequest
	config.DB.
		Where("lawyer_id = ?", userID).
		Order("created_at desc").
		Find(&reqs)

	utils.APIResponse(c, http.StatusOK, true, "Riwayat Penarikan", reqs)
}
