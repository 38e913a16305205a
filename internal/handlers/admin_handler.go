package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/internal/payment"
	"legalhub-backend/internal/settlement"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats ringkasan keuangan buat admin
func GetDashboardStats(c *gin.Context) {
	type Result struct {
		Total float64
	}
	var paid Result
	config.DB.Table("payment_orders").
		Where("status = ?", models.OrderStatusPaid).
		Select("COALESCE(SUM(actual_amount), 0) as total").
		Scan(&paid)

	var frozen Result
	config.DB.Table("income_records").
		Where("status = ?", models.IncomeStatusFrozen).
		Select("COALESCE(SUM(net_amount), 0) as total").
		Scan(&frozen)

	var pendingWithdrawals int64
	config.DB.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalStatusPending).
		Count(&pendingWithdrawals)

	var pendingOrders int64
	config.DB.Model(&models.PaymentOrder{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&pendingOrders)

	utils.APIResponse(c, http.StatusOK, true, "Data Dashboard Admin", gin.H{
		"gross_revenue":       paid.Total,
		"frozen_income":       frozen.Total,
		"pending_withdrawals": pendingWithdrawals,
		"pending_orders":      pendingOrders,
	})
}

// GetAllOrders semua order di sistem (filter ?status=paid opsional)
func GetAllOrders(c *gin.Context) {
	status := c.Query("status")

	var orders []models.PaymentOrder
	query := config.DB.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Find(&orders)

	utils.APIResponse(c, http.StatusOK, true, "Data Semua Order", orders)
}

// GetCallbackEvents jejak audit callback satu order, buat investigasi
// sengketa pembayaran
func GetCallbackEvents(c *gin.Context) {
	orderNo := c.Param("order_no")

	var events []models.PaymentCallbackEvent
	config.DB.
		Where("order_no = ?", orderNo).
		Order("processed_at asc").
		Find(&events)

	utils.APIResponse(c, http.StatusOK, true, "Jejak Callback Order", events)
}

// GetPendingWithdrawals daftar pengajuan tarik dana yang nunggu review
func GetPendingWithdrawals(c *gin.Context) {
	var reqs []models.WithdrawalRequest
	config.DB.
		Where("status IN ?", []string{models.WithdrawalStatusPending, models.WithdrawalStatusApproved}).
		Order("created_at asc").
		Find(&reqs)

	utils.APIResponse(c, http.StatusOK, true, "Daftar Penarikan Menunggu", reqs)
}

// ReviewWithdrawal approve/reject/pay pengajuan penarikan
func ReviewWithdrawal(c *gin.Context) {
	reviewerID, _ := c.Get("userID")

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "ID pengajuan tidak valid", nil)
		return
	}

	var input models.ReviewWithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	req, err := settlement.ReviewWithdrawal(config.DB, requestID, input.Action, reviewerID.(uint64))
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrRequestNotFound):
			utils.APIResponse(c, http.StatusNotFound, false, "Pengajuan tidak ditemukan", nil)
		case errors.Is(err, settlement.ErrInvalidReviewState):
			utils.APIResponse(c, http.StatusConflict, false, "Pengajuan sudah diproses sebelumnya", nil)
		case errors.Is(err, payment.ErrInsufficientBalance):
			utils.APIResponse(c, http.StatusConflict, false, "Saldo dompet tidak cukup untuk payout", nil)
		default:
			utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal memproses review", nil)
		}
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Status Penarikan Diupdate", req)
}
