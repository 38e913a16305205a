package handlers

import (
	"errors"
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/internal/payment"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CreateOrder membuat tagihan baru (status pending)
func CreateOrder(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input models.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Order Salah", err.Error())
		return
	}

	order, err := payment.CreateOrder(config.DB, userID.(uint64), input)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			utils.APIResponse(c, http.StatusBadRequest, false, "Nominal order tidak valid", nil)
			return
		}
		utils.APIResponse(c, http.StatusBadRequest, false, "Gagal membuat order", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Order Berhasil Dibuat! Silakan Bayar.", gin.H{
		"order_no":   order.OrderNo,
		"amount":     order.ActualAmount,
		"expires_at": order.ExpiresAt,
	})
}

// PayOrder mulai pembayaran order.
// balance -> status final langsung kebaca di response.
// alipay/ikunpay -> dapat redirect_url, status nyusul via webhook.
func PayOrder(c *gin.Context) {
	userID, _ := c.Get("userID")
	orderNo := c.Param("order_no")

	var input models.PayOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Metode pembayaran tidak valid", err.Error())
		return
	}

	order, redirectURL, err := payment.InitiatePayment(config.DB, userID.(uint64), orderNo, input.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrOrderNotFound):
			utils.APIResponse(c, http.StatusNotFound, false, "Order tidak ditemukan", nil)
		case errors.Is(err, payment.ErrInsufficientBalance):
			utils.APIResponse(c, http.StatusConflict, false, "Saldo tidak cukup", nil)
		case errors.Is(err, payment.ErrOrderNotPayable):
			utils.APIResponse(c, http.StatusConflict, false, "Order kadaluarsa atau sudah diproses. Buat order baru ya.", nil)
		default:
			utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal memproses pembayaran", nil)
		}
		return
	}

	resp := gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
	}
	if redirectURL != "" {
		resp["redirect_url"] = redirectURL
	}
	utils.APIResponse(c, http.StatusOK, true, "Pembayaran diproses", resp)
}

// GetMyOrders riwayat order user login
func GetMyOrders(c *gin.Context) {
	userID, _ := c.Get("userID")

	var orders []models.PaymentOrder
	config.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders)

	utils.APIResponse(c, http.StatusOK, true, "Riwayat Order", orders)
}

// GetOrderDetail detail satu order milik user login
func GetOrderDetail(c *gin.Context) {
	userID, _ := c.Get("userID")
	orderNo := c.Param("order_no")

	var order models.PaymentOrder
	err := config.DB.
		Where("order_no = ? AND user_id = ?", orderNo, userID).
		First(&order).Error
	if err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Order tidak ditemukan", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Detail Order", order)
}
