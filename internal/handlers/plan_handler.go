package handlers

import (
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetPlans daftar paket yang bisa dibeli (publik, biar pengunjung
// bisa lihat harga dulu sebelum daftar)
func GetPlans(c *gin.Context) {
	var vipPlans []models.VIPPlan
	var quotaPacks []models.QuotaPack

	config.DB.Where("is_active = ?", true).Find(&vipPlans)
	config.DB.Where("is_active = ?", true).Find(&quotaPacks)

	utils.APIResponse(c, http.StatusOK, true, "Daftar Paket", gin.H{
		"vip_plans":   vipPlans,
		"quota_packs": quotaPacks,
	})
}
