package handlers

import (
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetUserProfile profil user login, termasuk status VIP & sisa kuota AI
func GetUserProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "User tidak ditemukan", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Profil Saya", user)
}
