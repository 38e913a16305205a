package handlers

import (
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// REGISTER
func Register(c *gin.Context) {
	var input models.RegisterInput

	// 1. Validasi Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", err.Error())
		return
	}

	// 2. Hash Password
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal memproses password", nil)
		return
	}

	// 3. Siapkan Data User
	user := models.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		RoleID:       input.RoleID,
		Phone:        input.Phone,
		IsVerified:   false,
	}

	// 4. Simpan ke Database
	if err := config.DB.Create(&user).Error; err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Email atau Nomor HP sudah terdaftar!", nil)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Registrasi Berhasil! Silakan Login.", user)
}

// LOGIN
func Login(c *gin.Context) {
	var input models.LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", nil)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau Password salah", nil)
		return
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau Password salah", nil)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.RoleID)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal generate token", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login Berhasil", gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName,
			"role_id":   user.RoleID,
			"email":     user.Email,
		},
	})
}
