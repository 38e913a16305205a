package middleware

import (
	"net/http"
	"strings"

	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ambil Header Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak ditemukan", nil)
			c.Abort()
			return
		}

		// 2. Format harus "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Format token salah", nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. Validasi Token
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak valid", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Gagal memproses token", nil)
			c.Abort()
			return
		}

		// JWT parse angka sebagai float64 -> convert dulu baru simpan ke context
		var userID uint64
		if val, ok := claims["user_id"].(float64); ok {
			userID = uint64(val)
		}

		var roleID uint
		if val, ok := claims["role_id"].(float64); ok {
			roleID = uint(val)
		}

		c.Set("userID", userID)
		c.Set("roleID", roleID)

		c.Next()
	}
}

// AdminOnly: Hanya untuk Role ID 1
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, exists := c.Get("roleID")
		if !exists {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
			c.Abort()
			return
		}

		role := roleID.(uint)
		if role != 1 {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak: Khusus Admin", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// FinanceOnly: Role ID 2 (Admin juga boleh intip menu finance)
func FinanceOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, exists := c.Get("roleID")
		if !exists {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
			c.Abort()
			return
		}

		role := roleID.(uint)
		if role != 1 && role != 2 {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak: Khusus Finance", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LawyerOnly: Role ID 3, untuk endpoint dompet & penarikan pengacara
func LawyerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, exists := c.Get("roleID")
		if !exists {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
			c.Abort()
			return
		}

		role := roleID.(uint)
		if role != 3 {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak: Khusus Pengacara", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
