package middleware

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// GuestQuotaMiddleware jatah harian untuk pengunjung tanpa akun.
// Counternya di redis (INCR + EXPIRE), BUKAN variabel in-process:
// dengan beberapa replica di belakang load balancer, counter lokal
// bikin jatahnya jadi N kali lipat.
func GuestQuotaMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// User login gak kena jatah tamu
		if c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("guest_quota:%s:%s", c.ClientIP(), time.Now().UTC().Format("2006-01-02"))

		n, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis mati: lolosin aja. Jatah tamu itu pembatas
			// kenyamanan, bukan invariant finansial.
			log.Printf("[GuestQuota] Redis error, request diloloskan: %v", err)
			c.Next()
			return
		}
		if n == 1 {
			rdb.Expire(c.Request.Context(), key, 24*time.Hour)
		}

		if n > int64(guestQuotaPerDay()) {
			utils.APIResponse(c, http.StatusTooManyRequests, false,
				"Jatah harian tamu habis. Daftar dulu ya biar bebas akses.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func guestQuotaPerDay() int {
	s := os.Getenv("GUEST_QUOTA_PER_DAY")
	if s == "" {
		return 10
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 10
	}
	return v
}
