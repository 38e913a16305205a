package routes

import (
	"legalhub-backend/internal/config"
	"legalhub-backend/internal/handlers"
	"legalhub-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {

	r.Use(middleware.RateLimitMiddleware())
	// Grouping API dengan Versi (v1)
	api := r.Group("/api/v1")
	{
		// Grouping Auth
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
		}

		// Publik: daftar harga paket (kena jatah tamu harian),
		// plus webhook gateway pembayaran
		api.GET("/plans", middleware.GuestQuotaMiddleware(config.RDB), handlers.GetPlans)
		api.POST("/payment/:provider/notify", handlers.HandleProviderNotify)

		// PROTECTED ROUTES (Harus Login / Punya Token)
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", handlers.GetUserProfile)

			// MODULE ORDER
			protected.POST("/orders", handlers.CreateOrder)
			protected.GET("/orders", handlers.GetMyOrders)
			protected.GET("/orders/:order_no", handlers.GetOrderDetail)
			protected.POST("/orders/:order_no/pay", handlers.PayOrder)

			// Group Khusus Pengacara (dompet & penarikan)
			lawyer := protected.Group("/lawyer")
			lawyer.Use(middleware.LawyerOnly())
			{
				lawyer.GET("/wallet", handlers.GetMyWallet)
				lawyer.POST("/withdrawals", handlers.RequestWithdrawal)
				lawyer.GET("/withdrawals", handlers.GetMyWithdrawals)
			}

			// Group Admin/Finance
			admin := protected.Group("/admin")
			admin.Use(middleware.FinanceOnly())
			{
				admin.GET("/dashboard", handlers.GetDashboardStats)
				admin.GET("/orders", handlers.GetAllOrders)
				admin.GET("/orders/:order_no/callbacks", handlers.GetCallbackEvents)
				admin.GET("/withdrawals", handlers.GetPendingWithdrawals)
				admin.POST("/withdrawals/:id/review", handlers.ReviewWithdrawal)
			}
		}
	}
}
