package main

import (
	"log"
	"os"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/routes"
	"legalhub-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Connect DB & Redis
	config.ConnectDB()
	config.ConnectRedis()

	// 3. Init Router
	r := gin.Default()

	// 4. Setup Routes
	routes.SetupRoutes(r)

	// 5. Test Ping
	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, 200, true, "Server OK!", nil)
	})

	// 6. Run Server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server berjalan di port " + port)
	r.Run(":" + port)
}
