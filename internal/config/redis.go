package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RDB dipakai untuk distributed lock (cron) dan counter kuota tamu.
// JANGAN dipakai buat nyimpen saldo/status order — sumber kebenaran
// finansial cuma satu: database.
var RDB *redis.Client

// ConnectRedis buka koneksi ke Redis yang dishare semua replica
func ConnectRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		// Server tetap boleh jalan: endpoint HTTP gak bergantung redis,
		// cron bakal skip siklusnya sendiri kalau lock store mati.
		log.Println("Warning: Redis tidak terjangkau:", err)
		return
	}
	log.Println("Redis terkoneksi")
}
