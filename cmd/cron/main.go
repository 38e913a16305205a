package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/lock"
	"legalhub-backend/internal/payment"
	"legalhub-backend/internal/settlement"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Binary terpisah untuk job berkala. Boleh jalan di banyak replica:
// tiap job digate lease redsync, jadi per siklus cuma satu replica
// yang beneran kerja, sisanya skip.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config.ConnectDB()
	config.ConnectRedis()

	runner := lock.NewRunner(config.RDB)

	// Scheduler dengan presisi detik
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. Expire order pending yang lewat TTL - tiap menit
	_, err := cronScheduler.AddFunc("0 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()

		err := runner.RunWithLock(ctx, "cron:expire_orders", 55*time.Second, func(ctx context.Context) error {
			count, err := payment.ExpireStaleOrders(config.DB)
			if err != nil {
				return err
			}
			if count > 0 {
				log.Printf("[CRON] %d order pending dibatalkan karena kadaluarsa", count)
			}
			return nil
		})
		if errors.Is(err, lock.ErrLockBusy) {
			return // replica lain yang kerja
		}
		if err != nil {
			log.Printf("[CRON] Error expire orders: %v", err)
		}
	})
	if err != nil {
		log.Printf("Failed to add expire-orders job: %v", err)
	}

	// 2. Sweep pematangan income beku - tiap 5 menit
	_, err = cronScheduler.AddFunc("0 */5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()

		err := runner.RunWithLock(ctx, "cron:mature_income", 4*time.Minute, func(ctx context.Context) error {
			count, err := settlement.MatureFrozenIncome(config.DB)
			if err != nil {
				return err
			}
			if count > 0 {
				log.Printf("[CRON] %d income record matang, saldo dikreditkan", count)
			}
			return nil
		})
		if errors.Is(err, lock.ErrLockBusy) {
			return
		}
		if err != nil {
			log.Printf("[CRON] Error maturity sweep: %v", err)
		}
	})
	if err != nil {
		log.Printf("Failed to add maturity-sweep job: %v", err)
	}

	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Order expiry sweep:   every minute")
	log.Println("  - Income maturity sweep: every 5 minutes")
	log.Println("========================================")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
