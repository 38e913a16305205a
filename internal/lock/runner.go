package lock

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy replica lain lagi pegang lease-nya. Bukan kondisi
// error buat di-escalate: siklus ini cukup di-skip.
var ErrLockBusy = errors.New("lease sedang dipegang replica lain")

// Runner eksekutor job berkala dengan mutual exclusion lintas replica.
// Arbiter-nya redis (lease redsync), bukan flag in-process — jadi
// properti "cuma satu replica yang jalan" tetap kepegang walau
// deploy-nya horizontal.
type Runner struct {
	rs *redsync.Redsync
	// Mode single instance (dev): jalan tanpa lock. JANGAN nyalakan
	// di deployment multi-replica.
	single bool
}

func NewRunner(rdb *redis.Client) *Runner {
	return &Runner{
		rs:     redsync.New(goredis.NewPool(rdb)),
		single: os.Getenv("SINGLE_INSTANCE") == "true",
	}
}

// RunWithLock coba ambil lease bernama, terus jalankan fn sambil
// heartbeat perpanjang lease-nya sampai fn selesai.
//
//   - Lease kepegang replica lain -> balik ErrLockBusy, siklus di-skip.
//   - Lock store mati -> juga skip. Default amannya memang gak jalan
//     daripada jalan tanpa penjaga di deployment multi-replica.
func (r *Runner) RunWithLock(ctx context.Context, name string, lease time.Duration, fn func(ctx context.Context) error) error {
	if r.single {
		return fn(ctx)
	}

	mutex := r.rs.NewMutex(name,
		redsync.WithExpiry(lease),
		redsync.WithTries(1), // gagal ya sudah, replica lain yang kerja
	)
	if err := mutex.LockContext(ctx); err != nil {
		return ErrLockBusy
	}

	// Heartbeat: perpanjang lease selama fn masih jalan, biar job yang
	// lebih lama dari lease gak tiba-tiba kehilangan exclusivity
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(lease / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if ok, err := mutex.ExtendContext(ctx); !ok || err != nil {
					log.Printf("[Lock] Gagal perpanjang lease %s: %v", name, err)
				}
			}
		}
	}()

	defer func() {
		close(done)
		if _, err := mutex.UnlockContext(ctx); err != nil {
			// Lease bakal expire sendiri, cukup dicatat
			log.Printf("[Lock] Gagal lepas lease %s: %v", name, err)
		}
	}()

	return fn(ctx)
}
