package payment

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB sqlite in-memory per test. cache=shared + satu koneksi,
// soalnya tiap koneksi ":memory:" dapat database sendiri-sendiri.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gagal buka sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("gagal ambil sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("gagal migrasi: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, roleID uint) *models.User {
	t.Helper()
	u := &models.User{
		RoleID:       roleID,
		FullName:     "Tester",
		Email:        fmt.Sprintf("user%d@test.local", time.Now().UnixNano()),
		PasswordHash: "x",
		Phone:        fmt.Sprintf("08%d", time.Now().UnixNano()),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("gagal seed user: %v", err)
	}
	return u
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

// Skenario: order vip 30, bayar pakai saldo 50 -> saldo jadi 20,
// order paid, masa VIP mundur sesuai durasi paket.
func TestBalancePayExtendsVIP(t *testing.T) {
	db := newTestDB(t, "balance_vip")
	user := seedUser(t, db, 4)
	db.Create(&models.Wallet{UserID: user.ID, AvailableBalance: 50})
	plan := models.VIPPlan{Name: "VIP Bulanan", Price: 30, DurationDays: 30, IsActive: true}
	db.Create(&plan)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeVIP,
		RelatedID: plan.ID,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if !almostEqual(order.ActualAmount, 30) {
		t.Fatalf("harga order = %.2f, harusnya 30", order.ActualAmount)
	}

	paid, _, err := InitiatePayment(db, user.ID, order.OrderNo, models.PayMethodBalance)
	if err != nil {
		t.Fatalf("InitiatePayment error: %v", err)
	}
	if paid.Status != models.OrderStatusPaid {
		t.Fatalf("status order = %s, harusnya paid", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Fatal("paid_at masih kosong")
	}
	if paid.PaymentMethod != models.PayMethodBalance {
		t.Fatalf("payment_method = %s", paid.PaymentMethod)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !almostEqual(wallet.AvailableBalance, 20) {
		t.Fatalf("saldo = %.2f, harusnya 20", wallet.AvailableBalance)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.VIPExpiresAt == nil {
		t.Fatal("vip_expires_at masih kosong")
	}
	days := time.Until(*fresh.VIPExpiresAt).Hours() / 24
	if days < 29 || days > 31 {
		t.Fatalf("masa VIP %f hari, harusnya sekitar 30", days)
	}

	var events []models.PaymentCallbackEvent
	db.Where("order_no = ?", order.OrderNo).Find(&events)
	if len(events) != 1 || events[0].Verdict != models.VerdictOK {
		t.Fatalf("audit event = %+v, harusnya satu row verdict ok", events)
	}
}

// Saldo 10 gak cukup buat order 30: transisi ditolak, gak ada efek
// separuh (order tetap pending, saldo utuh).
func TestBalancePayInsufficient(t *testing.T) {
	db := newTestDB(t, "balance_insufficient")
	user := seedUser(t, db, 4)
	db.Create(&models.Wallet{UserID: user.ID, AvailableBalance: 10})

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeGeneric,
		Amount:    30,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	_, _, err = InitiatePayment(db, user.ID, order.OrderNo, models.PayMethodBalance)
	if err != ErrInsufficientBalance {
		t.Fatalf("err = %v, harusnya ErrInsufficientBalance", err)
	}

	var fresh models.PaymentOrder
	db.Where("order_no = ?", order.OrderNo).First(&fresh)
	if fresh.Status != models.OrderStatusPending {
		t.Fatalf("status = %s, order harusnya tetap pending biar bisa retry", fresh.Status)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !almostEqual(wallet.AvailableBalance, 10) {
		t.Fatalf("saldo berubah jadi %.2f padahal transaksi gagal", wallet.AvailableBalance)
	}
}

// Callback dengan nominal 1 untuk order 100: amount_mismatch,
// order tetap pending, gak ada benefit yang jalan.
func TestAmountMismatchRejected(t *testing.T) {
	db := newTestDB(t, "amount_mismatch")
	user := seedUser(t, db, 4)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeGeneric,
		Amount:    100,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	res, err := TryMarkPaid(db, order.OrderNo, models.PayMethodAlipay, 1, "digest-1")
	if err != nil {
		t.Fatalf("TryMarkPaid error: %v", err)
	}
	if res.Outcome != OutcomeRejected || res.Reason != models.VerdictAmountMismatch {
		t.Fatalf("hasil = %+v, harusnya Rejected amount_mismatch", res)
	}

	var fresh models.PaymentOrder
	db.Where("order_no = ?", order.OrderNo).First(&fresh)
	if fresh.Status != models.OrderStatusPending {
		t.Fatalf("status = %s, harusnya pending", fresh.Status)
	}

	var events []models.PaymentCallbackEvent
	db.Where("order_no = ?", order.OrderNo).Find(&events)
	if len(events) != 1 || events[0].Verdict != models.VerdictAmountMismatch {
		t.Fatalf("audit event = %+v", events)
	}
}

// Properti inti: N call TryMarkPaid bersamaan untuk satu order ->
// TEPAT satu Applied, benefit cuma sekali, sisanya AlreadyPaid.
func TestConcurrentTryMarkPaidAppliesOnce(t *testing.T) {
	db := newTestDB(t, "concurrent_paid")
	user := seedUser(t, db, 4)
	pack := models.QuotaPack{Name: "Paket 50 Tanya", Price: 25, Quota: 50, IsActive: true}
	db.Create(&pack)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeAIPack,
		RelatedID: pack.ID,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	const n = 8
	results := make([]PayResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = TryMarkPaid(db, order.OrderNo, models.PayMethodIkunpay, 25, fmt.Sprintf("digest-%d", i))
		}(i)
	}
	wg.Wait()

	applied, already := 0, 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d error: %v", i, errs[i])
		}
		switch results[i].Outcome {
		case OutcomeApplied:
			applied++
		case OutcomeAlreadyPaid:
			already++
		default:
			t.Fatalf("call %d hasil tak terduga: %+v", i, results[i])
		}
	}
	if applied != 1 {
		t.Fatalf("Applied = %d, harusnya tepat 1", applied)
	}
	if already != n-1 {
		t.Fatalf("AlreadyPaid = %d, harusnya %d", already, n-1)
	}

	// Benefit kuota cuma boleh masuk sekali
	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.AIQuota != 50 {
		t.Fatalf("ai_quota = %d, benefit kayaknya dobel/ilang", fresh.AIQuota)
	}

	// Jejak audit: satu ok + (n-1) already_processed
	var okCount, dupCount int64
	db.Model(&models.PaymentCallbackEvent{}).
		Where("order_no = ? AND verdict = ?", order.OrderNo, models.VerdictOK).Count(&okCount)
	db.Model(&models.PaymentCallbackEvent{}).
		Where("order_no = ? AND verdict = ?", order.OrderNo, models.VerdictAlreadyProcessed).Count(&dupCount)
	if okCount != 1 || dupCount != int64(n-1) {
		t.Fatalf("audit: ok=%d dup=%d", okCount, dupCount)
	}
}

// Order kadaluarsa: sweep membatalkan, callback telat ditolak.
func TestExpiredOrderSweepThenLateCallback(t *testing.T) {
	db := newTestDB(t, "expired_sweep")
	user := seedUser(t, db, 4)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeGeneric,
		Amount:    40,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	// Mundurin expires_at biar dianggap basi
	db.Model(&models.PaymentOrder{}).
		Where("order_no = ?", order.OrderNo).
		Update("expires_at", time.Now().UTC().Add(-time.Hour))

	count, err := ExpireStaleOrders(db)
	if err != nil {
		t.Fatalf("ExpireStaleOrders error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expired = %d, harusnya 1", count)
	}

	var fresh models.PaymentOrder
	db.Where("order_no = ?", order.OrderNo).First(&fresh)
	if fresh.Status != models.OrderStatusCancelled {
		t.Fatalf("status = %s, harusnya cancelled", fresh.Status)
	}

	// Callback yang nyusul belakangan: order sudah ditutup
	res, err := TryMarkPaid(db, order.OrderNo, models.PayMethodAlipay, 40, "late-digest")
	if err != nil {
		t.Fatalf("TryMarkPaid error: %v", err)
	}
	if res.Outcome != OutcomeRejected || res.Reason != models.VerdictOrderClosed {
		t.Fatalf("hasil = %+v, harusnya Rejected order_closed", res)
	}
}

// Order expired yang BELUM disapu cron juga harus nolak callback.
func TestExpiredOrderDirectCallbackRejected(t *testing.T) {
	db := newTestDB(t, "expired_direct")
	user := seedUser(t, db, 4)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeGeneric,
		Amount:    40,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	db.Model(&models.PaymentOrder{}).
		Where("order_no = ?", order.OrderNo).
		Update("expires_at", time.Now().UTC().Add(-time.Minute))

	res, err := TryMarkPaid(db, order.OrderNo, models.PayMethodAlipay, 40, "digest")
	if err != nil {
		t.Fatalf("TryMarkPaid error: %v", err)
	}
	if res.Outcome != OutcomeRejected || res.Reason != models.VerdictOrderExpired {
		t.Fatalf("hasil = %+v, harusnya Rejected order_expired", res)
	}
}

// Order yang gak ada ya ditolak, tapi percobaannya tetap ninggalin
// jejak audit.
func TestUnknownOrderRejected(t *testing.T) {
	db := newTestDB(t, "unknown_order")

	res, err := TryMarkPaid(db, "LH-GAK-ADA", models.PayMethodAlipay, 10, "digest")
	if err != nil {
		t.Fatalf("TryMarkPaid error: %v", err)
	}
	if res.Outcome != OutcomeRejected || res.Reason != models.VerdictOrderNotFound {
		t.Fatalf("hasil = %+v", res)
	}

	var count int64
	db.Model(&models.PaymentCallbackEvent{}).
		Where("order_no = ? AND verdict = ?", "LH-GAK-ADA", models.VerdictOrderNotFound).
		Count(&count)
	if count != 1 {
		t.Fatalf("audit event = %d row", count)
	}
}
