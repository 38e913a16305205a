package payment

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"legalhub-backend/internal/models"
)

func signedAlipayPayload(orderNo string, amount float64) []byte {
	params := url.Values{}
	params.Set("out_trade_no", orderNo)
	params.Set("total_amount", fmt.Sprintf("%.2f", amount))
	params.Set("trade_status", "TRADE_SUCCESS")
	params.Set("sign_type", "MD5")
	params.Set("sign", AlipaySign(params))
	return []byte(params.Encode())
}

func signedIkunpayPayload(t *testing.T, orderNo string, amount float64) []byte {
	t.Helper()
	n := IkunpayNotification{
		OrderNo:   orderNo,
		Amount:    amount,
		Nonce:     "nonce-123",
		Timestamp: time.Now().Unix(),
	}
	n.Sign = IkunpaySign(n)
	body, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("gagal marshal payload: %v", err)
	}
	return body
}

func TestAlipaySignatureRoundTrip(t *testing.T) {
	v := &AlipayVerifier{}
	payload := signedAlipayPayload("LH123", 99.5)

	if !v.VerifySignature(payload) {
		t.Fatal("payload sah malah ditolak")
	}

	orderNo, amount, err := v.ExtractOrderNoAndAmount(payload)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if orderNo != "LH123" || !almostEqual(amount, 99.5) {
		t.Fatalf("extract dapat %s / %.2f", orderNo, amount)
	}
}

func TestAlipaySignatureTamperedAmount(t *testing.T) {
	v := &AlipayVerifier{}
	payload := signedAlipayPayload("LH123", 99.5)

	// Ubah nominal tanpa hitung ulang sign
	params, _ := url.ParseQuery(string(payload))
	params.Set("total_amount", "1.00")
	if v.VerifySignature([]byte(params.Encode())) {
		t.Fatal("payload yang diutak-atik malah lolos verifikasi")
	}
}

func TestAlipayMissingSign(t *testing.T) {
	v := &AlipayVerifier{}
	if v.VerifySignature([]byte("out_trade_no=LH1&total_amount=10.00")) {
		t.Fatal("payload tanpa sign harusnya ditolak")
	}
}

func TestIkunpaySignatureRoundTrip(t *testing.T) {
	v := &IkunpayVerifier{}
	payload := signedIkunpayPayload(t, "LH456", 42)

	if !v.VerifySignature(payload) {
		t.Fatal("payload sah malah ditolak")
	}
	orderNo, amount, err := v.ExtractOrderNoAndAmount(payload)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if orderNo != "LH456" || !almostEqual(amount, 42) {
		t.Fatalf("extract dapat %s / %.2f", orderNo, amount)
	}
}

func TestIkunpaySignatureTampered(t *testing.T) {
	v := &IkunpayVerifier{}
	n := IkunpayNotification{OrderNo: "LH456", Amount: 42, Nonce: "n", Timestamp: 1}
	n.Sign = IkunpaySign(n)
	n.Amount = 9999
	body, _ := json.Marshal(n)
	if v.VerifySignature(body) {
		t.Fatal("payload yang diutak-atik malah lolos verifikasi")
	}
}

func TestGetProvider(t *testing.T) {
	if _, ok := GetProvider("alipay"); !ok {
		t.Fatal("alipay harusnya terdaftar")
	}
	if _, ok := GetProvider("ikunpay"); !ok {
		t.Fatal("ikunpay harusnya terdaftar")
	}
	if _, ok := GetProvider("dana_gaib"); ok {
		t.Fatal("provider asal-asalan kok ketemu")
	}
}

// Skenario webhook dobel: callback pertama Applied, callback kedua
// (payload identik) di-ack sukses TANPA benefit kedua. Konsultasi
// confirmed sekali, income record tetap satu, audit dua row.
func TestProcessCallbackDuplicate(t *testing.T) {
	db := newTestDB(t, "callback_dup")
	customer := seedUser(t, db, 4)
	lawyer := seedUser(t, db, 3)
	cons := models.Consultation{
		UserID:   customer.ID,
		LawyerID: lawyer.ID,
		Topic:    "Sengketa tanah",
		Price:    200,
		Status:   models.ConsultationAwaitingPayment,
	}
	db.Create(&cons)

	order, err := CreateOrder(db, customer.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeConsultation,
		RelatedID: cons.ID,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	v := &AlipayVerifier{}
	payload := signedAlipayPayload(order.OrderNo, 200)

	ack, verdict := ProcessCallback(db, v, payload)
	if ack != v.AckSuccess() || verdict != models.VerdictOK {
		t.Fatalf("callback pertama: ack=%q verdict=%q", ack, verdict)
	}

	ack, verdict = ProcessCallback(db, v, payload)
	if ack != v.AckSuccess() {
		t.Fatalf("callback duplikat harus tetap di-ack sukses, dapat %q", ack)
	}
	if verdict != models.VerdictAlreadyProcessed {
		t.Fatalf("verdict duplikat = %q", verdict)
	}

	var freshCons models.Consultation
	db.First(&freshCons, cons.ID)
	if freshCons.Status != models.ConsultationConfirmed {
		t.Fatalf("status konsultasi = %s", freshCons.Status)
	}

	var incomeCount int64
	db.Model(&models.IncomeRecord{}).Where("order_no = ?", order.OrderNo).Count(&incomeCount)
	if incomeCount != 1 {
		t.Fatalf("income record = %d, harusnya tepat 1", incomeCount)
	}

	var income models.IncomeRecord
	db.Where("order_no = ?", order.OrderNo).First(&income)
	if !almostEqual(income.GrossAmount, 200) || !almostEqual(income.PlatformFee, 20) || !almostEqual(income.NetAmount, 180) {
		t.Fatalf("potongan platform salah: %+v", income)
	}
	if income.Status != models.IncomeStatusFrozen {
		t.Fatalf("income status = %s, harusnya frozen", income.Status)
	}

	var eventCount int64
	db.Model(&models.PaymentCallbackEvent{}).Where("order_no = ?", order.OrderNo).Count(&eventCount)
	if eventCount != 2 {
		t.Fatalf("audit event = %d row, harusnya 2", eventCount)
	}
}

// Tanda tangan gak sah: ack gagal, order gak tersentuh, tapi
// percobaannya tetap tercatat buat investigasi.
func TestProcessCallbackBadSignature(t *testing.T) {
	db := newTestDB(t, "callback_badsig")
	user := seedUser(t, db, 4)

	order, err := CreateOrder(db, user.ID, models.CreateOrderInput{
		OrderType: models.OrderTypeGeneric,
		Amount:    50,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	v := &AlipayVerifier{}
	params := url.Values{}
	params.Set("out_trade_no", order.OrderNo)
	params.Set("total_amount", "50.00")
	params.Set("sign", "bukan-sign-beneran")
	payload := []byte(params.Encode())

	ack, verdict := ProcessCallback(db, v, payload)
	if ack != v.AckFailure() || verdict != models.VerdictSignatureInvalid {
		t.Fatalf("ack=%q verdict=%q", ack, verdict)
	}

	var fresh models.PaymentOrder
	db.Where("order_no = ?", order.OrderNo).First(&fresh)
	if fresh.Status != models.OrderStatusPending {
		t.Fatalf("status order berubah jadi %s", fresh.Status)
	}

	var count int64
	db.Model(&models.PaymentCallbackEvent{}).
		Where("order_no = ? AND verdict = ?", order.OrderNo, models.VerdictSignatureInvalid).
		Count(&count)
	if count != 1 {
		t.Fatalf("audit signature_invalid = %d row", count)
	}
}

func TestProcessCallbackUnknownOrder(t *testing.T) {
	db := newTestDB(t, "callback_unknown")

	v := &IkunpayVerifier{}
	payload := signedIkunpayPayload(t, "LH-TIDAK-ADA", 10)

	ack, verdict := ProcessCallback(db, v, payload)
	if ack != v.AckFailure() || verdict != models.VerdictOrderNotFound {
		t.Fatalf("ack=%q verdict=%q", ack, verdict)
	}
}
