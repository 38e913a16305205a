package payment

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ProviderVerifier abstraksi per payment gateway. Skema tanda tangan
// tiap provider beda-beda, jadi semua detilnya dikurung di sini.
// Verifikasi itu fungsi murni: gak boleh nyentuh database.
type ProviderVerifier interface {
	Name() string
	VerifySignature(payload []byte) bool
	ExtractOrderNoAndAmount(payload []byte) (string, float64, error)
	AckSuccess() string // Body yang bikin provider berhenti retry
	AckFailure() string // Body yang bikin provider retry lagi
}

// GetProvider lookup verifier berdasarkan path param :provider
func GetProvider(name string) (ProviderVerifier, bool) {
	switch name {
	case "alipay":
		return &AlipayVerifier{}, true
	case "ikunpay":
		return &IkunpayVerifier{}, true
	}
	return nil, false
}

// ==========================================
// ALIPAY (gaya MAPI lama: form params + MD5)
// ==========================================

// AlipayVerifier nerima body form-urlencoded. Sign = md5 dari semua
// param (minus sign & sign_type) yang diurutkan alfabet, digabung
// k=v&k=v, lalu ditempel secret key di belakang.
type AlipayVerifier struct{}

func (a *AlipayVerifier) Name() string { return "alipay" }

func (a *AlipayVerifier) VerifySignature(payload []byte) bool {
	params, err := url.ParseQuery(string(payload))
	if err != nil {
		return false
	}
	gotSign := params.Get("sign")
	if gotSign == "" {
		return false
	}
	return hmac.Equal([]byte(gotSign), []byte(AlipaySign(params)))
}

func (a *AlipayVerifier) ExtractOrderNoAndAmount(payload []byte) (string, float64, error) {
	params, err := url.ParseQuery(string(payload))
	if err != nil {
		return "", 0, err
	}
	orderNo := params.Get("out_trade_no")
	if orderNo == "" {
		return "", 0, errors.New("out_trade_no kosong")
	}
	amount, err := strconv.ParseFloat(params.Get("total_amount"), 64)
	if err != nil {
		return "", 0, fmt.Errorf("total_amount tidak valid: %w", err)
	}
	return orderNo, amount, nil
}

func (a *AlipayVerifier) AckSuccess() string { return "success" }
func (a *AlipayVerifier) AckFailure() string { return "failure" }

// AlipaySign dihitung terpisah biar test (dan simulator gateway di dev)
// bisa bikin payload yang sah
func AlipaySign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" || k == "sign_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	base := strings.Join(pairs, "&") + alipayMD5Key()

	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

func alipayMD5Key() string {
	key := os.Getenv("ALIPAY_MD5_KEY")
	if key == "" {
		key = "alipay-sandbox-key"
	}
	return key
}

// ==========================================
// IKUNPAY (JSON body + HMAC-SHA256)
// ==========================================

// IkunpayNotification bentuk payload webhook ikunpay. Field sign
// dihitung atas string kanonik order_no|amount|nonce|timestamp.
type IkunpayNotification struct {
	OrderNo   string  `json:"order_no"`
	Amount    float64 `json:"amount"`
	Nonce     string  `json:"nonce"`
	Timestamp int64   `json:"timestamp"`
	Sign      string  `json:"sign"`
}

type IkunpayVerifier struct{}

func (i *IkunpayVerifier) Name() string { return "ikunpay" }

func (i *IkunpayVerifier) VerifySignature(payload []byte) bool {
	var n IkunpayNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return false
	}
	if n.Sign == "" {
		return false
	}
	return hmac.Equal([]byte(n.Sign), []byte(IkunpaySign(n)))
}

func (i *IkunpayVerifier) ExtractOrderNoAndAmount(payload []byte) (string, float64, error) {
	var n IkunpayNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return "", 0, err
	}
	if n.OrderNo == "" {
		return "", 0, errors.New("order_no kosong")
	}
	return n.OrderNo, n.Amount, nil
}

func (i *IkunpayVerifier) AckSuccess() string { return `{"code":0,"msg":"ok"}` }
func (i *IkunpayVerifier) AckFailure() string { return `{"code":1,"msg":"fail"}` }

func IkunpaySign(n IkunpayNotification) string {
	base := fmt.Sprintf("%s|%.2f|%s|%d", n.OrderNo, n.Amount, n.Nonce, n.Timestamp)
	mac := hmac.New(sha256.New, []byte(ikunpaySecret()))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

func ikunpaySecret() string {
	secret := os.Getenv("IKUNPAY_SECRET")
	if secret == "" {
		secret = "ikunpay-sandbox-secret"
	}
	return secret
}

// PayloadDigest sha256 hex dari raw body, disimpan di audit event
func PayloadDigest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
