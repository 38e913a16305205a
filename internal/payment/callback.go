package payment

import (
	"log"

	"legalhub-backend/internal/models"

	"gorm.io/gorm"
)

// ProcessCallback jalur lengkap webhook: verifikasi tanda tangan di
// boundary, lalu serahkan ke engine. Return value pertama adalah body
// acknowledgment PERSIS seperti yang provider harapkan:
//   - sukses & duplikat -> ack sukses (duplikat bukan error, provider
//     harus berhenti retry)
//   - verdict lain -> ack gagal, biar provider retry
func ProcessCallback(db *gorm.DB, p ProviderVerifier, payload []byte) (ack string, verdict string) {
	digest := PayloadDigest(payload)

	if !p.VerifySignature(payload) {
		// Ambil order_no best-effort biar jejak auditnya tetap kepake
		// buat investigasi, walau payloadnya gak sah
		orderNo, _, _ := p.ExtractOrderNoAndAmount(payload)
		log.Printf("[Webhook] Signature invalid dari %s (order_no=%q)", p.Name(), orderNo)
		if err := recordCallbackEvent(db, orderNo, p.Name(), digest, models.VerdictSignatureInvalid); err != nil {
			log.Printf("[Webhook] Gagal catat audit event: %v", err)
		}
		return p.AckFailure(), models.VerdictSignatureInvalid
	}

	orderNo, amount, err := p.ExtractOrderNoAndAmount(payload)
	if err != nil {
		log.Printf("[Webhook] Payload %s tidak bisa diparse: %v", p.Name(), err)
		if err := recordCallbackEvent(db, "", p.Name(), digest, models.VerdictSignatureInvalid); err != nil {
			log.Printf("[Webhook] Gagal catat audit event: %v", err)
		}
		return p.AckFailure(), models.VerdictSignatureInvalid
	}

	res, err := TryMarkPaid(db, orderNo, p.Name(), amount, digest)
	if err != nil {
		// Error infra (DB mati dsb) -> jangan ack, provider bakal retry
		// dan retry-nya aman karena idempoten
		log.Printf("[Webhook] TryMarkPaid error untuk %s: %v", orderNo, err)
		return p.AckFailure(), ""
	}

	switch res.Outcome {
	case OutcomeApplied:
		log.Printf("[Webhook] Order %s paid via %s", orderNo, p.Name())
		return p.AckSuccess(), models.VerdictOK
	case OutcomeAlreadyPaid:
		log.Printf("[Webhook] Order %s sudah paid, callback duplikat di-ack", orderNo)
		return p.AckSuccess(), models.VerdictAlreadyProcessed
	default:
		log.Printf("[Webhook] Callback %s untuk order %s ditolak: %s", p.Name(), orderNo, res.Reason)
		return p.AckFailure(), res.Reason
	}
}
