package handlers

import (
	"io"
	"net/http"

	"legalhub-backend/internal/config"
	"legalhub-backend/internal/payment"

	"github.com/gin-gonic/gin"
)

// HandleProviderNotify webhook pembayaran dari gateway.
//
// Response-nya SENGAJA bukan utils.APIResponse: tiap provider punya
// format acknowledgment sendiri, dan isi body ini yang menentukan
// apakah provider berhenti retry atau kirim ulang callbacknya.
func HandleProviderNotify(c *gin.Context) {
	providerName := c.Param("provider")
	provider, ok := payment.GetProvider(providerName)
	if !ok {
		c.String(http.StatusNotFound, "unknown provider")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, provider.AckFailure())
		return
	}

	// Verifikasi + transisi + audit semua di dalam ProcessCallback.
	// Callback duplikat dapat ack sukses (bukan error), verdict gagal
	// dapat ack gagal supaya provider retry.
	ack, _ := payment.ProcessCallback(config.DB, provider, body)
	c.String(http.StatusOK, ack)
}
