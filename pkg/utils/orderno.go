package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNo bikin nomor order yang unik secara global.
// Unixnano + potongan uuid biar dua replica gak mungkin tabrakan
// walau create order di nanodetik yang sama.
func GenerateOrderNo(userID uint64) string {
	frag := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("LH%d%d%s", time.Now().UnixNano(), userID, frag)
}
