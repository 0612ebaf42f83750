package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReferenceFor derives the human-facing payment reference from the payment id.
func ReferenceFor(id uuid.UUID) string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:12])
}

// GenOrderID builds a gateway order id: prefix-YYYYMMDD-HHMMSS-XXXXXXXX.
func GenOrderID(prefix string, now time.Time) string {
	u := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102-150405"), u)
}
