package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderCode returns a human-readable order reference,
// e.g. ORD-20260830-1A2B3C4D
func GenerateOrderCode() string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// GenerateSKUCode builds a SKU code from a product slug and variant values.
// A short uuid suffix keeps regenerated codes unique even when the same
// color/size cell is deleted and recreated.
func GenerateSKUCode(productSlug, color, size string) string {
	suffix := strings.ToUpper(uuid.New().String()[:6])
	parts := []string{normalizeCodePart(productSlug, 12)}
	if color != "" {
		parts = append(parts, normalizeCodePart(color, 8))
	}
	if size != "" {
		parts = append(parts, normalizeCodePart(size, 8))
	}
	parts = append(parts, suffix)
	return strings.Join(parts, "-")
}

func normalizeCodePart(s string, maxLen int) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "X"
	}
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
