package usecase

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// EncodeImage converts a raw image payload into the base64 form Shopify
// expects as an attachment. Payloads arrive either hex-encoded (optionally
// 0x-prefixed) or already base64; hex is tried first because that is how the
// feed importer stores binaries. Pure function, no I/O.
func EncodeImage(payload string) (string, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty payload", domain.ErrImageDecode)
	}

	candidate := strings.TrimPrefix(trimmed, "0x")
	if raw, err := hex.DecodeString(candidate); err == nil {
		return base64.StdEncoding.EncodeToString(raw), nil
	}

	// Decode and re-encode so equivalent inputs converge on one canonical form.
	if raw, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return base64.StdEncoding.EncodeToString(raw), nil
	}

	return "", fmt.Errorf("%w: %q", domain.ErrImageDecode, truncatePayload(trimmed))
}

func truncatePayload(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
