// Package signature verifies HMAC-SHA256 webhook signatures. Cal.com, Notion
// and GitHub all sign the raw request body with a shared secret and send the
// hex digest in a header, optionally prefixed with "sha256=".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"webhook-notifier/internal/common/errors"
)

// Compute returns the hex-encoded HMAC-SHA256 digest of body under secret.
func Compute(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a provided signature header value against the expected digest
// of body. The comparison is constant time. An empty provided value or an
// empty secret fails closed.
func Verify(body []byte, secret, provided string) error {
	if secret == "" {
		return errors.AuthError("no signing secret configured")
	}
	if provided == "" {
		return errors.AuthError("missing signature header")
	}

	provided = strings.TrimPrefix(provided, "sha256=")

	expected := Compute(body, secret)
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return errors.AuthError("signature mismatch")
	}

	return nil
}

// Equal compares two shared-secret tokens in constant time.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
