// Package signature authenticates GitHub webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Header is the request header GitHub puts the body signature in.
const Header = "X-Hub-Signature-256"

// Prefix precedes the hex digest in the header value.
const Prefix = "sha256="

// Sign returns the header value GitHub would send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is the HMAC-SHA256 signature of the raw,
// undecoded request body under secret. The header must match exactly,
// including the lower-case hex digest.
//
// An empty secret never verifies, even when header equals Sign(body, "").
// Deliveries are rejected rather than accepted under a missing
// SERVICE_SECRET; serve refuses to start without one.
func Verify(body []byte, header, secret string) bool {
	if secret == "" || !strings.HasPrefix(header, Prefix) {
		return false
	}
	expected := Sign(body, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1
}
