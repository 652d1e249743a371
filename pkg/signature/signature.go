// Package signature authenticates webhook calls signed with a shared secret.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/GlebRadaev/creator-ledger/pkg/utils"
)

const (
	Header = "X-Signature"
	prefix = "sha256="

	maxBodySize = 1 << 20
)

// Sign returns the header value for body: "sha256=" followed by the hex HMAC-SHA256.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}

func Valid(secret, body []byte, header string) bool {
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Middleware rejects requests whose body does not match the X-Signature header.
// The body is restored for the next handler.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
				return
			}
			if !Valid(key, body, r.Header.Get(Header)) {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid signature")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
