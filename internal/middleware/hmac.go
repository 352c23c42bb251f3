package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderSignature carries the HUD's HMAC over the raw request body.
	HeaderSignature = "X-HUD-Signature"

	signatureScheme = "sha256="
)

// HMACAuth verifies the webhook signature before any handler runs. It fails
// closed: no configured secret, no header, or no scheme prefix rejects the
// request without computing an HMAC at all.
func HMACAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(HeaderSignature)
		if secret == "" || !strings.HasPrefix(header, signatureScheme) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.NewAuthFailed("missing or malformed signature"))
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, apperrors.NewInvalidRequest("unable to read request body"))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		presented := strings.ToLower(strings.TrimPrefix(header, signatureScheme))
		if !VerifySignature(secret, body, presented) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.NewAuthFailed("invalid signature"))
			return
		}

		c.Next()
	}
}

// VerifySignature reports whether presentedHex equals the lowercase hex
// HMAC-SHA256 of body under secret. The comparison is length-first and
// constant-time over equal-length inputs: a mismatched length is immediately
// false, and equal-length content is always traversed fully so the cost does
// not depend on where the first differing byte sits.
func VerifySignature(secret string, body []byte, presentedHex string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if len(expected) != len(presentedHex) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presentedHex)) == 1
}
