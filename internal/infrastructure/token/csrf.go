package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"web-gateway/internal/domain"
)

// HMACCSRFGenerator derives CSRF tokens from session identifiers using
// HMAC-SHA256. Implements the double-submit pattern: the same token is set
// as a cookie and expected back in the X-XSRF-TOKEN request header.
type HMACCSRFGenerator struct {
	secret []byte
}

// NewHMACCSRFGenerator creates a new CSRF token generator.
func NewHMACCSRFGenerator(secret string) *HMACCSRFGenerator {
	return &HMACCSRFGenerator{secret: []byte(secret)}
}

// Generate creates a deterministic CSRF token from a session ID.
func (g *HMACCSRFGenerator) Generate(sessionID string) (string, error) {
	if len(g.secret) == 0 {
		return "", domain.ErrCSRFSecretMissing
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// ValidateDoubleSubmit compares the CSRF cookie value against the request
// header value in constant time. Both must be present and equal.
func ValidateDoubleSubmit(cookieToken, headerToken string) error {
	if cookieToken == "" || headerToken == "" {
		return domain.ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
		return domain.ErrCSRFMismatch
	}
	return nil
}
