package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryBuffer is how long before the actual expiry a token is treated as
// expired, so renewal happens ahead of upstream rejection.
const ExpiryBuffer = 300 * time.Second

// ExpiryChecker inspects the expiry claim of opaque bearer tokens.
// The tokens are signed by the backend; the gateway never verifies the
// signature, it only reads the exp claim to schedule renewal.
type ExpiryChecker struct {
	parser *jwt.Parser
	buffer time.Duration
	now    func() time.Time
}

// NewExpiryChecker creates a checker with the standard renewal buffer.
func NewExpiryChecker() *ExpiryChecker {
	return &ExpiryChecker{
		parser: jwt.NewParser(),
		buffer: ExpiryBuffer,
		now:    time.Now,
	}
}

// IsTokenExpired reports whether the token's expiry claim is within the
// buffer of now. Tokens that fail to decode, or carry no expiry claim,
// count as expired (fail closed).
func (c *ExpiryChecker) IsTokenExpired(tokenStr string) bool {
	if tokenStr == "" {
		return true
	}

	token, _, err := c.parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return !c.now().Before(exp.Time.Add(-c.buffer))
}
