package upstream

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token attached to backend requests.
type TokenSource interface {
	// Token returns the current token, or an AuthError when none is usable.
	Token() (string, error)
}

// StaticTokenSource serves one configured token. JWTs are checked for expiry
// before use; the signature is not verified here because the backend owns the
// signing key. Opaque tokens pass through untouched.
type StaticTokenSource struct {
	token string
	now   func() time.Time
}

// NewStaticTokenSource wraps a configured token string.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token, now: time.Now}
}

func (s *StaticTokenSource) Token() (string, error) {
	if s.token == "" {
		return "", &AuthError{Message: "No authentication token"}
	}
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(s.token, claims)
	if err != nil {
		// Not a JWT; treat as an opaque bearer token.
		return s.token, nil
	}
	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil && exp.Before(s.now()) {
		return "", &AuthError{Message: "Authentication failed: token expired"}
	}
	return s.token, nil
}
