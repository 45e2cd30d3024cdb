package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether a cached access token can no longer be used at now.
//
// The client cannot verify the signature (it does not hold the secret), so the
// token is parsed unverified and only its "exp" claim is read. Malformed tokens
// and tokens without an expiry count as expired.
func TokenExpired(tokenString string, now time.Time) bool {
	if tokenString == "" {
		return true
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}
