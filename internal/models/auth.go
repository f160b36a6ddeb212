package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the identity embedded in admin bearer tokens. Tokens are
// issued by the hosting site; this service only validates them.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
