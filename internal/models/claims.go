package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of the backend-issued token the terminal reads.
// The signature is verified by the backend, not here.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
