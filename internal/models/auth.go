package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// StudentClaims is the access token payload issued by the backend.
type StudentClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a dashboard request.
type Principal struct {
	Email string
	Name  string
	Token string
}
