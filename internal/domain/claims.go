package domain

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Claims é o conteúdo do token emitido pela API
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
