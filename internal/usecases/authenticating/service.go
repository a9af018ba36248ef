package authenticating

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
)

const (
	issuer          = "marketing-reports"
	defaultTokenTTL = 24 * time.Hour
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks
type Authenticator interface {
	// Login troca a senha do administrador por um token
	Login(password string) (string, time.Time, error)
	// GenerateToken emite um token sem senha, usado pela CLI
	GenerateToken(role string) (string, time.Time, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(cfg config.Auth) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		secret:       []byte(cfg.Secret),
		passwordHash: []byte(cfg.AdminPasswordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *Service) Login(password string) (string, time.Time, error) {
	if password == "" {
		return "", time.Time{}, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "senha é obrigatória")
	}

	if len(s.passwordHash) == 0 {
		return "", time.Time{}, NewAuthError(ErrAuthDisabled, apiErrors.ErrAuthDisabled, "AUTH_ADMIN_PASSWORD_HASH não definido")
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "senha incorreta")
	}

	return s.GenerateToken(domain.RoleAdmin)
}

func (s *Service) GenerateToken(role string) (string, time.Time, error) {
	if role != domain.RoleAdmin && role != domain.RoleViewer {
		return "", time.Time{}, NewAuthError(ErrInvalidRole, apiErrors.ErrInvalidRequest, role)
	}

	if len(s.secret) == 0 {
		return "", time.Time{}, NewAuthError(ErrAuthDisabled, apiErrors.ErrAuthDisabled, "AUTH_SECRET não definido")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := domain.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   role,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, NewAuthError(err, apiErrors.ErrInternalServer, "erro ao assinar token")
	}
	return token, expiresAt, nil
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	if len(s.secret) == 0 {
		return nil, NewAuthError(ErrAuthDisabled, apiErrors.ErrAuthDisabled, "AUTH_SECRET não definido")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}
	return claims, nil
}
