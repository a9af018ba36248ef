package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/vfg2006/marketing-reports/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

type TokenRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken troca a senha do administrador por um JWT
func IssueToken(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		token, expiresAt, err := service.Login(req.Password)
		if err != nil {
			handleLoginError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt})
	}
}

// handleLoginError usa o código do AuthError quando disponível
func handleLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		if errors.Is(err, authenticating.ErrInvalidCredentials) {
			log.ForContext(r.Context()).Warn("Tentativa de login com senha incorreta")
		}
		apiErrors.WriteError(w, authErr.Code, authErr.Err.Error(), nil)
		return
	}

	log.ForContext(r.Context()).WithError(err).Error("Erro ao emitir token")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao emitir token", nil)
}
