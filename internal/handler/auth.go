package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/service"
	"github.com/BuzzLyutic/tasky/pkg/respond"
)

type AuthHandler struct {
	base
	service *service.AuthService
}

func NewAuthHandler(srv *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{base: base{logger: logger}, service: srv}
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, LoginResponse{Token: token})
}

// TokenVerifier returns the subject of a valid token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type ctxKey struct{}

// UserFromContext returns the subject set by Authenticate.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(ctxKey{}).(string)
	return user, ok
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			user, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
		})
	}
}
