package service

import (
	"context"
	"strings"
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/auth"
	"github.com/gestion-soporte/mesa-ayuda/internal/config"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// AuthService signs users in and hands out tokens. The lifecycle engine
// itself never touches credentials; this is the identity-context collaborator.
type AuthService struct {
	usuarios repository.UsuarioRepository
	tokens   *auth.TokenManager
}

// LoginResult carries the issued token and the signed-in user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Usuario   *domain.Usuario
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, usuarios repository.UsuarioRepository) *AuthService {
	return &AuthService{
		usuarios: usuarios,
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email y password requeridos", nil)
	}

	usuario, err := s.usuarios.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("credenciales invalidas")
	}
	if !usuario.Activo {
		return nil, apperrors.NewUnauthorized("usuario inactivo")
	}
	if err := auth.ComparePassword(usuario.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("credenciales invalidas")
	}

	token, expiresAt, err := s.tokens.GenerateToken(usuario)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Usuario: usuario}, nil
}
