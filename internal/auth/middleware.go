package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/presence"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

const actorKey = "auth_actor"

// AuthMiddleware validates bearer tokens and resolves the acting identity.
// The services never authenticate; they receive the actor this middleware
// builds.
type AuthMiddleware struct {
	tokens    *TokenManager
	usuarios  repository.UsuarioRepository
	presencia presence.Tracker
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, usuarios repository.UsuarioRepository, presencia presence.Tracker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, usuarios: usuarios, presencia: presencia}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	usuario, err := m.usuarios.GetByID(c.Context(), claims.UsuarioID)
	if err != nil {
		return apperrors.NewUnauthorized("usuario not found")
	}
	if !usuario.Activo {
		return apperrors.NewUnauthorized("usuario inactivo")
	}

	if m.presencia != nil {
		_ = m.presencia.Marcar(c.Context(), usuario.ID)
	}

	c.Locals(actorKey, domain.Actor{ID: usuario.ID, Rol: usuario.Rol})
	return c.Next()
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return domain.Actor{}, false
	}
	actor, ok := val.(domain.Actor)
	return actor, ok
}

// RequireRol ensures the actor holds one of the allowed roles.
func RequireRol(allowed ...domain.Rol) fiber.Handler {
	allowedSet := make(map[domain.Rol]struct{}, len(allowed))
	for _, rol := range allowed {
		allowedSet[rol] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Rol]; !exists {
			return apperrors.NewPermissionError("insufficient role")
		}
		return c.Next()
	}
}
