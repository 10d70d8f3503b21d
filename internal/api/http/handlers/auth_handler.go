package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gestion-soporte/mesa-ayuda/internal/api/dto"
	"github.com/gestion-soporte/mesa-ayuda/internal/service"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// AuthHandler exposes login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		UsuarioID: result.Usuario.ID,
		Nombre:    result.Usuario.Nombre,
		Rol:       result.Usuario.Rol,
		Sucursal:  result.Usuario.Sucursal,
	}})
}
