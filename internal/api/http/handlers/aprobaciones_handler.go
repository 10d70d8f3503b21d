package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gestion-soporte/mesa-ayuda/internal/api/dto"
	"github.com/gestion-soporte/mesa-ayuda/internal/auth"
	"github.com/gestion-soporte/mesa-ayuda/internal/service"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// AprobacionesHandler exposes the supervisor gate.
type AprobacionesHandler struct {
	service *service.AprobacionService
}

// NewAprobacionesHandler constructs handler.
func NewAprobacionesHandler(aprobacionService *service.AprobacionService) *AprobacionesHandler {
	return &AprobacionesHandler{service: aprobacionService}
}

// Approve POST /tickets/:id/aprobar.
func (h *AprobacionesHandler) Approve(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ApproveRequest
	_ = c.BodyParser(&req)

	ticket, err := h.service.Approve(c.UserContext(), actor, id, req.Comentario)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reject POST /tickets/:id/rechazar.
func (h *AprobacionesHandler) Reject(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	notificar := true
	if req.NotificarSucursal != nil {
		notificar = *req.NotificarSucursal
	}

	resultado, err := h.service.Reject(c.UserContext(), actor, id, req.Motivo, notificar)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RechazoResponse{
		Ticket:              dto.FromTicket(resultado.Ticket),
		NotificacionEnviada: resultado.NotificacionEnviada,
	}})
}

// Historial GET /supervisores/:id/historial.
func (h *AprobacionesHandler) Historial(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	supervisorID, err := parseSupervisorID(c, actor.ID)
	if err != nil {
		return err
	}
	items, err := h.service.GetHistorialSupervisor(c.UserContext(), actor, supervisorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Estadisticas GET /supervisores/:id/estadisticas.
func (h *AprobacionesHandler) Estadisticas(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	supervisorID, err := parseSupervisorID(c, actor.ID)
	if err != nil {
		return err
	}
	stats, err := h.service.GetEstadisticasSupervisor(c.UserContext(), actor, supervisorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func parseSupervisorID(c *fiber.Ctx, fallback int64) (int64, error) {
	raw := c.Params("id")
	if raw == "" || raw == "me" {
		return fallback, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id invalido", nil)
	}
	return id, nil
}
