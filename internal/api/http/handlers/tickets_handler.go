package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gestion-soporte/mesa-ayuda/internal/api/dto"
	"github.com/gestion-soporte/mesa-ayuda/internal/auth"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	"github.com/gestion-soporte/mesa-ayuda/internal/service"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// TicketsHandler exposes the lifecycle operations over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.TicketCreateInput{
		Titulo:             req.Titulo,
		Descripcion:        req.Descripcion,
		Categoria:          req.Categoria,
		Prioridad:          req.Prioridad,
		Sucursal:           req.Sucursal,
		Adjuntos:           req.Adjuntos,
		RequiereAprobacion: req.RequiereAprobacion,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /tickets — tickets where the actor is creator or assignee.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListForUser(c.UserContext(), actor, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListAll GET /tickets/all — unrestricted listing for elevated roles.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListAll(c.UserContext(), actor, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetByID(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.UserContext(), actor, id, service.TicketUpdateInput{
		Titulo:            req.Titulo,
		Descripcion:       req.Descripcion,
		Categoria:         req.Categoria,
		Prioridad:         req.Prioridad,
		Estado:            req.Estado,
		AsignadoID:        req.AsignadoID,
		Adjuntos:          req.Adjuntos,
		ReporteSupervisor: req.ReporteSupervisor,
		Comentario:        req.Comentario,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ChangeState POST /tickets/:id/estado.
func (h *TicketsHandler) ChangeState(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Estado == "" {
		return apperrors.NewValidationError("estado requerido", nil)
	}

	ticket, err := h.service.ChangeState(c.UserContext(), actor, id, req.Estado, req.Comentario)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assign POST /tickets/:id/asignar.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil || req.UsuarioID == 0 {
		return apperrors.NewValidationError("usuario_id requerido", nil)
	}

	ticket, err := h.service.AssignTo(c.UserContext(), actor, id, req.UsuarioID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reassign POST /tickets/:id/reasignar.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil || req.UsuarioID == 0 {
		return apperrors.NewValidationError("usuario_id requerido", nil)
	}

	ticket, err := h.service.ReassignTo(c.UserContext(), actor, id, req.UsuarioID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.Delete(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}

// History GET /tickets/:id/historial.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.GetHistoryForTicket(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	items := make([]dto.HistorialResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromHistorial(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /tickets/estadisticas.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.StatsForUser(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:        stats.Total,
		PorEstado:    stats.PorEstado,
		PorPrioridad: stats.PorPrioridad,
	}})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id invalido", nil)
	}
	return id, nil
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if estados := c.Query("estado"); estados != "" {
		for _, part := range strings.Split(estados, ",") {
			filter.Estados = append(filter.Estados, domain.Estado(strings.TrimSpace(part)))
		}
	}
	if prioridades := c.Query("prioridad"); prioridades != "" {
		for _, part := range strings.Split(prioridades, ",") {
			filter.Prioridades = append(filter.Prioridades, domain.Prioridad(strings.TrimSpace(part)))
		}
	}
	if categorias := c.Query("categoria"); categorias != "" {
		for _, part := range strings.Split(categorias, ",") {
			filter.Categorias = append(filter.Categorias, domain.Categoria(strings.TrimSpace(part)))
		}
	}
	if sucursal := c.Query("sucursal"); sucursal != "" {
		filter.Sucursal = &sucursal
	}
	if desde := c.Query("desde"); desde != "" {
		if parsed, err := time.Parse(time.RFC3339, desde); err == nil {
			filter.CreadoDesde = &parsed
		}
	}
	if hasta := c.Query("hasta"); hasta != "" {
		if parsed, err := time.Parse(time.RFC3339, hasta); err == nil {
			filter.CreadoHasta = &parsed
		}
	}
	page := parseIntQuery(c.Query("page"), 1)
	pageSize := parseIntQuery(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return items
}
