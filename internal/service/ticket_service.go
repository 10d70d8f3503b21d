package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/events"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// TicketService enforces the lifecycle rules: who may transition what, which
// derived fields a transition computes, and which side effects it triggers.
type TicketService struct {
	tickets    repository.TicketRepository
	historial  repository.HistorialRepository
	usuarios   repository.UsuarioRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	HistorialRepo repository.HistorialRepository
	UsuarioRepo   repository.UsuarioRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Titulo             string
	Descripcion        string
	Categoria          domain.Categoria
	Prioridad          domain.Prioridad
	Sucursal           string
	Adjuntos           []domain.Adjunto
	RequiereAprobacion bool
}

// TicketUpdateInput describes a partial update request.
type TicketUpdateInput struct {
	Titulo            *string
	Descripcion       *string
	Categoria         *domain.Categoria
	Prioridad         *domain.Prioridad
	Estado            *domain.Estado
	AsignadoID        *int64
	Adjuntos          []domain.Adjunto
	ReporteSupervisor *string
	Comentario        string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		historial:  deps.HistorialRepo,
		usuarios:   deps.UsuarioRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create registers a ticket for the acting branch user. The branch is
// resolved from the creator unless explicitly overridden.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	titulo := strings.TrimSpace(input.Titulo)
	if titulo == "" {
		return nil, apperrors.NewValidationError("titulo requerido", nil)
	}
	if input.Prioridad != "" && !input.Prioridad.EsValida() {
		return nil, apperrors.NewValidationError("prioridad invalida", map[string]any{"prioridad": input.Prioridad})
	}
	if input.Categoria != "" && !input.Categoria.EsValida() {
		return nil, apperrors.NewValidationError("categoria invalida", map[string]any{"categoria": input.Categoria})
	}

	sucursal := strings.TrimSpace(input.Sucursal)
	if sucursal == "" {
		creador, err := s.usuarios.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		sucursal = creador.Sucursal
	}

	estado := domain.EstadoNuevo
	if input.RequiereAprobacion {
		estado = domain.EstadoPendienteAprobacion
	}

	ticket := &domain.Ticket{
		Titulo:      titulo,
		Descripcion: strings.TrimSpace(input.Descripcion),
		Categoria:   input.Categoria,
		Prioridad:   input.Prioridad,
		Estado:      estado,
		CreadorID:   actor.ID,
		Sucursal:    sucursal,
		Adjuntos:    input.Adjuntos,
	}
	if ticket.Prioridad == "" {
		ticket.Prioridad = domain.PrioridadMedia
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreado,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreadoPayload{
			Titulo:    ticket.Titulo,
			Sucursal:  ticket.Sucursal,
			Prioridad: ticket.Prioridad,
			Estado:    ticket.Estado,
		},
	})
	return ticket, nil
}

// GetByID fetches a ticket within the actor's visibility.
func (s *TicketService) GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id, viewerFor(actor))
}

// Update applies a partial update after enforcing the transition and
// permission rules. Taking an unassigned ticket auto-assigns the actor.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	actual, err := s.tickets.GetByID(ctx, id, viewerFor(actor))
	if err != nil {
		return nil, err
	}

	patch := repository.TicketPatch{
		Titulo:            input.Titulo,
		Descripcion:       input.Descripcion,
		Categoria:         input.Categoria,
		Prioridad:         input.Prioridad,
		AsignadoID:        input.AsignadoID,
		Adjuntos:          input.Adjuntos,
		ReporteSupervisor: input.ReporteSupervisor,
		Comentario:        strings.TrimSpace(input.Comentario),
	}
	if input.Titulo != nil && strings.TrimSpace(*input.Titulo) == "" {
		return nil, apperrors.NewValidationError("titulo requerido", nil)
	}
	if input.Prioridad != nil && !input.Prioridad.EsValida() {
		return nil, apperrors.NewValidationError("prioridad invalida", map[string]any{"prioridad": *input.Prioridad})
	}
	if input.Categoria != nil && !input.Categoria.EsValida() {
		return nil, apperrors.NewValidationError("categoria invalida", map[string]any{"categoria": *input.Categoria})
	}

	// An explicit assignee in a generic update follows the same rules as
	// AssignTo: assigning roles only, target must be active support.
	if input.AsignadoID != nil {
		if !actor.Rol.PuedeAsignar() {
			return nil, apperrors.NewPermissionError("rol sin permiso para asignar tickets")
		}
		target, err := s.usuarios.GetByID(ctx, *input.AsignadoID)
		if err != nil {
			return nil, err
		}
		if !target.Activo || target.Rol != domain.RolSoporte {
			return nil, apperrors.NewConflict("el destinatario no es un tecnico de soporte activo", map[string]any{"usuario_id": *input.AsignadoID})
		}
	}

	if input.Estado != nil {
		estado := *input.Estado
		if !estado.EsValido() {
			return nil, apperrors.NewValidationError("estado invalido", map[string]any{"estado": estado})
		}
		if !domain.TransicionValida(actual.Estado, estado) {
			return nil, apperrors.NewValidationError("transicion de estado no permitida", map[string]any{
				"desde": actual.Estado,
				"hacia": estado,
			})
		}
		if err := s.checkEstadoPermission(actor, actual, estado); err != nil {
			return nil, err
		}
		patch.Estado = &estado
		// Taking the ticket: the actor becomes the assignee unless an
		// explicit assignee came with the request.
		if estado == domain.EstadoEnProgreso && actual.AsignadoID == nil && patch.AsignadoID == nil {
			actorID := actor.ID
			patch.AsignadoID = &actorID
		}
	}

	// An assignment pulls a fresh or parked ticket into progress; a row in
	// pendiente never carries an assignee.
	if patch.AsignadoID != nil && patch.Estado == nil &&
		(actual.Estado == domain.EstadoNuevo || actual.Estado == domain.EstadoPendiente) {
		estado := domain.EstadoEnProgreso
		patch.Estado = &estado
	}

	actualizado, err := s.tickets.Update(ctx, id, patch, viewerFor(actor))
	if err != nil {
		return nil, err
	}

	if patch.Estado != nil && actual.Estado != actualizado.Estado {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEstadoCambiado,
			TicketID: id,
			ActorID:  actor.ID,
			Payload: events.EstadoCambiadoPayload{
				EstadoAnterior: actual.Estado,
				EstadoNuevo:    actualizado.Estado,
				Comentario:     patch.Comentario,
			},
		})
	}
	return actualizado, nil
}

// ChangeState transitions a ticket with an optional comment.
func (s *TicketService) ChangeState(ctx context.Context, actor domain.Actor, id int64, estado domain.Estado, comentario string) (*domain.Ticket, error) {
	return s.Update(ctx, actor, id, TicketUpdateInput{Estado: &estado, Comentario: comentario})
}

// AssignTo assigns the ticket to a support user, forcing it into progress
// when still new. Restricted to support, supervisor and admin roles.
func (s *TicketService) AssignTo(ctx context.Context, actor domain.Actor, ticketID, targetID int64) (*domain.Ticket, error) {
	if !actor.Rol.PuedeAsignar() {
		return nil, apperrors.NewPermissionError("rol sin permiso para asignar tickets")
	}

	target, err := s.usuarios.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.Activo || target.Rol != domain.RolSoporte {
		return nil, apperrors.NewConflict("el destinatario no es un tecnico de soporte activo", map[string]any{"usuario_id": targetID})
	}

	actual, err := s.tickets.GetByID(ctx, ticketID, nil)
	if err != nil {
		return nil, err
	}
	if actual.Estado.EsTerminal() {
		return nil, apperrors.NewConflict("ticket en estado terminal", map[string]any{"estado": actual.Estado})
	}

	patch := repository.TicketPatch{AsignadoID: &targetID}
	if actual.Estado == domain.EstadoNuevo || actual.Estado == domain.EstadoPendiente {
		estado := domain.EstadoEnProgreso
		patch.Estado = &estado
	}

	actualizado, err := s.tickets.Update(ctx, ticketID, patch, viewerFor(actor))
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAsignado,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload:  events.TicketAsignadoPayload{AsignadoID: actualizado.AsignadoID},
	})
	return actualizado, nil
}

// ReassignTo hands the ticket over to another support user, stamping the
// reassignment record. Only the current assignee may hand off.
func (s *TicketService) ReassignTo(ctx context.Context, actor domain.Actor, ticketID, newUserID int64) (*domain.Ticket, error) {
	actual, err := s.tickets.GetByID(ctx, ticketID, viewerFor(actor))
	if err != nil {
		return nil, err
	}
	if actual.Estado != domain.EstadoEnProgreso {
		return nil, apperrors.NewConflict("solo un ticket en progreso puede reasignarse", map[string]any{"estado": actual.Estado})
	}
	if actor.Rol != domain.RolAdmin {
		if actual.AsignadoID == nil || *actual.AsignadoID != actor.ID {
			return nil, apperrors.NewPermissionError("solo el asignado actual puede reasignar el ticket")
		}
	}

	target, err := s.usuarios.GetByID(ctx, newUserID)
	if err != nil {
		return nil, err
	}
	if !target.Activo || target.Rol != domain.RolSoporte {
		return nil, apperrors.NewConflict("el destinatario no es un tecnico de soporte activo", map[string]any{"usuario_id": newUserID})
	}

	patch := repository.TicketPatch{
		AsignadoID:    &newUserID,
		ReasignadoAID: &newUserID,
	}
	actualizado, err := s.tickets.Update(ctx, ticketID, patch, viewerFor(actor))
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAsignado,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload:  events.TicketAsignadoPayload{AsignadoID: actualizado.AsignadoID, Reasignacion: true},
	})
	return actualizado, nil
}

// Delete removes a ticket; only its creator may.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, id int64) (bool, error) {
	return s.tickets.Delete(ctx, id, actor.ID)
}

// ListForUser lists tickets where the actor is creator or assignee.
func (s *TicketService) ListForUser(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.ListForUser(ctx, actor.ID, filter)
}

// ListAll lists tickets without visibility restriction; elevated roles only.
func (s *TicketService) ListAll(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !actor.Rol.EsElevado() {
		return nil, apperrors.NewPermissionError("rol sin acceso al listado completo")
	}
	return s.tickets.ListAll(ctx, filter)
}

// StatsForUser aggregates the actor's tickets by state and priority.
func (s *TicketService) StatsForUser(ctx context.Context, actor domain.Actor) (domain.StatsSummary, error) {
	return s.tickets.CountForUser(ctx, actor.ID)
}

// GetHistoryForTicket returns the transition audit trail, ascending, for a
// ticket the actor may see.
func (s *TicketService) GetHistoryForTicket(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.HistorialEntry, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID, viewerFor(actor)); err != nil {
		return nil, err
	}
	return s.historial.ListForTicket(ctx, ticketID)
}

// checkEstadoPermission enforces who may transition a ticket: the current
// assignee, or any support-eligible user when taking an unassigned ticket
// into progress. Admins bypass.
func (s *TicketService) checkEstadoPermission(actor domain.Actor, actual *domain.Ticket, nuevo domain.Estado) error {
	if actor.Rol == domain.RolAdmin {
		return nil
	}
	if nuevo == domain.EstadoEnProgreso && actual.AsignadoID == nil {
		if !actor.Rol.PuedeAsignar() {
			return apperrors.NewPermissionError("rol sin permiso para tomar tickets")
		}
		return nil
	}
	if actual.AsignadoID == nil || *actual.AsignadoID != actor.ID {
		return apperrors.NewPermissionError("solo el asignado actual puede cambiar el estado")
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// viewerFor maps an actor to the repository visibility filter. Elevated roles
// see every ticket.
func viewerFor(actor domain.Actor) *repository.Viewer {
	return &repository.Viewer{ID: actor.ID, Rol: actor.Rol}
}
