package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestion-soporte/mesa-ayuda/internal/clock"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/events"
	"github.com/gestion-soporte/mesa-ayuda/internal/notify"
	"github.com/gestion-soporte/mesa-ayuda/internal/presence"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// AprobacionService runs the supervisor gate: approving a pending ticket back
// into the normal flow with an assignee, or rejecting it with a branch
// notification.
type AprobacionService struct {
	tickets      repository.TicketRepository
	aprobaciones repository.AprobacionRepository
	usuarios     repository.UsuarioRepository
	presencia    presence.Tracker
	notifier     notify.Notifier
	dispatcher   events.Dispatcher
	clk          clock.Clock
	logger       *zap.Logger
}

// AprobacionDependencies bundles collaborators.
type AprobacionDependencies struct {
	TicketRepo     repository.TicketRepository
	AprobacionRepo repository.AprobacionRepository
	UsuarioRepo    repository.UsuarioRepository
	Presencia      presence.Tracker
	Notifier       notify.Notifier
	Dispatcher     events.Dispatcher
	Clock          clock.Clock
	Logger         *zap.Logger
}

// ResultadoRechazo reports a rejection outcome, including whether the branch
// notification actually went out.
type ResultadoRechazo struct {
	Ticket              *domain.Ticket
	NotificacionEnviada bool
}

// NewAprobacionService constructs the service.
func NewAprobacionService(deps AprobacionDependencies) *AprobacionService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &AprobacionService{
		tickets:      deps.TicketRepo,
		aprobaciones: deps.AprobacionRepo,
		usuarios:     deps.UsuarioRepo,
		presencia:    deps.Presencia,
		notifier:     notifier,
		dispatcher:   deps.Dispatcher,
		clk:          deps.Clock,
		logger:       deps.Logger,
	}
}

// Approve moves a pending ticket back to nuevo, assigning the first available
// support user. Supervisors and admins only; the ticket must be exactly in
// pendiente_aprobacion.
func (s *AprobacionService) Approve(ctx context.Context, actor domain.Actor, ticketID int64, comentario string) (*domain.Ticket, error) {
	if !actor.Rol.PuedeAprobar() {
		return nil, apperrors.NewPermissionError("rol sin permiso para aprobar tickets")
	}

	actual, err := s.tickets.GetByID(ctx, ticketID, nil)
	if err != nil {
		return nil, err
	}
	if actual.Estado != domain.EstadoPendienteAprobacion {
		return nil, apperrors.NewConflict("el ticket no espera aprobacion", map[string]any{"estado": actual.Estado})
	}

	estado := domain.EstadoNuevo
	supervisorID := actor.ID
	patch := repository.TicketPatch{
		Estado:       &estado,
		SupervisorID: &supervisorID,
		Comentario:   strings.TrimSpace(comentario),
	}
	if asignado := s.soporteDisponible(ctx); asignado != nil {
		patch.AsignadoID = &asignado.ID
	}

	actualizado, err := s.tickets.Update(ctx, ticketID, patch, &repository.Viewer{ID: actor.ID, Rol: actor.Rol})
	if err != nil {
		return nil, err
	}

	s.recordDecision(ctx, &domain.Aprobacion{
		TicketID:     ticketID,
		SupervisorID: actor.ID,
		Accion:       domain.AccionAprobado,
		Motivo:       strings.TrimSpace(comentario),
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAprobado,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload: events.DecisionSupervisorPayload{
			SupervisorID: actor.ID,
			AsignadoID:   actualizado.AsignadoID,
		},
	})
	return actualizado, nil
}

// Reject closes the approval window with a mandatory motive and notifies the
// originating branch. Notification failure degrades to
// NotificacionEnviada=false, never to an operation error.
func (s *AprobacionService) Reject(ctx context.Context, actor domain.Actor, ticketID int64, motivo string, notificarSucursal bool) (*ResultadoRechazo, error) {
	if !actor.Rol.PuedeAprobar() {
		return nil, apperrors.NewPermissionError("rol sin permiso para rechazar tickets")
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, apperrors.NewValidationError("motivo de rechazo requerido", nil)
	}

	actual, err := s.tickets.GetByID(ctx, ticketID, nil)
	if err != nil {
		return nil, err
	}
	if actual.Estado != domain.EstadoPendienteAprobacion {
		return nil, apperrors.NewConflict("el ticket no espera aprobacion", map[string]any{"estado": actual.Estado})
	}

	estado := domain.EstadoRechazado
	supervisorID := actor.ID
	actualizado, err := s.tickets.Update(ctx, ticketID, repository.TicketPatch{
		Estado:       &estado,
		SupervisorID: &supervisorID,
		Comentario:   motivo,
	}, &repository.Viewer{ID: actor.ID, Rol: actor.Rol})
	if err != nil {
		return nil, err
	}

	enviada := false
	if notificarSucursal && actualizado.Sucursal != "" {
		noticia := notify.NoticiaRechazo{
			Sucursal:     actualizado.Sucursal,
			Titulo:       "Ticket rechazado",
			Cuerpo:       motivo,
			TicketID:     ticketID,
			SupervisorID: actor.ID,
			Fecha:        s.now(),
		}
		if err := s.notifier.PublicarRechazo(ctx, noticia); err != nil {
			s.logger.Warn("notificacion de rechazo fallo",
				zap.Int64("ticket_id", ticketID),
				zap.String("sucursal", actualizado.Sucursal),
				zap.Error(err))
		} else {
			enviada = true
		}
	}

	s.recordDecision(ctx, &domain.Aprobacion{
		TicketID:            ticketID,
		SupervisorID:        actor.ID,
		Accion:              domain.AccionRechazado,
		Motivo:              motivo,
		NotificacionEnviada: enviada,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketRechazado,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload: events.DecisionSupervisorPayload{
			SupervisorID: actor.ID,
			Motivo:       motivo,
		},
	})
	return &ResultadoRechazo{Ticket: actualizado, NotificacionEnviada: enviada}, nil
}

// GetHistorialSupervisor lists the supervisor's past decisions. Empty, never
// an error, when the ledger is not yet provisioned.
func (s *AprobacionService) GetHistorialSupervisor(ctx context.Context, actor domain.Actor, supervisorID int64) ([]domain.HistorialAprobacion, error) {
	if !actor.Rol.PuedeAprobar() {
		return nil, apperrors.NewPermissionError("rol sin acceso al historial de aprobaciones")
	}
	return s.aprobaciones.HistorialForSupervisor(ctx, supervisorID)
}

// GetEstadisticasSupervisor aggregates the supervisor's decisions plus the
// global pending count.
func (s *AprobacionService) GetEstadisticasSupervisor(ctx context.Context, actor domain.Actor, supervisorID int64) (domain.EstadisticasSupervisor, error) {
	if !actor.Rol.PuedeAprobar() {
		return domain.EstadisticasSupervisor{}, apperrors.NewPermissionError("rol sin acceso a estadisticas de aprobaciones")
	}
	return s.aprobaciones.StatsForSupervisor(ctx, supervisorID)
}

// soporteDisponible walks active support users in id order and picks the
// first one, preferring one currently online when presence can answer.
// First-found on purpose; no load balancing.
func (s *AprobacionService) soporteDisponible(ctx context.Context) *domain.Usuario {
	candidatos, err := s.usuarios.ListSoporteActivos(ctx)
	if err != nil {
		s.logger.Warn("no se pudo listar soporte activo", zap.Error(err))
		return nil
	}
	if len(candidatos) == 0 {
		return nil
	}
	if s.presencia != nil {
		for i := range candidatos {
			online, err := s.presencia.EstaEnLinea(ctx, candidatos[i].ID)
			if err != nil {
				break
			}
			if online {
				return &candidatos[i]
			}
		}
	}
	return &candidatos[0]
}

// recordDecision writes the approval ledger row. The ticket row already
// committed; a ledger failure is logged, not surfaced.
func (s *AprobacionService) recordDecision(ctx context.Context, decision *domain.Aprobacion) {
	if err := s.aprobaciones.Record(ctx, decision); err != nil {
		s.logger.Error("registro de decision de supervisor fallo",
			zap.Int64("ticket_id", decision.TicketID),
			zap.String("accion", string(decision.Accion)),
			zap.Error(err))
	}
}

func (s *AprobacionService) now() time.Time {
	if s.clk != nil {
		return s.clk.Now()
	}
	return time.Now()
}

func (s *AprobacionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
