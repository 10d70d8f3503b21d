package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/events"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	"github.com/gestion-soporte/mesa-ayuda/internal/service"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

type ticketFixture struct {
	svc       *service.TicketService
	tickets   *fakeTicketRepo
	historial *fakeHistorial
	usuarios  *fakeUsuarioRepo
	events    *capturedEvents
}

type capturedEvents struct {
	published []events.Event
}

func (c *capturedEvents) record(_ context.Context, event events.Event) error {
	c.published = append(c.published, event)
	return nil
}

func (c *capturedEvents) ofType(tipo events.EventType) []events.Event {
	var result []events.Event
	for _, event := range c.published {
		if event.Type == tipo {
			result = append(result, event)
		}
	}
	return result
}

func newTicketFixture(usuarios ...domain.Usuario) *ticketFixture {
	historial := newFakeHistorial()
	tickets := newFakeTicketRepo(historial)
	usuarioRepo := newFakeUsuarioRepo(usuarios...)

	captured := &capturedEvents{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, tipo := range []events.EventType{
		events.EventTicketCreado,
		events.EventTicketEstadoCambiado,
		events.EventTicketAsignado,
	} {
		dispatcher.Subscribe(tipo, captured.record)
	}

	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    tickets,
		HistorialRepo: historial,
		UsuarioRepo:   usuarioRepo,
		Dispatcher:    dispatcher,
		Logger:        zap.NewNop(),
	})
	return &ticketFixture{
		svc:       svc,
		tickets:   tickets,
		historial: historial,
		usuarios:  usuarioRepo,
		events:    captured,
	}
}

func usuarioSucursal(id int64, sucursal string) domain.Usuario {
	return domain.Usuario{ID: id, Nombre: "sucursal", Rol: domain.RolSucursal, Sucursal: sucursal, Activo: true}
}

func usuarioSoporte(id int64) domain.Usuario {
	return domain.Usuario{ID: id, Nombre: "soporte", Rol: domain.RolSoporte, Activo: true}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, code), "expected code %s, got %v", code, err)
}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults y sucursal del creador", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(7, "centro"))
		actor := domain.Actor{ID: 7, Rol: domain.RolSucursal}

		ticket, err := fx.svc.Create(ctx, actor, service.TicketCreateInput{
			Titulo:      "  impresora sin toner  ",
			Descripcion: "piso 2",
		})
		require.NoError(t, err)

		assert.Equal(t, "impresora sin toner", ticket.Titulo)
		assert.Equal(t, domain.EstadoNuevo, ticket.Estado)
		assert.Equal(t, domain.PrioridadMedia, ticket.Prioridad)
		assert.Equal(t, "centro", ticket.Sucursal)
		assert.Equal(t, int64(7), ticket.CreadorID)
		assert.Nil(t, ticket.AsignadoID)
		assert.Nil(t, ticket.ClosedAt)

		entries := fx.historial.forTicket(ticket.ID)
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].EstadoAnterior)
		assert.Equal(t, domain.EstadoNuevo, entries[0].EstadoNuevo)
		assert.Equal(t, int64(7), entries[0].UsuarioID)

		require.Len(t, fx.events.ofType(events.EventTicketCreado), 1)
	})

	t.Run("titulo vacio es invalido", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(7, "centro"))
		_, err := fx.svc.Create(ctx, domain.Actor{ID: 7, Rol: domain.RolSucursal}, service.TicketCreateInput{Titulo: "   "})
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("prioridad desconocida es invalida", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(7, "centro"))
		_, err := fx.svc.Create(ctx, domain.Actor{ID: 7, Rol: domain.RolSucursal}, service.TicketCreateInput{
			Titulo:    "algo",
			Prioridad: domain.Prioridad("extrema"),
		})
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("con aprobacion requerida nace pendiente_aprobacion", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(7, "centro"))
		ticket, err := fx.svc.Create(ctx, domain.Actor{ID: 7, Rol: domain.RolSucursal}, service.TicketCreateInput{
			Titulo:             "compra de monitor",
			RequiereAprobacion: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.EstadoPendienteAprobacion, ticket.Estado)
	})
}

func TestChangeStateTomaTicket(t *testing.T) {
	fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSoporte(2))
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:    "vpn caida",
		Estado:    domain.EstadoNuevo,
		CreadorID: 1,
		Prioridad: domain.PrioridadAlta,
		Sucursal:  "norte",
	})

	soporte := domain.Actor{ID: 2, Rol: domain.RolSoporte}
	ticket, err := fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoEnProgreso, "")
	require.NoError(t, err)

	assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado)
	require.NotNil(t, ticket.AsignadoID)
	assert.Equal(t, int64(2), *ticket.AsignadoID)
	assert.Nil(t, ticket.ClosedAt)

	entries := fx.historial.forTicket(seeded.ID)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].EstadoAnterior)
	assert.Equal(t, domain.EstadoNuevo, *entries[0].EstadoAnterior)
	assert.Equal(t, domain.EstadoEnProgreso, entries[0].EstadoNuevo)
	assert.Equal(t, int64(2), entries[0].UsuarioID)
}

func TestChangeStateDevuelveAlPozo(t *testing.T) {
	fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSoporte(2))
	asignado := int64(2)
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:     "correo rebotando",
		Estado:     domain.EstadoEnProgreso,
		CreadorID:  1,
		AsignadoID: &asignado,
	})

	soporte := domain.Actor{ID: 2, Rol: domain.RolSoporte}
	ticket, err := fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoPendiente, "espero repuesto")
	require.NoError(t, err)

	assert.Equal(t, domain.EstadoPendiente, ticket.Estado)
	assert.Nil(t, ticket.AsignadoID, "pendiente libera la asignacion")
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, "espero repuesto", ticket.Comentarios)

	entries := fx.historial.forTicket(seeded.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EstadoPendiente, entries[0].EstadoNuevo)
	assert.Equal(t, "espero repuesto", entries[0].Comentario)
}

func TestChangeStateReabrirLimpiaCierre(t *testing.T) {
	fx := newTicketFixture(usuarioSoporte(2))
	closed := fixedNow
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:    "switch piso 3",
		Estado:    domain.EstadoPendiente,
		CreadorID: 1,
		ClosedAt:  &closed,
	})

	soporte := domain.Actor{ID: 2, Rol: domain.RolSoporte}
	ticket, err := fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoEnProgreso, "")
	require.NoError(t, err)

	assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado)
	assert.Nil(t, ticket.ClosedAt, "salir del cierre limpia closed_at")
	require.NotNil(t, ticket.AsignadoID)
	assert.Equal(t, int64(2), *ticket.AsignadoID)
}

func TestChangeStateRechazaTransicionInvalida(t *testing.T) {
	fx := newTicketFixture(usuarioSoporte(2))
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:    "pantalla azul",
		Estado:    domain.EstadoNuevo,
		CreadorID: 1,
	})

	soporte := domain.Actor{ID: 2, Rol: domain.RolSoporte}
	_, err := fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoResuelto, "")
	assertCode(t, err, "VALIDATION_FAILED")

	assert.Empty(t, fx.historial.forTicket(seeded.ID))
	actual, err := fx.svc.GetByID(context.Background(), soporte, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstadoNuevo, actual.Estado)
}

func TestChangeStateSoloAsignadoActual(t *testing.T) {
	fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSoporte(2))
	asignado := int64(2)
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:     "impresora",
		Estado:     domain.EstadoEnProgreso,
		CreadorID:  1,
		AsignadoID: &asignado,
	})

	creador := domain.Actor{ID: 1, Rol: domain.RolSucursal}
	_, err := fx.svc.ChangeState(context.Background(), creador, seeded.ID, domain.EstadoResuelto, "")
	assertCode(t, err, "PERMISSION_DENIED")

	actual, err := fx.svc.GetByID(context.Background(), creador, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstadoEnProgreso, actual.Estado)
	assert.Empty(t, fx.historial.forTicket(seeded.ID))
	assert.Empty(t, fx.events.ofType(events.EventTicketEstadoCambiado))
}

func TestChangeStateAdminSinAsignacion(t *testing.T) {
	fx := newTicketFixture()
	asignado := int64(2)
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:     "licencias vencidas",
		Estado:     domain.EstadoEnProgreso,
		CreadorID:  1,
		AsignadoID: &asignado,
	})

	admin := domain.Actor{ID: 99, Rol: domain.RolAdmin}
	ticket, err := fx.svc.ChangeState(context.Background(), admin, seeded.ID, domain.EstadoCancelado, "duplicado")
	require.NoError(t, err)
	assert.Equal(t, domain.EstadoCancelado, ticket.Estado)
	require.NotNil(t, ticket.ClosedAt)
}

func TestTicketInvisibleParaTerceros(t *testing.T) {
	fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSucursal(5, "sur"))
	seeded := fx.tickets.seed(domain.Ticket{
		Titulo:    "cajero fuera de linea",
		Estado:    domain.EstadoNuevo,
		CreadorID: 1,
	})

	otro := domain.Actor{ID: 5, Rol: domain.RolSucursal}
	_, err := fx.svc.GetByID(context.Background(), otro, seeded.ID)
	assertCode(t, err, "NOT_FOUND")

	_, err = fx.svc.ChangeState(context.Background(), otro, seeded.ID, domain.EstadoCancelado, "")
	assertCode(t, err, "NOT_FOUND")
}

func TestUpdateConAsignacion(t *testing.T) {
	ctx := context.Background()

	t.Run("rol sucursal no asigna via update", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSoporte(2))
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "scanner", Estado: domain.EstadoNuevo, CreadorID: 1})

		creador := domain.Actor{ID: 1, Rol: domain.RolSucursal}
		destino := int64(2)
		_, err := fx.svc.Update(ctx, creador, seeded.ID, service.TicketUpdateInput{AsignadoID: &destino})
		assertCode(t, err, "PERMISSION_DENIED")

		actual, err := fx.svc.GetByID(ctx, creador, seeded.ID)
		require.NoError(t, err)
		assert.Nil(t, actual.AsignadoID)
		assert.Equal(t, domain.EstadoNuevo, actual.Estado)
	})

	t.Run("destinatario inactivo es conflicto via update", func(t *testing.T) {
		inactivo := usuarioSoporte(4)
		inactivo.Activo = false
		fx := newTicketFixture(inactivo)
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "scanner", Estado: domain.EstadoNuevo, CreadorID: 1})

		destino := int64(4)
		_, err := fx.svc.Update(ctx, domain.Actor{ID: 10, Rol: domain.RolSupervisor}, seeded.ID, service.TicketUpdateInput{AsignadoID: &destino})
		assertCode(t, err, "CONFLICT")
	})

	t.Run("destinatario rol sucursal es conflicto via update", func(t *testing.T) {
		fx := newTicketFixture(usuarioSucursal(5, "sur"))
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "scanner", Estado: domain.EstadoNuevo, CreadorID: 1})

		destino := int64(5)
		_, err := fx.svc.Update(ctx, domain.Actor{ID: 10, Rol: domain.RolSupervisor}, seeded.ID, service.TicketUpdateInput{AsignadoID: &destino})
		assertCode(t, err, "CONFLICT")
	})

	t.Run("asignar via update saca el ticket de pendiente", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2))
		closed := fixedNow
		seeded := fx.tickets.seed(domain.Ticket{
			Titulo:    "parqueado",
			Estado:    domain.EstadoPendiente,
			CreadorID: 1,
			ClosedAt:  &closed,
		})

		destino := int64(2)
		ticket, err := fx.svc.Update(ctx, domain.Actor{ID: 10, Rol: domain.RolSupervisor}, seeded.ID, service.TicketUpdateInput{AsignadoID: &destino})
		require.NoError(t, err)

		assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado, "un pendiente asignado entra en progreso")
		require.NotNil(t, ticket.AsignadoID)
		assert.Equal(t, int64(2), *ticket.AsignadoID)
		assert.Nil(t, ticket.ClosedAt)

		entries := fx.historial.forTicket(seeded.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.EstadoEnProgreso, entries[0].EstadoNuevo)
		assert.Equal(t, int64(10), entries[0].UsuarioID)
	})
}

func TestAssignTo(t *testing.T) {
	ctx := context.Background()

	t.Run("fuerza en_progreso desde nuevo", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2), usuarioSoporte(3))
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "sin red", Estado: domain.EstadoNuevo, CreadorID: 1})

		supervisor := domain.Actor{ID: 10, Rol: domain.RolSupervisor}
		ticket, err := fx.svc.AssignTo(ctx, supervisor, seeded.ID, 3)
		require.NoError(t, err)

		assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado)
		require.NotNil(t, ticket.AsignadoID)
		assert.Equal(t, int64(3), *ticket.AsignadoID)
		require.Len(t, fx.events.ofType(events.EventTicketAsignado), 1)
	})

	t.Run("fuerza en_progreso desde pendiente", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(3))
		closed := fixedNow
		seeded := fx.tickets.seed(domain.Ticket{
			Titulo:    "devuelto al pozo",
			Estado:    domain.EstadoPendiente,
			CreadorID: 1,
			ClosedAt:  &closed,
		})

		supervisor := domain.Actor{ID: 10, Rol: domain.RolSupervisor}
		ticket, err := fx.svc.AssignTo(ctx, supervisor, seeded.ID, 3)
		require.NoError(t, err)

		assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado)
		require.NotNil(t, ticket.AsignadoID)
		assert.Equal(t, int64(3), *ticket.AsignadoID)
		assert.Nil(t, ticket.ClosedAt)
	})

	t.Run("rol sucursal no asigna", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2))
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "sin red", Estado: domain.EstadoNuevo, CreadorID: 1})

		_, err := fx.svc.AssignTo(ctx, domain.Actor{ID: 1, Rol: domain.RolSucursal}, seeded.ID, 2)
		assertCode(t, err, "PERMISSION_DENIED")
	})

	t.Run("destinatario inactivo es conflicto", func(t *testing.T) {
		inactivo := usuarioSoporte(4)
		inactivo.Activo = false
		fx := newTicketFixture(inactivo)
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "sin red", Estado: domain.EstadoNuevo, CreadorID: 1})

		_, err := fx.svc.AssignTo(ctx, domain.Actor{ID: 10, Rol: domain.RolSupervisor}, seeded.ID, 4)
		assertCode(t, err, "CONFLICT")
	})

	t.Run("estado terminal es conflicto", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2))
		seeded := fx.tickets.seed(domain.Ticket{Titulo: "sin red", Estado: domain.EstadoCerrado, CreadorID: 1})

		_, err := fx.svc.AssignTo(ctx, domain.Actor{ID: 10, Rol: domain.RolSupervisor}, seeded.ID, 2)
		assertCode(t, err, "CONFLICT")
	})
}

func TestReassignTo(t *testing.T) {
	ctx := context.Background()

	t.Run("asignado actual traspasa sin historial", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2), usuarioSoporte(4))
		asignado := int64(2)
		seeded := fx.tickets.seed(domain.Ticket{
			Titulo:     "telefonia",
			Estado:     domain.EstadoEnProgreso,
			CreadorID:  1,
			AsignadoID: &asignado,
		})

		actual := domain.Actor{ID: 2, Rol: domain.RolSoporte}
		ticket, err := fx.svc.ReassignTo(ctx, actual, seeded.ID, 4)
		require.NoError(t, err)

		assert.Equal(t, domain.EstadoEnProgreso, ticket.Estado, "la reasignacion no toca el estado")
		require.NotNil(t, ticket.AsignadoID)
		assert.Equal(t, int64(4), *ticket.AsignadoID)
		require.NotNil(t, ticket.ReasignadoAID)
		assert.Equal(t, int64(4), *ticket.ReasignadoAID)
		assert.NotNil(t, ticket.ReasignadoAt)

		assert.Empty(t, fx.historial.forTicket(seeded.ID), "sin cambio de estado no hay entrada de historial")

		asignaciones := fx.events.ofType(events.EventTicketAsignado)
		require.Len(t, asignaciones, 1)
		payload, ok := asignaciones[0].Payload.(events.TicketAsignadoPayload)
		require.True(t, ok)
		assert.True(t, payload.Reasignacion)
	})

	t.Run("tercero no reasigna", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2), usuarioSoporte(4))
		asignado := int64(2)
		seeded := fx.tickets.seed(domain.Ticket{
			Titulo:     "telefonia",
			Estado:     domain.EstadoEnProgreso,
			CreadorID:  1,
			AsignadoID: &asignado,
		})

		otro := domain.Actor{ID: 4, Rol: domain.RolSoporte}
		_, err := fx.svc.ReassignTo(ctx, otro, seeded.ID, 4)
		assertCode(t, err, "PERMISSION_DENIED")
	})

	t.Run("solo en_progreso se reasigna", func(t *testing.T) {
		fx := newTicketFixture(usuarioSoporte(2), usuarioSoporte(4))
		seeded := fx.tickets.seed(domain.Ticket{
			Titulo:    "telefonia",
			Estado:    domain.EstadoNuevo,
			CreadorID: 1,
		})

		admin := domain.Actor{ID: 99, Rol: domain.RolAdmin}
		_, err := fx.svc.ReassignTo(ctx, admin, seeded.ID, 4)
		assertCode(t, err, "CONFLICT")
	})
}

func TestDeleteSoloCreador(t *testing.T) {
	fx := newTicketFixture()
	seeded := fx.tickets.seed(domain.Ticket{Titulo: "borrable", Estado: domain.EstadoNuevo, CreadorID: 1})

	_, err := fx.svc.Delete(context.Background(), domain.Actor{ID: 2, Rol: domain.RolSoporte}, seeded.ID)
	assertCode(t, err, "PERMISSION_DENIED")

	ok, err := fx.svc.Delete(context.Background(), domain.Actor{ID: 1, Rol: domain.RolSucursal}, seeded.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListAllRequiereRolElevado(t *testing.T) {
	fx := newTicketFixture()
	fx.tickets.seed(domain.Ticket{Titulo: "uno", Estado: domain.EstadoNuevo, CreadorID: 1})
	fx.tickets.seed(domain.Ticket{Titulo: "dos", Estado: domain.EstadoNuevo, CreadorID: 5})

	_, err := fx.svc.ListAll(context.Background(), domain.Actor{ID: 1, Rol: domain.RolSucursal}, repository.TicketFilter{})
	assertCode(t, err, "PERMISSION_DENIED")

	todos, err := fx.svc.ListAll(context.Background(), domain.Actor{ID: 2, Rol: domain.RolSoporte}, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestGetHistoryForTicket(t *testing.T) {
	fx := newTicketFixture(usuarioSucursal(1, "norte"), usuarioSucursal(5, "sur"), usuarioSoporte(2))
	seeded := fx.tickets.seed(domain.Ticket{Titulo: "router", Estado: domain.EstadoNuevo, CreadorID: 1})

	soporte := domain.Actor{ID: 2, Rol: domain.RolSoporte}
	_, err := fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoEnProgreso, "")
	require.NoError(t, err)
	_, err = fx.svc.ChangeState(context.Background(), soporte, seeded.ID, domain.EstadoResuelto, "reiniciado")
	require.NoError(t, err)

	entries, err := fx.svc.GetHistoryForTicket(context.Background(), domain.Actor{ID: 1, Rol: domain.RolSucursal}, seeded.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EstadoEnProgreso, entries[0].EstadoNuevo)
	assert.Equal(t, domain.EstadoResuelto, entries[1].EstadoNuevo)

	_, err = fx.svc.GetHistoryForTicket(context.Background(), domain.Actor{ID: 5, Rol: domain.RolSucursal}, seeded.ID)
	assertCode(t, err, "NOT_FOUND")
}

func TestStatsForUser(t *testing.T) {
	fx := newTicketFixture()
	fx.tickets.seed(domain.Ticket{Titulo: "uno", Estado: domain.EstadoNuevo, Prioridad: domain.PrioridadMedia, CreadorID: 1})
	fx.tickets.seed(domain.Ticket{Titulo: "dos", Estado: domain.EstadoNuevo, Prioridad: domain.PrioridadAlta, CreadorID: 1})
	fx.tickets.seed(domain.Ticket{Titulo: "ajeno", Estado: domain.EstadoNuevo, Prioridad: domain.PrioridadBaja, CreadorID: 9})

	stats, err := fx.svc.StatsForUser(context.Background(), domain.Actor{ID: 1, Rol: domain.RolSucursal})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.PorEstado[domain.EstadoNuevo])
	assert.Equal(t, int64(1), stats.PorPrioridad[domain.PrioridadAlta])
}
