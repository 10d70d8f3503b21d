package service_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
	"github.com/gestion-soporte/mesa-ayuda/internal/notify"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	apperrors "github.com/gestion-soporte/mesa-ayuda/pkg/util"
)

// In-memory doubles of the persistence port. The ticket fake mirrors the
// repository contract, including the state-dependent side effects and the
// post-commit history append, so service behavior can be asserted end to end.

var fixedNow = time.Date(2024, 6, 10, 15, 30, 0, 0, time.FixedZone("-03", -3*60*60))

type fakeHistorial struct {
	entries   []domain.HistorialEntry
	nextID    int64
	appendErr error
}

func newFakeHistorial() *fakeHistorial {
	return &fakeHistorial{nextID: 1}
}

func (f *fakeHistorial) Append(_ context.Context, ticketID int64, anterior *domain.Estado, nuevo domain.Estado, usuarioID int64, comentario string) (*domain.HistorialEntry, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	entry := domain.HistorialEntry{
		ID:             f.nextID,
		TicketID:       ticketID,
		EstadoAnterior: anterior,
		EstadoNuevo:    nuevo,
		UsuarioID:      usuarioID,
		Comentario:     comentario,
		CreatedAt:      fixedNow,
	}
	f.nextID++
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeHistorial) ListForTicket(_ context.Context, ticketID int64) ([]domain.HistorialEntry, error) {
	var result []domain.HistorialEntry
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeHistorial) forTicket(ticketID int64) []domain.HistorialEntry {
	entries, _ := f.ListForTicket(context.Background(), ticketID)
	return entries
}

type fakeTicketRepo struct {
	tickets   map[int64]*domain.Ticket
	historial *fakeHistorial
	nextID    int64
}

func newFakeTicketRepo(historial *fakeHistorial) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:   make(map[int64]*domain.Ticket),
		historial: historial,
		nextID:    1,
	}
}

func (f *fakeTicketRepo) seed(ticket domain.Ticket) *domain.Ticket {
	if ticket.ID == 0 {
		ticket.ID = f.nextID
	}
	if ticket.ID >= f.nextID {
		f.nextID = ticket.ID + 1
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = fixedNow
		ticket.UpdatedAt = fixedNow
	}
	stored := ticket
	f.tickets[stored.ID] = &stored
	return &stored
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.Titulo == "" {
		return apperrors.NewValidationError("titulo requerido", nil)
	}
	if ticket.Estado == "" {
		ticket.Estado = domain.EstadoNuevo
	}
	if ticket.Prioridad == "" {
		ticket.Prioridad = domain.PrioridadMedia
	}
	ticket.ID = f.nextID
	f.nextID++
	ticket.CreatedAt = fixedNow
	ticket.UpdatedAt = fixedNow
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	_, _ = f.historial.Append(context.Background(), ticket.ID, nil, ticket.Estado, ticket.CreadorID, "")
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64, viewer *repository.Viewer) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok || !visibleTo(ticket, viewer) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	copia := *ticket
	return &copia, nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, id int64, patch repository.TicketPatch, actor *repository.Viewer) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok || !visibleTo(ticket, actor) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	previo := *ticket

	if patch.Titulo != nil {
		ticket.Titulo = *patch.Titulo
	}
	if patch.Descripcion != nil {
		ticket.Descripcion = *patch.Descripcion
	}
	if patch.Categoria != nil {
		ticket.Categoria = *patch.Categoria
	}
	if patch.Prioridad != nil {
		ticket.Prioridad = *patch.Prioridad
	}
	if patch.Estado != nil {
		ticket.Estado = *patch.Estado
		if *patch.Estado == domain.EstadoPendiente {
			ticket.AsignadoID = nil
		}
		if patch.Estado.CierraTicket() {
			closed := fixedNow
			ticket.ClosedAt = &closed
		} else {
			ticket.ClosedAt = nil
		}
	}
	if patch.AsignadoID != nil && (patch.Estado == nil || *patch.Estado != domain.EstadoPendiente) {
		asignado := *patch.AsignadoID
		ticket.AsignadoID = &asignado
	}
	if patch.ReasignadoAID != nil {
		reasignado := *patch.ReasignadoAID
		ticket.ReasignadoAID = &reasignado
		stamp := fixedNow
		ticket.ReasignadoAt = &stamp
	}
	if patch.SupervisorID != nil {
		supervisor := *patch.SupervisorID
		ticket.SupervisorID = &supervisor
	}
	if patch.Comentario != "" {
		ticket.Comentarios = patch.Comentario
	}
	ticket.UpdatedAt = fixedNow

	if patch.Estado != nil && previo.Estado != ticket.Estado {
		anterior := previo.Estado
		var actorID int64
		if actor != nil {
			actorID = actor.ID
		}
		_, _ = f.historial.Append(ctx, id, &anterior, ticket.Estado, actorID, patch.Comentario)
	}

	copia := *ticket
	return &copia, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id int64, actorID int64) (bool, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return false, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	if ticket.CreadorID != actorID {
		return false, apperrors.NewPermissionError("solo el creador puede eliminar el ticket")
	}
	delete(f.tickets, id)
	return true, nil
}

func (f *fakeTicketRepo) ListForUser(_ context.Context, userID int64, _ repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.CreadorID == userID || (ticket.AsignadoID != nil && *ticket.AsignadoID == userID) {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTicketRepo) CountForUser(_ context.Context, userID int64) (domain.StatsSummary, error) {
	stats := domain.NewStatsSummary()
	for _, ticket := range f.tickets {
		if ticket.CreadorID == userID || (ticket.AsignadoID != nil && *ticket.AsignadoID == userID) {
			stats.Total++
			stats.PorEstado[ticket.Estado]++
			stats.PorPrioridad[ticket.Prioridad]++
		}
	}
	return stats, nil
}

func visibleTo(ticket *domain.Ticket, viewer *repository.Viewer) bool {
	if viewer == nil || viewer.Rol.EsElevado() {
		return true
	}
	if ticket.CreadorID == viewer.ID {
		return true
	}
	return ticket.AsignadoID != nil && *ticket.AsignadoID == viewer.ID
}

type fakeUsuarioRepo struct {
	usuarios map[int64]domain.Usuario
}

func newFakeUsuarioRepo(usuarios ...domain.Usuario) *fakeUsuarioRepo {
	repo := &fakeUsuarioRepo{usuarios: make(map[int64]domain.Usuario)}
	for _, usuario := range usuarios {
		repo.usuarios[usuario.ID] = usuario
	}
	return repo
}

func (f *fakeUsuarioRepo) GetByID(_ context.Context, id int64) (*domain.Usuario, error) {
	usuario, ok := f.usuarios[id]
	if !ok {
		return nil, apperrors.NewNotFound("usuario", nil)
	}
	return &usuario, nil
}

func (f *fakeUsuarioRepo) GetByEmail(_ context.Context, email string) (*domain.Usuario, error) {
	for _, usuario := range f.usuarios {
		if usuario.Email == email {
			return &usuario, nil
		}
	}
	return nil, apperrors.NewNotFound("usuario", nil)
}

func (f *fakeUsuarioRepo) ListSoporteActivos(_ context.Context) ([]domain.Usuario, error) {
	var result []domain.Usuario
	for _, usuario := range f.usuarios {
		if usuario.Rol == domain.RolSoporte && usuario.Activo {
			result = append(result, usuario)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeAprobacionRepo struct {
	decisiones []domain.Aprobacion
	nextID     int64
	recordErr  error
}

func newFakeAprobacionRepo() *fakeAprobacionRepo {
	return &fakeAprobacionRepo{nextID: 1}
}

func (f *fakeAprobacionRepo) Record(_ context.Context, decision *domain.Aprobacion) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	decision.ID = f.nextID
	decision.CreatedAt = fixedNow
	f.nextID++
	f.decisiones = append(f.decisiones, *decision)
	return nil
}

func (f *fakeAprobacionRepo) HistorialForSupervisor(_ context.Context, supervisorID int64) ([]domain.HistorialAprobacion, error) {
	result := []domain.HistorialAprobacion{}
	for _, decision := range f.decisiones {
		if decision.SupervisorID == supervisorID {
			result = append(result, domain.HistorialAprobacion{Aprobacion: decision})
		}
	}
	return result, nil
}

func (f *fakeAprobacionRepo) StatsForSupervisor(_ context.Context, supervisorID int64) (domain.EstadisticasSupervisor, error) {
	var stats domain.EstadisticasSupervisor
	for _, decision := range f.decisiones {
		if decision.SupervisorID != supervisorID {
			continue
		}
		stats.Total++
		switch decision.Accion {
		case domain.AccionAprobado:
			stats.Aprobados++
		case domain.AccionRechazado:
			stats.Rechazados++
		}
	}
	return stats, nil
}

type fakeNotifier struct {
	noticias   []notify.NoticiaRechazo
	publishErr error
}

func (f *fakeNotifier) PublicarRechazo(_ context.Context, noticia notify.NoticiaRechazo) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.noticias = append(f.noticias, noticia)
	return nil
}

type fakePresence struct {
	online    map[int64]bool
	checkErr  error
	marcadas  []int64
	consultas []int64
}

func (f *fakePresence) Marcar(_ context.Context, userID int64) error {
	f.marcadas = append(f.marcadas, userID)
	return nil
}

func (f *fakePresence) EstaEnLinea(_ context.Context, userID int64) (bool, error) {
	f.consultas = append(f.consultas, userID)
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.online[userID], nil
}

var errPersistencia = errors.New("persistencia no disponible")
