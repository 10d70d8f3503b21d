package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NoticiaRechazo is the message a branch receives when one of its tickets is
// rejected by a supervisor.
type NoticiaRechazo struct {
	Sucursal     string    `json:"sucursal"`
	Titulo       string    `json:"titulo"`
	Cuerpo       string    `json:"cuerpo"`
	TicketID     int64     `json:"ticket_id"`
	SupervisorID int64     `json:"supervisor_id"`
	Fecha        time.Time `json:"fecha"`
}

// Notifier is the branch notification sink. Fire and forget: callers catch
// the error and report it as a flag, never as an operation failure.
type Notifier interface {
	PublicarRechazo(ctx context.Context, noticia NoticiaRechazo) error
}

// RedisNotifier pushes rejection notices onto the branch notification board
// (a redis list per branch) and announces them on a pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
	canal  string
	logger *zap.Logger
}

// NewRedisNotifier builds the sink.
func NewRedisNotifier(client *redis.Client, canal string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, canal: canal, logger: logger}
}

func (n *RedisNotifier) PublicarRechazo(ctx context.Context, noticia NoticiaRechazo) error {
	if n.client == nil {
		return fmt.Errorf("notifier sin cliente redis")
	}
	raw, err := json.Marshal(noticia)
	if err != nil {
		return err
	}

	board := fmt.Sprintf("%s:sucursal:%s", n.canal, noticia.Sucursal)
	if err := n.client.LPush(ctx, board, raw).Err(); err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.canal, raw).Err(); err != nil {
		n.logger.Warn("publish de noticia fallo, tablero ya actualizado",
			zap.String("canal", n.canal), zap.Error(err))
	}
	return nil
}

// NopNotifier discards notifications; used when no sink is configured.
type NopNotifier struct{}

func (NopNotifier) PublicarRechazo(context.Context, NoticiaRechazo) error {
	return nil
}
