package services

import (
	"time"

	"cafe/pkg/logger"
)

// Routing keys of the domain events.
const (
	EventCategoriaCreada      = "categoria.creada"
	EventCategoriaActualizada = "categoria.actualizada"
	EventCategoriaBorrada     = "categoria.borrada"
	EventProductoCreado       = "producto.creado"
	EventProductoActualizado  = "producto.actualizado"
	EventProductoBorrado      = "producto.borrado"
)

// EventPublisher publishes a JSON event under a routing key.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishJSON(routingKey string, v any) error
}

// Event is the payload of every published domain event.
type Event struct {
	Tipo    string    `json:"tipo"`
	Usuario string    `json:"usuario,omitempty"`
	Datos   any       `json:"datos"`
	Fecha   time.Time `json:"fecha"`
}

// notifier publishes events best effort. A nil publisher disables it.
type notifier struct {
	pub EventPublisher
	log *logger.Logger
	now func() time.Time
}

func newNotifier(pub EventPublisher, log *logger.Logger) notifier {
	if log == nil {
		log = logger.Nop()
	}
	return notifier{pub: pub, log: log, now: time.Now}
}

func (n notifier) notify(tipo, usuario string, datos any) {
	if n.pub == nil {
		return
	}
	ev := Event{Tipo: tipo, Usuario: usuario, Datos: datos, Fecha: n.now().UTC()}
	if err := n.pub.PublishJSON(tipo, ev); err != nil {
		n.log.Warn().Err(err).Str("event", tipo).Msg("failed to publish event")
	}
}
