package notify

import (
	"sync"
	"time"
)

// Nombres de eventos que emite el core. Los listeners de UI se suscriben por nombre.
const (
	EventRequestCreated = "adoption_request.created"
	EventSessionExpired = "session.expired"
)

type Event struct {
	Name    string
	At      time.Time
	Payload any
}

type Handler func(Event)

// Bus es un pub/sub in-process, síncrono y por nombre de evento.
// El frontend original usaba un event bus global para avisar a la UI
// (request creado, sesión expirada); acá lo mismo pero inyectado.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Subscribe registra un handler para un nombre de evento.
// name vacío => recibe todos los eventos.
func (b *Bus) Subscribe(name string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish entrega el evento de forma síncrona a los suscriptores.
// Un handler que bloquee, bloquea al publicador; los listeners deben ser cortos.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.Name])+len(b.handlers[""]))
	hs = append(hs, b.handlers[e.Name]...)
	hs = append(hs, b.handlers[""]...)
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}
