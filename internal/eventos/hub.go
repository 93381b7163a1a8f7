// Package eventos fans auth-state changes out to subscribers.
package eventos

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tipo of an auth-state change.
type Tipo string

const (
	SignedIn  Tipo = "SIGNED_IN"
	SignedOut Tipo = "SIGNED_OUT"
)

// Evento is delivered to every subscription of UsuarioID.
type Evento struct {
	Tipo      Tipo      `json:"event"`
	UsuarioID uuid.UUID `json:"usuario_id"`
	SesionID  string    `json:"sesion_id,omitempty"`
	Fecha     time.Time `json:"fecha"`
}

// Suscripcion receives events until Cancelar is called. Eventos is closed
// on cancel.
type Suscripcion struct {
	ID        string
	UsuarioID uuid.UUID
	Eventos   <-chan Evento

	ch   chan Evento
	hub  *Hub
	once sync.Once
}

// Cancelar unsubscribes. Safe to call more than once.
func (s *Suscripcion) Cancelar() {
	s.once.Do(func() { s.hub.quitar(s) })
}

// Hub holds the live subscriptions of this process.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Suscripcion
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[string]*Suscripcion), buffer: buffer}
}

// Suscribir registers a subscription for the events of usuarioID.
func (h *Hub) Suscribir(usuarioID uuid.UUID) *Suscripcion {
	ch := make(chan Evento, h.buffer)
	s := &Suscripcion{
		ID:        uuid.NewString(),
		UsuarioID: usuarioID,
		Eventos:   ch,
		ch:        ch,
		hub:       h,
	}
	h.mu.Lock()
	h.subs[s.ID] = s
	total := len(h.subs)
	h.mu.Unlock()
	log.Debug().Str("sub_id", s.ID).Str("usuario_id", usuarioID.String()).Int("total", total).Msg("eventos: subscribed")
	return s
}

func (h *Hub) quitar(s *Suscripcion) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.ID]; ok {
		delete(h.subs, s.ID)
		close(s.ch)
	}
}

// Publicar delivers ev to the user's subscriptions. Slow subscribers whose
// buffer is full miss the event rather than blocking the publisher.
func (h *Hub) Publicar(ev Evento) {
	if ev.Fecha.IsZero() {
		ev.Fecha = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.UsuarioID != ev.UsuarioID {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			log.Warn().Str("sub_id", s.ID).Str("event", string(ev.Tipo)).Msg("eventos: buffer full, event dropped")
		}
	}
}

// Activas returns the number of live subscriptions.
func (h *Hub) Activas() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
