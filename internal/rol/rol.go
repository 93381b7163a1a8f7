// Package rol resolves the coarse role of an identity.
//
// Resolution never fails: a missing record, a transport error or an unknown
// value all resolve to Comercial, the least-privileged role. Successful
// lookups are cached for a TTL; concurrent callers for the same user share a
// single in-flight lookup.
package rol

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Rol is the role used for gating.
type Rol string

const (
	Admin     Rol = "admin"
	Comercial Rol = "comercial"
)

// ErrSinRegistro is returned by a Fuente when the user has no role record.
// It is a definitive answer and is cached as Comercial.
var ErrSinRegistro = errors.New("rol: usuario sin registro de rol")

// Fuente loads the raw role value stored for a user.
type Fuente interface {
	RolDe(ctx context.Context, usuarioID uuid.UUID) (string, error)
}

// Normalizar maps a stored value onto the enum. Legacy "editor" and "viewer"
// and anything unrecognised become Comercial.
func Normalizar(raw string) Rol {
	if Rol(raw) == Admin {
		return Admin
	}
	return Comercial
}

// Valido reports whether raw may be written as a role value.
func Valido(raw string) bool {
	return Rol(raw) == Admin || Rol(raw) == Comercial
}

type entrada struct {
	rol    Rol
	expira time.Time
}

// Resolver caches role lookups per user.
type Resolver struct {
	fuente Fuente
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[uuid.UUID]entrada
	grupo singleflight.Group
}

// NewResolver wraps fuente with a TTL cache.
func NewResolver(fuente Fuente, ttl time.Duration) *Resolver {
	return &Resolver{
		fuente: fuente,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[uuid.UUID]entrada),
	}
}

// Obtener returns the role of usuarioID.
func (r *Resolver) Obtener(ctx context.Context, usuarioID uuid.UUID) Rol {
	if rol, ok := r.cacheado(usuarioID); ok {
		return rol
	}

	v, _, _ := r.grupo.Do(usuarioID.String(), func() (interface{}, error) {
		// a flight that finished between our miss and Do already stored it
		if rol, ok := r.cacheado(usuarioID); ok {
			return rol, nil
		}
		raw, err := r.fuente.RolDe(ctx, usuarioID)
		if err != nil && !errors.Is(err, ErrSinRegistro) {
			log.Warn().Err(err).Str("usuario_id", usuarioID.String()).Msg("rol: lookup failed, using comercial")
			return Comercial, nil
		}
		rol := Normalizar(raw)
		r.guardar(usuarioID, rol)
		return rol, nil
	})
	return v.(Rol)
}

// EsAdmin is a convenience over Obtener.
func (r *Resolver) EsAdmin(ctx context.Context, usuarioID uuid.UUID) bool {
	return r.Obtener(ctx, usuarioID) == Admin
}

// Invalidar drops the cached role of one user. Call it after a role change.
func (r *Resolver) Invalidar(usuarioID uuid.UUID) {
	r.mu.Lock()
	delete(r.cache, usuarioID)
	r.mu.Unlock()
}

// InvalidarTodo clears the cache.
func (r *Resolver) InvalidarTodo() {
	r.mu.Lock()
	r.cache = make(map[uuid.UUID]entrada)
	r.mu.Unlock()
}

func (r *Resolver) cacheado(id uuid.UUID) (Rol, bool) {
	r.mu.RLock()
	e, ok := r.cache[id]
	r.mu.RUnlock()
	if !ok || !r.now().Before(e.expira) {
		return "", false
	}
	return e.rol, true
}

func (r *Resolver) guardar(id uuid.UUID, rol Rol) {
	r.mu.Lock()
	r.cache[id] = entrada{rol: rol, expira: r.now().Add(r.ttl)}
	r.mu.Unlock()
}
